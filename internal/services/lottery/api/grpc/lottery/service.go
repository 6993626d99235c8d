// Package lottery implements the lottery.v1 gRPC services.
package lottery

import (
	"context"
	"strings"

	lotteryv1 "github.com/louisbranch/lottery/api/lottery/v1"
	apperrors "github.com/louisbranch/lottery/internal/platform/errors"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/wager"
	"github.com/louisbranch/lottery/internal/services/lottery/lifecycle"
	"github.com/louisbranch/lottery/internal/services/lottery/placement"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ExternalNumbersReceived is the acknowledgement for recorded external numbers.
const ExternalNumbersReceived = "External draw numbers received successfully."

// Service exposes the draw, wagering and admin services.
type Service struct {
	placement *placement.Coordinator
	lifecycle *lifecycle.Service
}

var (
	_ lotteryv1.DrawServiceServer     = (*Service)(nil)
	_ lotteryv1.WageringServiceServer = (*Service)(nil)
	_ lotteryv1.AdminServiceServer    = (*Service)(nil)
)

// NewService creates the lottery API backed by the placement coordinator and
// the draw lifecycle service.
func NewService(coord *placement.Coordinator, lc *lifecycle.Service) *Service {
	return &Service{placement: coord, lifecycle: lc}
}

// GetOpenDraws lists Open draws.
func (s *Service) GetOpenDraws(ctx context.Context, in *lotteryv1.GetOpenDrawsRequest) (*lotteryv1.GetOpenDrawsResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "get open draws request is required")
	}
	if s == nil || s.placement == nil {
		return nil, status.Error(codes.Internal, "placement coordinator is not configured")
	}
	draws, err := s.placement.GetOpenDraws(ctx, in.GameID)
	if err != nil {
		return nil, apperrors.HandleError(err, localeFrom(ctx))
	}
	resp := &lotteryv1.GetOpenDrawsResponse{Draws: make([]lotteryv1.Draw, 0, len(draws))}
	for _, d := range draws {
		resp.Draws = append(resp.Draws, DrawToWire(d))
	}
	return resp, nil
}

// GetDraw returns one draw.
func (s *Service) GetDraw(ctx context.Context, in *lotteryv1.GetDrawRequest) (*lotteryv1.GetDrawResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "get draw request is required")
	}
	if s == nil || s.lifecycle == nil {
		return nil, status.Error(codes.Internal, "draw lifecycle is not configured")
	}
	d, err := s.lifecycle.GetDraw(ctx, in.DrawID)
	if err != nil {
		return nil, apperrors.HandleError(err, localeFrom(ctx))
	}
	return &lotteryv1.GetDrawResponse{Draw: DrawToWire(d)}, nil
}

// PlaceWager validates and stores a wager.
func (s *Service) PlaceWager(ctx context.Context, in *lotteryv1.PlaceWagerRequest) (*lotteryv1.PlaceWagerResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "place wager request is required")
	}
	if s == nil || s.placement == nil {
		return nil, status.Error(codes.Internal, "placement coordinator is not configured")
	}
	input := placement.PlaceWagerInput{
		UserID:  in.UserID,
		DrawIDs: in.DrawIDs,
		Boards:  make([]placement.BoardInput, 0, len(in.Boards)),
	}
	if raw := strings.TrimSpace(in.Stake); raw != "" {
		stake, err := decimal.NewFromString(raw)
		if err != nil || !stake.IsPositive() {
			return nil, apperrors.HandleError(
				apperrors.WithMetadata(apperrors.CodeWagerInvalidStake, "stake is not a positive decimal", map[string]string{"Stake": raw}),
				localeFrom(ctx),
			)
		}
		input.Stake = stake
	}
	for _, b := range in.Boards {
		board := placement.BoardInput{
			GameType:   gameTypeFromWire(b.GameType),
			Selections: make([]placement.SelectionInput, 0, len(b.Selections)),
		}
		for _, sel := range b.Selections {
			board.Selections = append(board.Selections, placement.SelectionInput{Name: sel.Name, Values: sel.Values})
		}
		input.Boards = append(input.Boards, board)
	}

	w, err := s.placement.PlaceWager(ctx, input)
	if err != nil {
		return nil, apperrors.HandleError(err, localeFrom(ctx))
	}
	return &lotteryv1.PlaceWagerResponse{Wager: WagerToWire(w)}, nil
}

// GetWager returns a stored wager.
func (s *Service) GetWager(ctx context.Context, in *lotteryv1.GetWagerRequest) (*lotteryv1.GetWagerResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "get wager request is required")
	}
	if s == nil || s.placement == nil {
		return nil, status.Error(codes.Internal, "placement coordinator is not configured")
	}
	w, err := s.placement.GetWager(ctx, in.WagerID)
	if err != nil {
		return nil, apperrors.HandleError(err, localeFrom(ctx))
	}
	return &lotteryv1.GetWagerResponse{Wager: WagerToWire(w)}, nil
}

// ReceiveExternalDrawNumbers records externally drawn numbers on a Closed draw.
func (s *Service) ReceiveExternalDrawNumbers(ctx context.Context, in *lotteryv1.ReceiveExternalDrawNumbersRequest) (*lotteryv1.ReceiveExternalDrawNumbersResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "receive external draw numbers request is required")
	}
	if s == nil || s.lifecycle == nil {
		return nil, status.Error(codes.Internal, "draw lifecycle is not configured")
	}
	sets := make([]lifecycle.LevelNumbers, 0, len(in.WinningNumbers))
	for _, set := range in.WinningNumbers {
		sets = append(sets, lifecycle.LevelNumbers{Level: set.Level, Numbers: set.Numbers})
	}
	d, err := s.lifecycle.ReceiveExternalDrawNumbers(ctx, in.DrawID, sets)
	if err != nil {
		return nil, apperrors.HandleError(err, localeFrom(ctx))
	}
	return &lotteryv1.ReceiveExternalDrawNumbersResponse{
		Success: true,
		Message: ExternalNumbersReceived,
		Draw:    DrawToWire(d),
	}, nil
}

// TransitionDraw moves a draw to the requested status.
func (s *Service) TransitionDraw(ctx context.Context, in *lotteryv1.TransitionDrawRequest) (*lotteryv1.TransitionDrawResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "transition draw request is required")
	}
	if s == nil || s.lifecycle == nil {
		return nil, status.Error(codes.Internal, "draw lifecycle is not configured")
	}
	target, ok := draw.ParseStatus(in.Status)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown draw status %q", in.Status)
	}
	d, err := s.lifecycle.TransitionDraw(ctx, in.DrawID, target)
	if err != nil {
		return nil, apperrors.HandleError(err, localeFrom(ctx))
	}
	return &lotteryv1.TransitionDrawResponse{Draw: DrawToWire(d)}, nil
}

// localeFrom reads the first accept-language entry of the incoming call.
func localeFrom(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return apperrors.DefaultLocale
	}
	values := md.Get("accept-language")
	if len(values) == 0 {
		return apperrors.DefaultLocale
	}
	first, _, _ := strings.Cut(values[0], ",")
	first, _, _ = strings.Cut(first, ";")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return apperrors.DefaultLocale
}

// gameTypeFromWire keeps unknown labels so board validation reports them.
func gameTypeFromWire(value string) wager.GameType {
	if gt, ok := wager.ParseGameType(value); ok {
		return gt
	}
	return wager.GameType(strings.TrimSpace(value))
}
