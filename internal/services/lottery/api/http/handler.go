// Package httpapi serves the lottery.v1 operations as JSON over HTTP by
// calling the gRPC service implementation in process.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	lotteryv1 "github.com/louisbranch/lottery/api/lottery/v1"
	apperrors "github.com/louisbranch/lottery/internal/platform/errors"
	"github.com/louisbranch/lottery/internal/platform/timeouts"
	"github.com/louisbranch/lottery/internal/services/lottery/metrics"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const maxBodyBytes = 1 << 20

// Backend is the set of lottery.v1 services the HTTP API exposes.
type Backend interface {
	lotteryv1.DrawServiceServer
	lotteryv1.WageringServiceServer
	lotteryv1.AdminServiceServer
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failed request.
type ErrorDetail struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type handler struct {
	backend Backend
	logger  *zap.Logger
	clock   func() time.Time
}

// Option customizes the handler.
type Option func(*handler)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock overrides the time reported by the health endpoint.
func WithClock(clock func() time.Time) Option {
	return func(h *handler) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// NewHandler routes the HTTP API to backend. allowedOrigins feeds CORS; an
// empty list allows every origin.
func NewHandler(backend Backend, allowedOrigins []string, opts ...Option) http.Handler {
	h := &handler{backend: backend, logger: zap.NewNop(), clock: time.Now}
	for _, opt := range opts {
		opt(h)
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/draws", h.handleOpenDraws).Methods(http.MethodGet)
	api.HandleFunc("/draws/{id}", h.handleGetDraw).Methods(http.MethodGet)
	api.HandleFunc("/draws/{id}/winning-numbers", h.handleWinningNumbers).Methods(http.MethodPost)
	api.HandleFunc("/draws/{id}/status", h.handleTransition).Methods(http.MethodPost)
	api.HandleFunc("/wagers", h.handlePlaceWager).Methods(http.MethodPost)
	api.HandleFunc("/wagers/{id}", h.handleGetWager).Methods(http.MethodGet)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept-Language"},
	})
	return c.Handler(router)
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   h.clock().UTC().Unix(),
	})
}

func (h *handler) handleOpenDraws(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := callContext(r)
	defer cancel()
	resp, err := h.backend.GetOpenDraws(ctx, &lotteryv1.GetOpenDrawsRequest{
		GameID: r.URL.Query().Get("game_id"),
	})
	h.respond(w, r, resp, err)
}

func (h *handler) handleGetDraw(w http.ResponseWriter, r *http.Request) {
	id, ok := drawID(w, r)
	if !ok {
		return
	}
	ctx, cancel := callContext(r)
	defer cancel()
	resp, err := h.backend.GetDraw(ctx, &lotteryv1.GetDrawRequest{DrawID: id})
	h.respond(w, r, resp, err)
}

func (h *handler) handleWinningNumbers(w http.ResponseWriter, r *http.Request) {
	id, ok := drawID(w, r)
	if !ok {
		return
	}
	var req lotteryv1.ReceiveExternalDrawNumbersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.DrawID = id
	ctx, cancel := callContext(r)
	defer cancel()
	resp, err := h.backend.ReceiveExternalDrawNumbers(ctx, &req)
	h.respond(w, r, resp, err)
}

func (h *handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := drawID(w, r)
	if !ok {
		return
	}
	var req lotteryv1.TransitionDrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.DrawID = id
	ctx, cancel := callContext(r)
	defer cancel()
	resp, err := h.backend.TransitionDraw(ctx, &req)
	h.respond(w, r, resp, err)
}

func (h *handler) handlePlaceWager(w http.ResponseWriter, r *http.Request) {
	var req lotteryv1.PlaceWagerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := callContext(r)
	defer cancel()
	resp, err := h.backend.PlaceWager(ctx, &req)
	if err == nil {
		writeJSON(w, http.StatusCreated, resp)
		return
	}
	h.respond(w, r, nil, err)
}

func (h *handler) handleGetWager(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := callContext(r)
	defer cancel()
	resp, err := h.backend.GetWager(ctx, &lotteryv1.GetWagerRequest{
		WagerID: mux.Vars(r)["id"],
	})
	h.respond(w, r, resp, err)
}

func drawID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		invalid := apperrors.WithMetadata(apperrors.CodeDrawInvalidID, "draw id is not an integer", map[string]string{"DrawID": raw})
		code, body := errorResponse(apperrors.HandleError(invalid, r.Header.Get("Accept-Language")))
		writeJSON(w, code, body)
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: ErrorDetail{
			Code:    "INVALID_REQUEST_BODY",
			Message: "request body is not valid JSON: " + err.Error(),
		}})
		return false
	}
	return true
}

func (h *handler) respond(w http.ResponseWriter, r *http.Request, resp any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	code, body := errorResponse(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("http request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, code, body)
}

// callContext bounds a backend call by timeouts.GRPCRequest and forwards
// Accept-Language as incoming gRPC metadata so error messages are localized
// like gRPC calls.
func callContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := r.Context()
	if lang := strings.TrimSpace(r.Header.Get("Accept-Language")); lang != "" {
		ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("accept-language", lang))
	}
	return context.WithTimeout(ctx, timeouts.GRPCRequest)
}

func errorResponse(err error) (int, ErrorBody) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, ErrorBody{Error: ErrorDetail{
			Code:    codes.Internal.String(),
			Message: "an unexpected error occurred",
		}}
	}
	detail := ErrorDetail{Code: st.Code().String(), Message: st.Message()}
	for _, d := range st.Details() {
		switch d := d.(type) {
		case *errdetails.ErrorInfo:
			detail.Code = d.GetReason()
			detail.Metadata = d.GetMetadata()
		case *errdetails.LocalizedMessage:
			if d.GetMessage() != "" {
				detail.Message = d.GetMessage()
			}
		}
	}
	return httpStatus(st.Code()), ErrorBody{Error: detail}
}

func httpStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition, codes.AlreadyExists:
		return http.StatusConflict
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Canceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
