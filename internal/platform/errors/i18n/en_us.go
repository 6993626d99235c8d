package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeDrawInvalidStatusTransition  = "DRAW_INVALID_STATUS_TRANSITION"
	CodeDrawEventNotAllowed          = "DRAW_EVENT_NOT_ALLOWED"
	CodeDrawNotOpen                  = "DRAW_NOT_OPEN"
	CodeNoOpenDraws                  = "NO_OPEN_DRAWS"
	CodeDrawLevelMismatch            = "DRAW_LEVEL_MISMATCH"
	CodeDrawInvalidWinningNumbers    = "DRAW_INVALID_WINNING_NUMBERS"
	CodeDrawInvalidID                = "DRAW_INVALID_ID"
	CodeWagerInvalidUserID           = "WAGER_INVALID_USER_ID"
	CodeWagerEmptyDrawSelection      = "WAGER_EMPTY_DRAW_SELECTION"
	CodeWagerDuplicateDraw           = "WAGER_DUPLICATE_DRAW"
	CodeWagerParticipationNotAllowed = "WAGER_PARTICIPATION_NOT_ALLOWED"
	CodeWagerNoBoards                = "WAGER_NO_BOARDS"
	CodeWagerInvalidID               = "WAGER_INVALID_ID"
	CodeWagerInvalidStake            = "WAGER_INVALID_STAKE"
	CodeWagerInvalidGameType         = "WAGER_INVALID_GAME_TYPE"
	CodeWagerUnknownClass            = "WAGER_UNKNOWN_CLASS"
	CodeWagerMissingSelection        = "WAGER_MISSING_SELECTION"
	CodeWagerSelectionCountMismatch  = "WAGER_SELECTION_COUNT_MISMATCH"
	CodeWagerUnexpectedSelection     = "WAGER_UNEXPECTED_SELECTION"
	CodeWagerDuplicateSelection      = "WAGER_DUPLICATE_SELECTION"
	CodeWagerSelectionOutOfRange     = "WAGER_SELECTION_OUT_OF_RANGE"
	CodeWagerDuplicateSelectionValue = "WAGER_DUPLICATE_SELECTION_VALUE"
	CodeGameInvalidID                = "GAME_INVALID_ID"
	CodeNotFound                     = "NOT_FOUND"
	CodeSeedInvalid                  = "SEED_INVALID"
)

var enUSCatalog = &Catalog{
	locale: BaseLocale,
	messages: map[Code]string{
		// Draw errors
		CodeDrawInvalidStatusTransition: "Cannot transition draw from {{.FromStatus}} to {{.ToStatus}}",
		CodeDrawEventNotAllowed:         "Cannot {{.Event}} a draw that is {{.FromStatus}}",
		CodeDrawNotOpen:                 "Draw {{.DrawID}} is not open for wagering",
		CodeNoOpenDraws:                 "There are no open draws right now",
		CodeDrawLevelMismatch:           "Winning numbers do not match the draw levels of this game",
		CodeDrawInvalidWinningNumbers:   "Winning numbers for {{.DrawLevel}} are invalid",
		CodeDrawInvalidID:               "Draw ID {{.DrawID}} is invalid",

		// Wager request errors
		CodeWagerInvalidUserID:           "User ID is invalid",
		CodeWagerEmptyDrawSelection:      "At least one draw must be selected",
		CodeWagerDuplicateDraw:           "Draw {{.DrawID}} was selected more than once",
		CodeWagerParticipationNotAllowed: "A wager cannot span {{.Count}} draws",
		CodeWagerNoBoards:                "At least one board is required",
		CodeWagerInvalidID:               "Wager ID is invalid",
		CodeWagerInvalidStake:            "Stake {{.Stake}} is not allowed for {{.Class}}",

		// Board validation errors
		CodeWagerInvalidGameType:         "Board {{.Board}} has an invalid game type",
		CodeWagerUnknownClass:            "Board {{.Board}} does not match any playable wager class",
		CodeWagerMissingSelection:        "Board {{.Board}} is missing selection {{.Selection}}",
		CodeWagerSelectionCountMismatch:  "Board {{.Board}} selection {{.Selection}} needs {{.Want}} values, got {{.Got}}",
		CodeWagerUnexpectedSelection:     "Board {{.Board}} has unexpected selection {{.Selection}}",
		CodeWagerDuplicateSelection:      "Board {{.Board}} repeats selection {{.Selection}}",
		CodeWagerSelectionOutOfRange:     "Board {{.Board}} selection {{.Selection}} value {{.Value}} is outside {{.Min}}..{{.Max}}",
		CodeWagerDuplicateSelectionValue: "Board {{.Board}} selection {{.Selection}} repeats value {{.Value}}",

		// Catalog errors
		CodeGameInvalidID: "Game ID is invalid",

		// Storage errors
		CodeNotFound: "The requested resource was not found",

		// Random/seed errors
		CodeSeedInvalid: "Random seed must be exactly 64 bytes",
	},
}
