package protocol

// Error codes attached to rejected action submissions. They follow the HTTP status the
// game server answers with.
const (
	ErrIllegalState = "E_ILLEGAL_STATE"  // 400: action not allowed in the current game state
	ErrUnauthorized = "E_UNAUTHORIZED"   // 401: no authenticated user
	ErrForbidden    = "E_FORBIDDEN"      // 403: not the owner, or not a player
	ErrGameNotFound = "E_GAME_NOT_FOUND" // 404
	ErrInternal     = "E_INTERNAL"
	ErrTransport    = "E_TRANSPORT"
	ErrBadRequest   = "E_BAD_REQUEST" // rejected locally before sending
)

var knownCodes = map[string]struct{}{
	ErrIllegalState: {},
	ErrUnauthorized: {},
	ErrForbidden:    {},
	ErrGameNotFound: {},
	ErrInternal:     {},
	ErrTransport:    {},
	ErrBadRequest:   {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// CodeForStatus maps an HTTP status of the action endpoint to an error code.
func CodeForStatus(status int) string {
	switch status {
	case 400:
		return ErrIllegalState
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrGameNotFound
	default:
		return ErrInternal
	}
}
