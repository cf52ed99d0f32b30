package transfer

import "errors"

var (
	ErrNoPayload  = errors.New("neither file path nor file bytes supplied")
	ErrEmptyText  = errors.New("empty text")
	ErrBadRequest = errors.New("rejected by peer")
	ErrPeerIO     = errors.New("peer file IO failure")
	ErrUnknown    = errors.New("unknown error")
)

// ParseStatus maps a transfer endpoint status code to a sentinel error.
func ParseStatus(status int) error {
	switch status {
	case 200:
		return nil
	case 400:
		return ErrBadRequest
	case 500:
		return ErrPeerIO
	default:
		return ErrUnknown
	}
}
