package locationshare

import (
	"context"
	"errors"

	"github.com/kaan069/yolsepetigoAcenta/internal/geo"
)

var (
	ErrInvalidToken       = errors.New("invalid share link")
	ErrTimeout            = errors.New("no reply before timeout")
	ErrClosedWithoutReply = errors.New("socket closed without reply")
)

// ServerError is an error reply sent by the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "server error: " + defaultServerMessage
	}
	return "server error: " + e.Message
}

const defaultServerMessage = "Hata olustu"

// User-facing texts.
const (
	MsgInvalidLink = "Gecersiz link"
	MsgSendFailed  = "Konum gonderilemedi. Lutfen tekrar deneyin."
)

// UserMessage returns the text shown to the customer for a Share error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrInvalidToken) {
		return MsgInvalidLink
	}
	var ge *geo.Error
	if errors.As(err, &ge) {
		return ge.UserMessage()
	}
	return MsgSendFailed
}

// resultLabel is the metrics label for a settled Share.
func resultLabel(err error) string {
	var ge *geo.Error
	var se *ServerError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.As(err, &ge):
		return "geolocation_" + ge.Kind.String()
	case errors.As(err, &se):
		return "server_error"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrClosedWithoutReply):
		return "closed_without_reply"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "connection_error"
	}
}
