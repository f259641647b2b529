package geo

import (
	"errors"
	"fmt"
)

var (
	ErrNoLocator          = errors.New("geolocation not supported")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// ErrorKind classifies a geolocation failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindPermissionDenied
	KindUnavailable
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission_denied"
	case KindUnavailable:
		return "unavailable"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is a classified geolocation failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "geolocation: " + e.Kind.String()
	}
	return fmt.Sprintf("geolocation: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the customer for this failure.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindPermissionDenied:
		return "Konum izni reddedildi. Lutfen tarayici ayarlarindan konum iznini verin."
	case KindUnavailable:
		if errors.Is(e.Err, ErrNoLocator) {
			return "Tarayiciniz konum desteklemiyor"
		}
		return "Konum bilgisi alinamadi."
	case KindTimeout:
		return "Konum istegi zaman asimina ugradi."
	default:
		return "Konum alinirken hata olustu."
	}
}

// PermissionDenied returns an *Error of kind KindPermissionDenied.
func PermissionDenied(err error) *Error {
	return &Error{Kind: KindPermissionDenied, Err: err}
}

// Unavailable returns an *Error of kind KindUnavailable.
func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Err: err}
}

// IsKind reports whether err is a geolocation *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Kind == k
}
