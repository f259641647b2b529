package tracking

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EventType is the "type" discriminator of a stream frame.
type EventType string

// Stream event types.
const (
	EventConnectionEstablished EventType = "connection_established"
	EventNewOffer              EventType = "new_offer"
	EventOfferWithdrawn        EventType = "offer_withdrawn"
	EventOfferAccepted         EventType = "offer_accepted"
	EventRequestCompleted      EventType = "request_completed"
	EventRequestCancelled      EventType = "request_cancelled"
	EventPaymentCompleted      EventType = "payment_completed"
)

// Known reports whether t is one of the stream event types.
func (t EventType) Known() bool {
	switch t {
	case EventConnectionEstablished, EventNewOffer, EventOfferWithdrawn:
		return true
	}
	return t.StatusChange()
}

// StatusChange reports whether t means the request's status may have changed.
func (t EventType) StatusChange() bool {
	switch t {
	case EventOfferAccepted, EventRequestCompleted, EventRequestCancelled, EventPaymentCompleted:
		return true
	}
	return false
}

// Decode errors. Both are dropped by the Connection.
var (
	ErrMalformed   = errors.New("malformed event")
	ErrUnknownType = errors.New("unknown event type")
)

// Offer is a driver's offer carried by new_offer.
type Offer struct {
	OfferID     int64       `json:"offer_id"`
	DriverName  string      `json:"driver_name"`
	DriverPhone string      `json:"driver_phone"`
	Price       json.Number `json:"price"` // Decimal, sent as string or number
	ETAMinutes  int         `json:"eta_minutes"`

	// Raw is the offer object exactly as received.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the raw object.
func (o *Offer) UnmarshalJSON(data []byte) error {
	type plain Offer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Offer(p)
	o.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Event is one decoded stream frame.
type Event struct {
	Type       EventType
	Offer      *Offer // new_offer only
	OfferID    int64  // offer_withdrawn only
	Raw        json.RawMessage
	ReceivedAt time.Time
}

type wireEvent struct {
	Type    EventType `json:"type"`
	Offer   *Offer    `json:"offer"`
	OfferID *int64    `json:"offer_id"`
}

// Decode parses a stream frame. It returns an error wrapping ErrMalformed or
// ErrUnknownType for frames that must be ignored.
func Decode(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	ev := Event{
		Type: w.Type,
		Raw:  append(json.RawMessage(nil), data...),
	}

	switch {
	case !w.Type.Known():
		return ev, fmt.Errorf("%w: %q", ErrUnknownType, w.Type)

	case w.Type == EventNewOffer:
		if w.Offer == nil {
			return ev, fmt.Errorf("%w: new_offer without offer", ErrMalformed)
		}
		ev.Offer = w.Offer

	case w.Type == EventOfferWithdrawn:
		if w.OfferID == nil {
			return ev, fmt.Errorf("%w: offer_withdrawn without offer_id", ErrMalformed)
		}
		ev.OfferID = *w.OfferID
	}

	return ev, nil
}

// discardReason is the metrics label for a Decode error.
func discardReason(err error) string {
	if errors.Is(err, ErrUnknownType) {
		return "unknown_type"
	}
	return "malformed"
}
