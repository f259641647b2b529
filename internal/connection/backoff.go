package connection

import "time"

// Backoff produces exponentially growing reconnect delays.
//
// Next returns the delay to wait now and doubles the following one, capped at
// Max. Reset restores Base. The zero value is not usable; use NewBackoff.
type Backoff struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
}

// NewBackoff creates a Backoff starting at base and capped at max.
func NewBackoff(base, max time.Duration) *Backoff {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}
	return &Backoff{base: base, max: max, current: base}
}

// Next returns the current delay and advances to the next one.
func (b *Backoff) Next() time.Duration {
	d := b.current
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Current returns the delay Next would return, without advancing.
func (b *Backoff) Current() time.Duration {
	return b.current
}

// Reset restores the floor delay.
func (b *Backoff) Reset() {
	b.current = b.base
}
