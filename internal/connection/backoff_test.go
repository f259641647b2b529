package connection

import (
	"testing"
	"time"
)

func TestBackoff_Sequence(t *testing.T) {
	b := NewBackoff(time.Second, 30*time.Second)

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}

	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("Next() #%d = %v, want %v", i+1, got, w)
		}
	}
}

func TestBackoff_Reset(t *testing.T) {
	b := NewBackoff(time.Second, 30*time.Second)
	b.Next()
	b.Next()
	b.Next()

	if got := b.Current(); got != 8*time.Second {
		t.Fatalf("Current() = %v, want 8s", got)
	}

	b.Reset()

	if got := b.Next(); got != time.Second {
		t.Errorf("Next() after Reset = %v, want 1s", got)
	}
	if got := b.Current(); got != 2*time.Second {
		t.Errorf("Current() = %v, want 2s", got)
	}
}

func TestBackoff_InvalidBounds(t *testing.T) {
	tests := []struct {
		name     string
		base     time.Duration
		max      time.Duration
		wantNext []time.Duration
	}{
		{
			name:     "zero base falls back to 1s",
			base:     0,
			max:      4 * time.Second,
			wantNext: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second},
		},
		{
			name:     "max below base pins to base",
			base:     500 * time.Millisecond,
			max:      100 * time.Millisecond,
			wantNext: []time.Duration{500 * time.Millisecond, 500 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackoff(tt.base, tt.max)
			for i, w := range tt.wantNext {
				if got := b.Next(); got != w {
					t.Errorf("Next() #%d = %v, want %v", i+1, got, w)
				}
			}
		})
	}
}
