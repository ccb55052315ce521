package domain

import "encoding/json"

// MaxHearts is the heart capacity of every learner.
const MaxHearts = 5

// Hearts is the bounded "lives" resource, always within [0, MaxHearts].
type Hearts struct {
	remaining int
}

// NewHearts creates a Hearts value, rejecting counts outside [0, MaxHearts].
func NewHearts(remaining int) (Hearts, error) {
	if remaining < 0 || remaining > MaxHearts {
		return Hearts{}, NewValidationError(CodeInvalidHearts,
			"hearts must be between 0 and %d, got %d", MaxHearts, remaining)
	}
	return Hearts{remaining: remaining}, nil
}

// FullHearts returns a full set of hearts.
func FullHearts() Hearts { return Hearts{remaining: MaxHearts} }

// Remaining returns the number of hearts left.
func (h Hearts) Remaining() int { return h.remaining }

// IsEmpty reports whether no hearts are left.
func (h Hearts) IsEmpty() bool { return h.remaining == 0 }

// IsFull reports whether hearts are at capacity.
func (h Hearts) IsFull() bool { return h.remaining == MaxHearts }

// Deduct removes one heart. It fails with NO_HEARTS when none are left;
// callers should check IsEmpty first or handle the error.
func (h Hearts) Deduct() (Hearts, error) {
	if h.remaining == 0 {
		return h, ErrNoHearts
	}
	return Hearts{remaining: h.remaining - 1}, nil
}

// Refill adds n hearts, capped at MaxHearts.
func (h Hearts) Refill(n int) (Hearts, error) {
	if n < 0 {
		return h, NewValidationError(CodeInvalidHearts, "refill amount cannot be negative, got %d", n)
	}
	remaining := h.remaining + n
	if remaining > MaxHearts {
		remaining = MaxHearts
	}
	return Hearts{remaining: remaining}, nil
}

// MarshalJSON encodes Hearts as a bare integer.
func (h Hearts) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.remaining)
}

// HeartRefillSource names how hearts were restored.
type HeartRefillSource string

// Possible heart refill sources
const (
	HeartRefillRegeneration HeartRefillSource = "regeneration"
	HeartRefillPurchase     HeartRefillSource = "purchase"
)
