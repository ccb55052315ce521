package domain

import (
	"encoding/json"
	"math"
)

// XPPerLevel is the amount of XP separating two consecutive levels.
const XPPerLevel = 100

// XP is a non-negative amount of experience points.
// Operations never mutate the receiver; they return new values.
type XP struct {
	amount int
}

// NewXP creates an XP value. Negative amounts are rejected.
func NewXP(amount int) (XP, error) {
	if amount < 0 {
		return XP{}, NewValidationError(CodeInvalidXP, "xp cannot be negative, got %d", amount)
	}
	return XP{amount: amount}, nil
}

// ZeroXP returns an XP value of zero.
func ZeroXP() XP { return XP{} }

// Amount returns the number of points.
func (x XP) Amount() int { return x.amount }

// Level returns floor(amount / XPPerLevel). Levels are derived, never stored.
func (x XP) Level() int { return x.amount / XPPerLevel }

// Add returns x + other.
func (x XP) Add(other XP) XP {
	return XP{amount: x.amount + other.amount}
}

// Subtract returns x - other, or an INSUFFICIENT_XP validation error when the
// result would be negative.
func (x XP) Subtract(other XP) (XP, error) {
	if other.amount > x.amount {
		return x, NewValidationError(CodeInsufficientXP,
			"cannot subtract %d xp from %d", other.amount, x.amount)
	}
	return XP{amount: x.amount - other.amount}, nil
}

// Multiply scales x by factor and floors the result. Factor must be a finite,
// non-negative number.
func (x XP) Multiply(factor float64) (XP, error) {
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return x, NewValidationError(CodeInvalidXP, "invalid xp multiplier %v", factor)
	}
	return XP{amount: int(math.Floor(float64(x.amount) * factor))}, nil
}

// MarshalJSON encodes XP as a bare integer.
func (x XP) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.amount)
}

// XPSource names what an XP award was earned for.
type XPSource string

// Possible XP sources
const (
	XPSourceLesson XPSource = "lesson"
	XPSourceReview XPSource = "review"
	XPSourceBonus  XPSource = "bonus"
)
