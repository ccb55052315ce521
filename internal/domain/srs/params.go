package srs

import (
	"errors"
	"fmt"
)

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Ladder maps the number of consecutive correct reviews (index) to an
	// interval in days. Counts beyond the last rung stay on the last rung.
	Ladder []int

	// Ease factor bounds for CalculateWithEaseFactor
	MinEaseFactor float64
	MaxEaseFactor float64

	// Struggling detection
	StrugglingFailureThreshold int
	StrugglingMinAttempts      int
	StrugglingFailureRatio     float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	Ladder []int

	MinEaseFactor float64
	MaxEaseFactor float64

	StrugglingFailureThreshold int
	StrugglingMinAttempts      int
	StrugglingFailureRatio     float64
}

// ErrInvalidParams is returned when a Params instance cannot drive the algorithm.
var ErrInvalidParams = errors.New("invalid srs params")

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Ladder: []int{1, 3, 7, 14, 30},

		MinEaseFactor: 1.3,
		MaxEaseFactor: 2.5,

		// Three failures in a row, or failing more than half of at least five attempts
		StrugglingFailureThreshold: 3,
		StrugglingMinAttempts:      5,
		StrugglingFailureRatio:     0.5,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if len(config.Ladder) > 0 {
		params.Ladder = append([]int(nil), config.Ladder...)
	}

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}

	if config.StrugglingFailureThreshold > 0 {
		params.StrugglingFailureThreshold = config.StrugglingFailureThreshold
	}
	if config.StrugglingMinAttempts > 0 {
		params.StrugglingMinAttempts = config.StrugglingMinAttempts
	}
	if config.StrugglingFailureRatio > 0 {
		params.StrugglingFailureRatio = config.StrugglingFailureRatio
	}

	return params
}

// Validate checks that the parameters are usable.
func (p *Params) Validate() error {
	if len(p.Ladder) == 0 {
		return fmt.Errorf("%w: ladder cannot be empty", ErrInvalidParams)
	}
	prev := 0
	for i, days := range p.Ladder {
		if days < 1 {
			return fmt.Errorf("%w: ladder rung %d must be at least 1 day, got %d", ErrInvalidParams, i, days)
		}
		if days < prev {
			return fmt.Errorf("%w: ladder must not decrease (rung %d: %d < %d)", ErrInvalidParams, i, days, prev)
		}
		prev = days
	}
	if p.MinEaseFactor <= 1.0 {
		return fmt.Errorf("%w: min ease factor must be greater than 1.0", ErrInvalidParams)
	}
	if p.MaxEaseFactor < p.MinEaseFactor {
		return fmt.Errorf("%w: max ease factor %.2f below min %.2f",
			ErrInvalidParams, p.MaxEaseFactor, p.MinEaseFactor)
	}
	if p.StrugglingFailureThreshold < 1 || p.StrugglingMinAttempts < 1 {
		return fmt.Errorf("%w: struggling thresholds must be positive", ErrInvalidParams)
	}
	if p.StrugglingFailureRatio <= 0 || p.StrugglingFailureRatio >= 1 {
		return fmt.Errorf("%w: struggling ratio must be in (0, 1)", ErrInvalidParams)
	}
	return nil
}
