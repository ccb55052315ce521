package lesson

import (
	"github.com/phrazzld/scry-progression/internal/domain"
)

// RewardParams is the XP policy for completed lessons.
type RewardParams struct {
	// BaseXP is awarded for every completed lesson.
	BaseXP int
	// PerfectBonusXP is added when the lesson was completed without a mistake.
	PerfectBonusXP int
}

// DefaultRewardParams returns 10 XP per lesson with a 5 XP perfect bonus.
func DefaultRewardParams() RewardParams {
	return RewardParams{BaseXP: 10, PerfectBonusXP: 5}
}

// Validate rejects negative rewards.
func (p RewardParams) Validate() error {
	if p.BaseXP < 0 || p.PerfectBonusXP < 0 {
		return domain.NewValidationError(domain.CodeInvalidXP,
			"lesson rewards cannot be negative (base %d, bonus %d)", p.BaseXP, p.PerfectBonusXP)
	}
	return nil
}

// Reward returns the XP for a completed lesson.
func (p RewardParams) Reward(perfect bool) domain.XP {
	amount := p.BaseXP
	if perfect {
		amount += p.PerfectBonusXP
	}
	xp, err := domain.NewXP(amount)
	if err != nil {
		return domain.ZeroXP()
	}
	return xp
}
