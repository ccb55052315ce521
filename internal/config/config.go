package config

import (
	"github.com/phrazzld/scry-progression/internal/domain/lesson"
	"github.com/phrazzld/scry-progression/internal/domain/srs"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Log     LogConfig     `mapstructure:"log" validate:"required"`
	SRS     SRSConfig     `mapstructure:"srs" validate:"required"`
	Lesson  LessonConfig  `mapstructure:"lesson" validate:"required"`
	Hearts  HeartsConfig  `mapstructure:"hearts" validate:"required"`
	Service ServiceConfig `mapstructure:"service" validate:"required"`
	Metrics MetricsConfig `mapstructure:"metrics" validate:"required"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// SRSConfig contains the spaced-repetition policy.
type SRSConfig struct {
	Ladder                     []int   `mapstructure:"ladder" validate:"required,min=1,dive,gte=1"`
	MinEaseFactor              float64 `mapstructure:"min_ease_factor" validate:"gt=1"`
	MaxEaseFactor              float64 `mapstructure:"max_ease_factor" validate:"gtefield=MinEaseFactor"`
	StrugglingFailureThreshold int     `mapstructure:"struggling_failure_threshold" validate:"gte=1"`
	StrugglingMinAttempts      int     `mapstructure:"struggling_min_attempts" validate:"gte=1"`
	StrugglingFailureRatio     float64 `mapstructure:"struggling_failure_ratio" validate:"gt=0,lt=1"`
}

// Params converts the section into spaced-repetition parameters.
func (c SRSConfig) Params() *srs.Params {
	return srs.NewParams(srs.ParamsConfig{
		Ladder:                     c.Ladder,
		MinEaseFactor:              c.MinEaseFactor,
		MaxEaseFactor:              c.MaxEaseFactor,
		StrugglingFailureThreshold: c.StrugglingFailureThreshold,
		StrugglingMinAttempts:      c.StrugglingMinAttempts,
		StrugglingFailureRatio:     c.StrugglingFailureRatio,
	})
}

// LessonConfig contains the lesson reward policy and pass gate.
type LessonConfig struct {
	BaseXP         int `mapstructure:"base_xp" validate:"gte=0"`
	PerfectBonusXP int `mapstructure:"perfect_bonus_xp" validate:"gte=0"`
	// PassThreshold is the minimum accuracy, in percent, for a finished lesson
	// to count as completed rather than failed. Zero passes every finished lesson.
	PassThreshold int `mapstructure:"pass_threshold" validate:"gte=0,lte=100"`
}

// Rewards converts the section into lesson reward parameters.
func (c LessonConfig) Rewards() lesson.RewardParams {
	return lesson.RewardParams{BaseXP: c.BaseXP, PerfectBonusXP: c.PerfectBonusXP}
}

// HeartsConfig contains heart economy settings.
type HeartsConfig struct {
	RefillCostXP int `mapstructure:"refill_cost_xp" validate:"gte=0"`
}

// ServiceConfig contains use-case orchestration settings.
type ServiceConfig struct {
	// MaxSaveAttempts bounds the load-mutate-save cycles run on version conflicts.
	MaxSaveAttempts int `mapstructure:"max_save_attempts" validate:"gte=1,lte=10"`
}

// MetricsConfig contains Prometheus metric settings.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" validate:"required"`
}
