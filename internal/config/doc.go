// Package config loads and validates application configuration.
//
// Values come from defaults, an optional YAML file and PROGRESSION_*
// environment variables, in increasing order of precedence. Nested keys map to
// variables by replacing dots with underscores, e.g. lesson.base_xp is read
// from PROGRESSION_LESSON_BASE_XP.
package config
