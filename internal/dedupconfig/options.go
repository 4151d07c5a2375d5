// Package dedupconfig exposes helpers to read desktop deduplication settings
// from config.
package dedupconfig

import (
	"github.com/cristianoliveira/rx-intray/internal/config"
	"github.com/cristianoliveira/rx-intray/internal/dedup"
)

// Load returns deduplication options using current configuration values.
// Callers must have loaded the configuration.
func Load() dedup.Options {
	criteria := dedup.ParseCriteria(config.Get("desktop_dedup_criteria", string(dedup.CriteriaContent)))
	window := config.GetDuration("desktop_dedup_window", 0)
	return dedup.Options{Criteria: criteria, Window: window}
}
