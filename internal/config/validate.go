package config

import (
	"fmt"
	"strings"

	"github.com/cursor-tools/cursor-patch/internal/precheck"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// ValidationResult separates errors that must stop the run from values that
// were corrected in place.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

func (r ValidationResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// ValidateTiered checks the config. Out-of-range log sizes are clamped and
// reported as warnings; unusable version bounds and formats are fatal. It
// does not log: the caller reports warnings once logging is configured.
func (c *Config) ValidateTiered() ValidationResult {
	var r ValidationResult

	if _, err := c.Constraint(); err != nil {
		r.Fatals = append(r.Fatals, err)
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		r.Fatals = append(r.Fatals, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_level %q is not valid, using info", c.LogLevel))
		c.LogLevel = "info"
	}

	if c.LogMaxSizeMB < 1 {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_max_size_mb %d is below minimum 1, clamping", c.LogMaxSizeMB))
		c.LogMaxSizeMB = 1
	} else if c.LogMaxSizeMB > 500 {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_max_size_mb %d exceeds maximum 500, clamping", c.LogMaxSizeMB))
		c.LogMaxSizeMB = 500
	}

	if c.LogMaxBackups < 1 {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_max_backups %d is below minimum 1, clamping", c.LogMaxBackups))
		c.LogMaxBackups = 1
	} else if c.LogMaxBackups > 20 {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_max_backups %d exceeds maximum 20, clamping", c.LogMaxBackups))
		c.LogMaxBackups = 20
	}

	return r
}

// Constraint builds the version range from min_version and max_version.
func (c *Config) Constraint() (precheck.Constraint, error) {
	return precheck.NewConstraint(strings.TrimSpace(c.MinVersion), strings.TrimSpace(c.MaxVersion))
}
