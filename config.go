package participatory

import (
	"errors"
	"strings"
)

var (
	ErrLoggingProviderUnknown = errors.New("participatory: unknown logging provider")
	ErrLoggingLevelInvalid    = errors.New("participatory: invalid logging level")
	ErrLoggingFormatInvalid   = errors.New("participatory: invalid logging format")
	ErrLimitNegative          = errors.New("participatory: limits must be zero or positive")
)

// Config captures the runtime configuration of the module. Zero values fall
// back to the defaults returned by DefaultConfig.
type Config struct {
	Logging LoggingConfig
	Limits  LimitsConfig
	Parser  ParserConfig
}

// LoggingConfig selects and tunes the logger provider.
type LoggingConfig struct {
	// Provider picks the logging backend: "noop" or "gologger".
	Provider  string
	Level     string
	Format    string
	AddSource bool
}

// LimitsConfig bounds document and container sizes. Zero means unbounded.
// These are per-call inputs, not global state; hosts can run several modules
// with different limits side by side.
type LimitsConfig struct {
	MaxDocumentBytes     int
	MaxNodesPerContainer int
}

// ParserConfig tunes the markdown engine.
type ParserConfig struct {
	// Extensions names goldmark extensions to enable (gfm, table, footnote...).
	Extensions []string
}

// DefaultConfig returns the baseline configuration: no-op logging, GFM
// parsing, unbounded sizes.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Provider: "noop",
			Level:    "info",
			Format:   "json",
		},
	}
}

// Validate checks the configuration for inconsistent values.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Provider)) {
	case "", "noop", "gologger":
	default:
		return ErrLoggingProviderUnknown
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return ErrLoggingLevelInvalid
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "json", "console", "pretty":
	default:
		return ErrLoggingFormatInvalid
	}

	if c.Limits.MaxDocumentBytes < 0 || c.Limits.MaxNodesPerContainer < 0 {
		return ErrLimitNegative
	}

	return nil
}
