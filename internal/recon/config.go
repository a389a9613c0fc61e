package recon

import "fmt"

// Config holds the tunable thresholds of the reconciliation engine.
// There is exactly one minimum key length; call sites must not carry
// their own.
type Config struct {
	// MinPhoneKeyLen is the shortest phone key considered usable.
	// Shorter keys yield an empty candidate set unconditionally.
	MinPhoneKeyLen int `json:"min_phone_key_len" yaml:"min_phone_key_len"`

	// MaxDeltaSec bounds the circular minute-second distance a
	// candidate may have from the recording's embedded clock.
	MaxDeltaSec int `json:"max_delta_sec" yaml:"max_delta_sec"`

	// Sites are the known practice names, scanned in order.
	Sites []string `json:"sites" yaml:"sites"`

	// FallbackSite is tried last when no known site matched.
	FallbackSite string `json:"fallback_site" yaml:"fallback_site"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MinPhoneKeyLen: 5,
		MaxDeltaSec:    60,
		Sites:          []string{"Cheadle", "Heald Green", "Middleton", "Heckmondwike"},
		FallbackSite:   "Winsford",
	}
}

// Validate checks the configuration is internally consistent.
func (c Config) Validate() error {
	if c.MinPhoneKeyLen < 1 {
		return fmt.Errorf("min phone key length must be positive: %d", c.MinPhoneKeyLen)
	}
	if c.MaxDeltaSec < 0 || c.MaxDeltaSec >= 1800 {
		return fmt.Errorf("max delta must be within half the clock period: %d", c.MaxDeltaSec)
	}
	return nil
}
