package llm

import "fmt"

// ConfigError means no usable provider configuration is present. It is fatal
// for the AI path: callers should run with deterministic fallbacks instead of
// retrying.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "llm: not configured: " + e.Reason }

// ProviderError means the remote call returned a non-success status or the
// response was missing the expected content field. Recoverable: callers
// substitute their deterministic fallback.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm: %s returned status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("llm: %s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }
