package simulation

import "fmt"

// ConfigurationError reports an invalid engine configuration. NewEngine
// returns it instead of an engine.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("simulation config: %s: %s", e.Field, e.Reason)
}

// NotFoundError is returned when a query names a field id that was not
// configured.
type NotFoundError struct {
	FieldID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("field %q not found", e.FieldID)
}
