package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config configures the process logger.
type Config struct {
	// Level is one of debug, info, warning or error. Anything else means info.
	Level string `yaml:"level" envconfig:"SEEKDB_LOG_LEVEL" default:"info"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name" envconfig:"SEEKDB_SERVICE_NAME" default:"seekdb"`

	// EnableTracing adds trace_id and span_id to loggers derived with WithContext.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"SEEKDB_LOG_ENABLE_TRACING"`

	// Development switches to a console encoder with colored levels.
	Development bool `yaml:"development" envconfig:"SEEKDB_LOG_DEVELOPMENT"`
}
