package tracer

// Config configures the OpenTelemetry tracer provider.
type Config struct {
	// ServiceName is the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME" default:"seekdb"`

	// AppEnv is the deployment.environment resource attribute.
	AppEnv string `yaml:"app_env" envconfig:"TRACER_APP_ENV" default:"development"`

	// EnableExport sends spans to an OTLP/HTTP collector. The endpoint is
	// taken from the standard OTEL_EXPORTER_OTLP_* environment variables
	// unless Endpoint is set.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`

	// Endpoint is the host:port of the collector, for example "localhost:4318".
	Endpoint string `yaml:"endpoint" envconfig:"TRACER_ENDPOINT"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" envconfig:"TRACER_INSECURE"`
}
