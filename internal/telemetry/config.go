package telemetry

// Config controls distributed tracing.
type Config struct {
	// Enabled turns tracing on. When false Init installs a no-op
	// tracer and no exporter is created.
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// ServiceName identifies this process in traces.
	ServiceName string `mapstructure:"service_name" yaml:"service_name" json:"service_name"`

	// ServiceVersion is attached to every span resource.
	ServiceVersion string `mapstructure:"service_version" yaml:"service_version" json:"service_version"`

	// Endpoint is the OTLP gRPC collector address.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`

	// Insecure disables TLS on the exporter connection.
	Insecure bool `mapstructure:"insecure" yaml:"insecure" json:"insecure"`

	// SampleRate selects the trace sampling ratio: 0 disables, 1
	// samples everything, values in between sample that fraction.
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
}

// DefaultConfig returns the tracing defaults: disabled, local
// collector, full sampling.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "p4session",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}
