package pubsub

import "github.com/nfrund/topictracker/internal/config"

// NewTracingConfig reads the PUBSUB_TRACING_* settings from cfg.
func NewTracingConfig(cfg config.Provider) TracingConfig {
	return TracingConfig{
		Enabled:     cfg.GetTracingEnabled(),
		ServiceName: cfg.GetTracingServiceName(),
		ZipkinURL:   cfg.GetTracingZipkinURL(),
	}
}
