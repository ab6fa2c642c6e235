package metrics

import "github.com/zalgonoise/cfg"

const (
	metricsViaProm = iota
	metricsViaOtel
)

type Config struct {
	metricsType int

	serverPort int
}

func defaultConfig() Config {
	return Config{metricsType: metricsViaProm}
}

// ViaPrometheus selects the Prometheus-backed registry (the default).
func ViaPrometheus() cfg.Option[Config] {
	return cfg.Register(func(config Config) Config {
		config.metricsType = metricsViaProm

		return config
	})
}

// ViaOtel selects the OTLP-backed registry, pushed periodically to the
// collector configured via Init.
func ViaOtel() cfg.Option[Config] {
	return cfg.Register(func(config Config) Config {
		config.metricsType = metricsViaOtel

		return config
	})
}

// WithPort sets the Prometheus /metrics server's listen port.
func WithPort(port int) cfg.Option[Config] {
	if port < 0 {
		return cfg.NoOp[Config]{}
	}

	return cfg.Register(func(config Config) Config {
		config.serverPort = port

		return config
	})
}
