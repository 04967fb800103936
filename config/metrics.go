package config

// MetricsConfig selects the metric sinks.
type MetricsConfig struct {
	// PrometheusEnabled exposes /metrics on PrometheusPort.
	PrometheusEnabled bool `json:"prometheus_enabled"`
	PrometheusPort    int  `json:"prometheus_port"`

	// InfluxEnabled additionally writes events to InfluxDB. The sink falls
	// back to a no-op when the instance is unreachable at startup.
	InfluxEnabled bool   `json:"influx_enabled"`
	InfluxURL     string `json:"influx_url"`
	InfluxToken   string `json:"influx_token"`
	InfluxOrg     string `json:"influx_org"`
	InfluxBucket  string `json:"influx_bucket"`
}
