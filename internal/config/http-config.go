package config

type HTTPConfig struct {
	Addr string
}

func NewHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		Addr: ":" + getEnv("HTTP_PORT", "7580"),
	}
}
