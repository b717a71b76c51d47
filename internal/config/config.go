package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port            string
	DataDir         string
	WhatsAppNumber  string
	PixKey          string
	DefaultTerminal string
	IdleTimeout     time.Duration
	ResetDelay      time.Duration
	AllowedOrigins  []string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8081"),
		DataDir:         getEnv("DATA_DIR", "./data"),
		WhatsAppNumber:  getEnv("WHATSAPP_NUMBER", "5598984425355"),
		PixKey:          getEnv("PIX_KEY", "pedidos@dignoacai.com.br"),
		DefaultTerminal: getEnv("DEFAULT_TERMINAL", "kiosk-1"),
		IdleTimeout:     getDuration("IDLE_TIMEOUT", 90*time.Second),
		ResetDelay:      getDuration("RESET_DELAY", 3*time.Second),
		AllowedOrigins:  getList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
