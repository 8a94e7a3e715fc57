package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
)

func GetEnv(key, fallback string, log *logger.Logger) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		if log != nil {
			log.Debug("Env var unset, using fallback", "key", key)
		}
		return fallback
	}
	return v
}

func GetEnvAsInt(key string, fallback int, log *logger.Logger) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		if log != nil {
			log.Warn("Env var is not an int, using fallback", "key", key, "value", v)
		}
		return fallback
	}
	return i
}

func GetEnvAsBool(key string, fallback bool, log *logger.Logger) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		if log != nil {
			log.Warn("Env var is not a bool, using fallback", "key", key, "value", v)
		}
		return fallback
	}
}
