package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/mdreplay/engine/internal/log"
)

// parseString reads key from the environment, logging whether the value
// came from the environment or fell through to defaultValue. Sensitive keys
// (matched by substring) are logged without their value.
func parseString(key, defaultValue string) string {
	logger := log.L().With().Str("component", "config").Logger()
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		logger.Debug().Str("key", key).Str("source", "default").Msg("using default value")
		return defaultValue
	}
	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "password") {
		logger.Debug().Str("key", key).Str("source", "environment").Bool("sensitive", true).Msg("using environment variable")
	} else {
		logger.Debug().Str("key", key).Str("value", value).Str("source", "environment").Msg("using environment variable")
	}
	return value
}

func parseInt(key string, defaultValue int) int {
	logger := log.L().With().Str("component", "config").Logger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Msg("invalid integer environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Int("value", i).Str("source", "environment").Msg("using environment variable")
	return i
}

func parseInt64(key string, defaultValue int64) int64 {
	logger := log.L().With().Str("component", "config").Logger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Msg("invalid integer environment variable, using default")
		return defaultValue
	}
	return i
}

func parseBool(key string, defaultValue bool) bool {
	logger := log.L().With().Str("component", "config").Logger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Msg("invalid boolean environment variable, using default")
		return defaultValue
	}
	return b
}

func parseStringSlice(key string, defaultValue []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
