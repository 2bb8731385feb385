// Package config reads typed settings from environment variables. A value
// that fails to parse is logged and replaced by the default.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup returns the trimmed value of key and whether it is non-blank.
func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func parsed[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("invalid environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", def),
			slog.String("type", typeName(def)))
		return def
	}
	return v
}

func typeName(v any) string {
	switch v.(type) {
	case int:
		return "integer"
	case bool:
		return "boolean"
	case time.Duration:
		return "duration"
	}
	return "string"
}

// GetEnvString returns the value of key, or def if unset or blank.
//
//	apiURL := GetEnvString("ARTICLE_API_URL", "http://localhost:8080")
func GetEnvString(key, def string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return def
}

// GetEnvInt returns key parsed as a base 10 int.
func GetEnvInt(key string, def int) int {
	return parsed(key, def, strconv.Atoi)
}

// GetEnvBool returns key parsed with strconv.ParseBool.
//
//	enabled := GetEnvBool("DISCOVERY_ENABLED", false)
func GetEnvBool(key string, def bool) bool {
	return parsed(key, def, strconv.ParseBool)
}

// GetEnvDuration returns key parsed by time.ParseDuration ("30s", "1m").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	return parsed(key, def, time.ParseDuration)
}

// GetEnvStringList splits a comma-separated value, dropping blank entries.
// A value with no entries yields def.
//
//	origins := GetEnvStringList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8081"})
func GetEnvStringList(key string, def []string) []string {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// LookupEnv reports whether key is set to a non-blank value.
func LookupEnv(key string) (string, bool) {
	return lookup(key)
}
