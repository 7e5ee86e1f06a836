// Package config resolves the environment-scoped options named in §6:
// bind address, log broker/topic settings, backing store URLs, and the
// service-to-service URLs each component dials out to.
package config

import (
	"os"
	"strings"
)

// Config is the full set of environment options a service binary may
// need; each cmd/* main reads only the fields relevant to it.
type Config struct {
	RunURL string // bind address, e.g. ":8080"

	LogBrokers  []string // comma-separated Kafka seed brokers
	LogGroup    string
	ObjectTopic string
	ReprTopic   string

	StoreURL string // DuckDB backing store path, for changelog (objects takes its own --store flag)
	RedisURL string // Redis address, for dependencies/undo

	ChangeLogURL    string
	ObjectsURL      string
	DependenciesURL string
	SubmitURL       string
	UndoURL         string
	RepCacheURL     string

	GeomURL string

	TelemetryURL string
}

// FromEnv reads every recognized option from the process environment,
// applying the defaults a local single-process run needs so a developer
// can start a service with no environment set up at all.
func FromEnv() Config {
	return Config{
		RunURL:          getenv("RUN_URL", ":8080"),
		LogBrokers:      splitList(getenv("LOG_BROKERS", "localhost:9092")),
		LogGroup:        getenv("LOG_GROUP", "weave"),
		ObjectTopic:     getenv("OBJECT_TOPIC", "weave.changes"),
		ReprTopic:       getenv("REPR_TOPIC", "weave.representations"),
		StoreURL:        getenv("STORE_URL", ""),
		RedisURL:        getenv("REDIS_URL", "localhost:6379"),
		ChangeLogURL:    getenv("CHANGELOG_URL", "http://localhost:8080"),
		ObjectsURL:      getenv("OBJECTS_URL", "http://localhost:8081"),
		DependenciesURL: getenv("DEPENDENCIES_URL", "http://localhost:8082"),
		SubmitURL:       getenv("SUBMIT_URL", "http://localhost:8084"),
		UndoURL:         getenv("UNDO_URL", "http://localhost:8085"),
		RepCacheURL:     getenv("REP_CACHE_URL", "http://localhost:8086"),
		GeomURL:         getenv("GEOM_URL", "http://localhost:8087"),
		TelemetryURL:    getenv("TELEMETRY_URL", ""),
	}
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
