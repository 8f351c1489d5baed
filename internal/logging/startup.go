package logging

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects resolved configuration and feature flags, then emits
// a single structured event summarising the process state at boot. One event
// instead of a scatter of lines makes it easy to see exactly how the server
// was configured when reading a log afterwards.
type StartupLogger struct {
	name         string
	initDuration time.Duration
	features     map[string]bool
	config       map[string]string
}

// NewStartupLogger creates a StartupLogger for the given binary name
// (e.g. "canvas-web", "canvas-cli").
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// Feature registers a boolean feature flag (e.g. "sampleMode", "gemini").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair. Never pass
// API keys or other secrets here.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long startup took up to this point.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// Log emits a single structured INFO event with all collected information.
func (s *StartupLogger) Log() {
	evt := log.Info().
		Str("name", s.name).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH)

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}
	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}
	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	evt.Msg("Startup complete")
}

func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
