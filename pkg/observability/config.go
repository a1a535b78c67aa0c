package observability

import "log/slog"

// defaultShutdownTimeoutSec bounds how long Init's returned Shutdown
// func waits for exporters to flush before giving up.
const defaultShutdownTimeoutSec = 5

// AppMode tags which surface codegraph is running as, attached to
// every log line and trace as app.mode.
type AppMode string

const (
	ModeCLI    AppMode = "cli"
	ModeMCP    AppMode = "mcp"
	ModeServer AppMode = "server"
)

// Config configures Init: resource attributes, the OTLP exporter
// (when OTLPEndpoint is set), sampling, and the structured logger.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	LogLevel slog.Level
	LogJSON  bool

	OTLPEndpoint string
	OTLPInsecure bool
	OTLPHeaders  map[string]string

	DebugTrace   bool
	TraceVerbose bool
	SampleRatio  float64

	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with no OTLP exporter (all providers
// no-op) and info-level JSON-free logging to stderr, suitable for a
// bare CLI invocation.
func DefaultConfig() Config {
	return Config{
		ServiceName:        "codegraph",
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
