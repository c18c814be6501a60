package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, silent, structured, etc.)
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// Config selects the level and encoding of a ConsoleLogger.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // console or json
}

// ConsoleLogger writes logs to stderr through zap.
// Used for normal operation and debugging.
type ConsoleLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a ConsoleLogger from cfg.
func New(cfg Config) (*ConsoleLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "console", "":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("invalid log format: %q", cfg.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level)
	return &ConsoleLogger{sugar: zap.New(core).Sugar()}, nil
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	c.sugar.Infof(msg, args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	c.sugar.Errorf(msg, args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	c.sugar.Debugf(msg, args...)
}

// Sync flushes buffered log entries.
func (c *ConsoleLogger) Sync() error {
	return c.sugar.Sync()
}

// SilentLogger discards all log messages.
// Used when running in TUI or MCP stdio mode to keep the terminal and protocol stream clean.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}
