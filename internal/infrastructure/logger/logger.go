package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how the process-wide zap logger is built.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or a file path
	TimeFormat string // layout for the time field
}

// New builds the service logger. JSON encoding is the default; console
// encoding with colored levels is meant for running the back office locally.
// Entries are never sampled: gaps in the decision trail are not acceptable.
func New(cfg *Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zc.Sampling = nil
	zc.Encoding = "json"
	if cfg.Format == "console" {
		zc.Encoding = "console"
	}
	zc.OutputPaths = []string{outputPath(cfg.Output)}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig = encoderConfig(cfg)

	return zc.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}

// Sync flushes buffered entries. Meant for shutdown paths.
func Sync(logger *zap.Logger) error {
	return logger.Sync()
}

func parseLevel(level string) zapcore.Level {
	if level == "warning" {
		return zapcore.WarnLevel
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

func outputPath(output string) string {
	if output == "" {
		return "stdout"
	}
	return output
}

func encoderConfig(cfg *Config) zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.MessageKey = "msg"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	ec.EncodeLevel = zapcore.LowercaseLevelEncoder
	if cfg.Format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return ec
}
