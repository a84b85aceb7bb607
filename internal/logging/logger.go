package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON zap logger tagged with service and env.
// When LOG_FILE is set, output is duplicated to that file.
func New(service, env string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stdout"}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		if err := ensureLogFile(logFile); err != nil {
			return nil, fmt.Errorf("prepare log file: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
		cfg.ErrorOutputPaths = append(cfg.ErrorOutputPaths, logFile)
	}
	if env == "development" {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	cfg.InitialFields = map[string]any{
		"service": service,
		"env":     env,
	}

	return cfg.Build()
}

func MustNew(service, env string) *zap.Logger {
	logger, err := New(service, env)
	if err != nil {
		panic(err)
	}
	return logger
}

// Bootstrap returns a logger for use before configuration is loaded, such
// as reporting a config error. When the LOG_FILE output cannot be opened it
// logs to stderr only.
func Bootstrap(service string) *zap.Logger {
	if logger, err := New(service, ""); err == nil {
		return logger
	}
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "msg"
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(os.Stderr), zap.InfoLevel)
	return zap.New(core).With(zap.String("service", service))
}

type ctxKey struct{}

// ContextWithLogger stores the given logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext retrieves a logger from the context, falling back to zap.L().
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.L()
	}
	if logger, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.L()
}

func ensureLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
