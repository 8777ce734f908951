package logx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/marcodd23/go-txscope/pkg/configx"
)

const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 5
	defaultMaxAgeDays = 30
)

type ZeroLogWrapper struct {
	zeroLog            *zerolog.Logger
	isLocalEnvironment bool
}

// SetupLogger sets up the process Logger from the service configuration.
// Local environments log through a console writer, DEV/STAGE/PROD log JSON lines.
// When logging.file.path is configured the output is duplicated to a rotating file.
func SetupLogger(config configx.Config) Logger {
	isLocalEnvironment := config.IsLocalEnvironment()

	var out io.Writer = os.Stdout
	if isLocalEnvironment {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	if fileCfg := logFileConfig(config); fileCfg != nil {
		if err := ensureLogDir(fileCfg.Path); err != nil {
			fmt.Fprintf(os.Stderr, "unable to create log directory for %s, logging to stdout only: %v\n", fileCfg.Path, err)
		} else {
			out = zerolog.MultiLevelWriter(out, newRotatingFile(fileCfg))
		}
	}

	wrapper := NewZeroLogWrapper(out, config)
	SetLogger(wrapper)

	return wrapper
}

// NewZeroLogWrapper builds a zerolog backed Logger writing to w, without installing it.
func NewZeroLogWrapper(w io.Writer, config configx.Config) *ZeroLogWrapper {
	zLog := zerolog.New(w).
		Level(parseLevel(config.GetLoggingConfig())).
		With().
		Timestamp().
		Str("service", config.GetServiceName()).
		Interface("serviceContext", ServiceContext{Environment: config.GetEnvironment(), Version: config.GetVersion()}).
		Logger()

	return &ZeroLogWrapper{
		zeroLog:            &zLog,
		isLocalEnvironment: config.IsLocalEnvironment(),
	}
}

func parseLevel(cfg *configx.LoggingConfig) zerolog.Level {
	if cfg == nil {
		return zerolog.InfoLevel
	}

	switch strings.ToLower(cfg.Level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func logFileConfig(config configx.Config) *configx.LogFileConfig {
	logging := config.GetLoggingConfig()
	if logging == nil || logging.File == nil || logging.File.Path == "" {
		return nil
	}

	return logging.File
}

func newRotatingFile(cfg *configx.LogFileConfig) *lumberjack.Logger {
	maxSize := defaultMaxSizeMB
	if cfg.MaxSizeMB > 0 {
		maxSize = cfg.MaxSizeMB
	}

	maxBackups := defaultMaxBackups
	if cfg.MaxBackups > 0 {
		maxBackups = cfg.MaxBackups
	}

	maxAge := defaultMaxAgeDays
	if cfg.MaxAgeDays > 0 {
		maxAge = cfg.MaxAgeDays
	}

	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   cfg.Compress,
	}
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}

	return os.MkdirAll(dir, 0o755)
}

func (lm *ZeroLogWrapper) logWithContext(ctx context.Context, level zerolog.Level, errs []error, msg string) {
	logEvent := lm.zeroLog.WithLevel(level)

	switch level {
	case zerolog.DebugLevel:
		logEvent = logEvent.Str("severity", "DEBUG")
	case zerolog.InfoLevel:
		logEvent = logEvent.Str("severity", "INFO")
	case zerolog.WarnLevel:
		logEvent = logEvent.Str("severity", "WARNING")
	case zerolog.ErrorLevel:
		logEvent = logEvent.Str("severity", "ERROR")
	case zerolog.FatalLevel:
		logEvent = logEvent.Str("severity", "CRITICAL")
	case zerolog.PanicLevel:
		logEvent = logEvent.Str("severity", "CRITICAL")
	}

	for _, f := range fieldsFromContext(ctx) {
		logEvent = logEvent.Str(f.key, f.value)
	}

	for _, err := range errs {
		if err != nil {
			logEvent = logEvent.Err(err)
		}
	}

	logEvent.Msg(msg)
}

func (lm *ZeroLogWrapper) LogInfo(ctx context.Context, msg string) {
	lm.logWithContext(ctx, zerolog.InfoLevel, nil, msg)
}

func (lm *ZeroLogWrapper) LogDebug(ctx context.Context, msg string) {
	lm.logWithContext(ctx, zerolog.DebugLevel, nil, msg)
}

func (lm *ZeroLogWrapper) LogWarning(ctx context.Context, msg string, errs ...error) {
	lm.logWithContext(ctx, zerolog.WarnLevel, errs, msg)
}

func (lm *ZeroLogWrapper) LogError(ctx context.Context, msg string, errs ...error) {
	lm.logWithContext(ctx, zerolog.ErrorLevel, errs, msg)
}

func (lm *ZeroLogWrapper) LogPanic(ctx context.Context, msg string, errs ...error) {
	lm.logWithContext(ctx, zerolog.PanicLevel, errs, msg)
	panic(msg)
}

func (lm *ZeroLogWrapper) LogFatal(ctx context.Context, msg string, errs ...error) {
	lm.logWithContext(ctx, zerolog.FatalLevel, errs, msg)
	os.Exit(1)
}

// GetLogger - returns the underlying logger.
func (lm *ZeroLogWrapper) GetLogger() interface{} {
	return lm.zeroLog
}
