package log

import (
	"github.com/TheZeroSlave/zapsentry"
	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	stdlog "log"
	"os"
)

// NewLogger installs the global zap logger: JSON to the given file, colored
// console output, and an optional Sentry core for errors.
func NewLogger(path string, debug bool, sentryDsn string) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		stdlog.Fatal(err)
	}

	encoding := zap.NewProductionEncoderConfig()
	encoding.EncodeTime = zapcore.ISO8601TimeEncoder
	encoding.MessageKey = "message"
	encoding.TimeKey = "time"

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoding), zapcore.AddSync(f), level),
	}

	encoding.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores = append(cores, zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoding),
		zapcore.AddSync(colorable.NewColorableStdout()),
		level,
	))

	logger := zap.New(zapcore.NewTee(cores...))
	defer logger.Sync()

	if sentryDsn != "" {
		logger = attachSentry(logger, sentryDsn)
	}

	zap.ReplaceGlobals(logger)
}

func attachSentry(logger *zap.Logger, dsn string) *zap.Logger {
	core, err := zapsentry.NewCore(zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   zapcore.InfoLevel,
		Tags: map[string]string{
			"component": "marketplace",
		},
	}, zapsentry.NewSentryClientFromDSN(dsn))

	logger = logger.With(zapsentry.NewScope())

	if err != nil {
		logger.Warn("Sentry core not attached", zap.Error(err))
		return logger
	}

	return zapsentry.AttachCoreToLogger(core, logger)
}
