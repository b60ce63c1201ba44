package main

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Abdul-Razack/docpreview/internal/config"
)

// newLogger builds the CLI logger. --quiet keeps errors only and --verbose
// forces debug; otherwise log.level from the config applies.
func newLogger(lc config.LogConfig, common commonFlags, w io.Writer) *zap.Logger {
	level := parseLevel(lc.Level)
	switch {
	case common.quiet:
		level = zapcore.ErrorLevel
	case common.verbose:
		level = zapcore.DebugLevel
	}

	var enc zapcore.Encoder
	if strings.EqualFold(lc.Format, "json") {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeCaller = nil
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		if !common.verbose {
			ec.TimeKey = zapcore.OmitKey
		}
		enc = zapcore.NewConsoleEncoder(ec)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core).Named("docpreview")
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
