package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kingrea/exam-review/internal/config"
)

// Options adjusts the logger beyond what config.yaml says.
type Options struct {
	// Console receives human-readable lines in addition to the file. Leave
	// nil for the interactive sessions, which own the terminal.
	Console io.Writer
	// Verbose forces debug level.
	Verbose bool
}

// New builds the diagnostic logger for a project. Lines go to
// .examreview/logs/examreview.log as JSON, rotated by size, so failures can be
// inspected after the terminal UI closes.
func New(cfg *config.Config, opts Options) (*zap.Logger, error) {
	if err := os.MkdirAll(cfg.LogsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	level := cfg.LogLevel()
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.DiagnosticLogPath(),
		MaxSize:    cfg.Project.Log.MaxSizeMB,
		MaxBackups: cfg.Project.Log.MaxBackups,
	})
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level),
	}
	if opts.Console != nil {
		consoleConfig := encoderConfig
		consoleConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		consoleConfig.CallerKey = zapcore.OmitKey
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleConfig),
			zapcore.AddSync(opts.Console),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)), nil
}
