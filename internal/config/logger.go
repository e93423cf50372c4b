package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// IsTerminal reports whether stream is an interactive terminal.
func IsTerminal(stream *os.File) bool {
	fd := stream.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Prepare returns the program logger. When console is false (the terminal
// player owns the screen) only the file core is used. The returned func
// flushes and closes the log file.
func (conf Logging) Prepare(console bool) (*zap.Logger, func(), error) {
	return conf.prepare(console, os.Stderr)
}

func (conf Logging) prepare(console bool, stream *os.File) (*zap.Logger, func(), error) {
	if conf.Level == "none" {
		return zap.NewNop(), func() {}, nil
	}
	level, err := zapcore.ParseLevel(conf.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging level: %w", err)
	}

	cores := []zapcore.Core{}
	closers := []io.Closer{}

	if console {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeCaller = nil
		if IsTerminal(stream) {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
			ec.TimeKey = zapcore.OmitKey
		} else {
			ec.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		cores = append(cores, zapcore.NewCore(conf.encoder(ec), zapcore.Lock(stream), level))
	}

	if conf.File != "" {
		if err := os.MkdirAll(filepath.Dir(conf.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(conf.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.File, err)
		}
		closers = append(closers, f)
		cores = append(cores, zapcore.NewCore(conf.encoder(zap.NewProductionEncoderConfig()), zapcore.Lock(f), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), func() {}, nil
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named("trustfall")
	cleanup := func() {
		_ = logger.Sync()
		for _, c := range closers {
			_ = c.Close()
		}
	}
	return logger, cleanup, nil
}

func (conf Logging) encoder(ec zapcore.EncoderConfig) zapcore.Encoder {
	if conf.Format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}
