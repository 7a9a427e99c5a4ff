package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogFile = "cmdpalette.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	level        = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sink         *lazyFile
	base         *zap.Logger
)

// lazyFile opens its path on first write so that runs which log nothing do
// not leave an empty file behind.
type lazyFile struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

func (l *lazyFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
			return len(p), nil
		}
		l.f = f
	}
	return l.f.Write(p)
}

func (l *lazyFile) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return l.f.Sync()
}

func (l *lazyFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

func logger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		return base
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = "time"
	encoderCfg.MessageKey = "event"
	sink = &lazyFile{path: logPath}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.Lock(sink), level)
	base = zap.New(core)
	return base
}

// Error writes errors to the shared log file.
func Error(err error) {
	if err == nil {
		return
	}
	logger().Error("error", zap.Error(err))
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// SetVerbose lowers the log level so V(1) diagnostics from library packages
// are written.
func SetVerbose(enabled bool) {
	if enabled {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.InfoLevel)
}

// Trace appends a structured entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	mu.Lock()
	enabled := traceEnabled
	mu.Unlock()
	if !enabled {
		return
	}
	if payload == nil {
		logger().Info(event)
		return
	}
	logger().Info(event, zap.Any("payload", payload))
}

// Logr exposes the shared log as a logr.Logger for packages that take one.
func Logr() logr.Logger {
	return zapr.NewLogger(logger())
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
		_ = sink.Close()
		base, sink = nil, nil
	}
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// Sync flushes buffered entries.
func Sync() {
	mu.Lock()
	l := base
	mu.Unlock()
	if l == nil {
		return
	}
	if err := l.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync logger: %v\n", err)
	}
}
