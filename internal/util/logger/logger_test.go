package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// syncBuffer 并发安全的缓冲区
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureOutput(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	SetOutput(buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	return buf
}

func TestSetOutput(t *testing.T) {
	buf := captureOutput(t)

	log := Logger("test")
	log.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected log message in buffer, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value in buffer, got: %s", output)
	}
	if !strings.Contains(output, "subsystem=test") {
		t.Errorf("expected subsystem=test in buffer, got: %s", output)
	}
}

func TestSetOutput_ExistingLogger(t *testing.T) {
	log := Logger("test2")
	buf := captureOutput(t)

	log.Info("after switch", "key", "value")
	assert.Contains(t, buf.String(), "after switch")
}

func TestSetLevel_AppliesToDerivedLoggers(t *testing.T) {
	buf := captureOutput(t)

	base := Logger("test/derived")
	derived := base.With("task", "t1")

	SetLevel("test/derived", slog.LevelWarn)
	derived.Info("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	SetLevel("test/derived", slog.LevelDebug)
	derived.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "task=t1")
}

func TestParseLevelSpec(t *testing.T) {
	cfg := &Config{DefaultLevel: slog.LevelInfo}
	ParseLevelSpec(cfg, "engine/native=debug, resolver=warn ,error,bogus=nope")

	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("engine/native"))
	assert.Equal(t, slog.LevelWarn, cfg.LevelForSubsystem("resolver"))
	assert.Equal(t, slog.LevelError, cfg.LevelForSubsystem("other"))
	_, ok := cfg.SubsystemLevels["bogus"]
	assert.False(t, ok)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "netio=debug,warn")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvAddSource, "1")
	ResetConfig()
	t.Cleanup(ResetConfig)

	cfg := ConfigFromEnv()
	assert.Equal(t, slog.LevelWarn, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("netio"))
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.AddSource)
}

func TestConfigure(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)
	buf := captureOutput(t)

	log := Logger("test/configure")
	Configure("test/configure=error", "")
	log.Warn("suppressed")
	assert.NotContains(t, buf.String(), "suppressed")

	Configure("test/configure=info", "")
	log.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("nothing")
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("yaml"))
}
