package shared

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestLogger(t *testing.T) {
	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "extractor")
		logger.Info("extracted", "count", 3)

		out := buf.String()
		if !strings.Contains(out, "component=extractor") {
			t.Errorf("expected component field, got %q", out)
		}
		if !strings.Contains(out, "count=3") {
			t.Errorf("expected count field, got %q", out)
		}
	})

	t.Run("SetLogLevel filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "wpx.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("hello")
	})
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected valid uuid, got %q: %v", id, err)
	}
	if GenerateID() == id {
		t.Error("expected unique ids")
	}
}

func TestRunLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wpx.db.lock")

	lock, err := AcquireRunLock(path)
	if err != nil {
		t.Fatalf("failed to acquire lock: %v", err)
	}

	if _, err := AcquireRunLock(path); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}

	if err := lock.Unlock(); err != nil {
		t.Fatalf("failed to unlock: %v", err)
	}

	again, err := AcquireRunLock(path)
	if err != nil {
		t.Fatalf("expected lock to be free after unlock: %v", err)
	}
	again.Unlock()
}

func TestRunLockPath(t *testing.T) {
	if got := RunLockPath("/data/wpx.db"); got != "/data/wpx.db.lock" {
		t.Errorf("expected /data/wpx.db.lock, got %s", got)
	}
	if got := RunLockPath(":memory:"); !strings.HasSuffix(got, "wpx.lock") {
		t.Errorf("expected temp lock path, got %s", got)
	}
}
