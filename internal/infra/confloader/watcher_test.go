package confloader

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T, opts ...WatcherOption) *Watcher {
	t.Helper()
	w, err := NewWatcher(opts...)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w
}

func TestNewWatcher_WithOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	w := newTestWatcher(t, WithWatcherLogger(logger), WithDebounce(time.Second))

	if w.logger != logger {
		t.Error("WithWatcherLogger() option not applied")
	}
	if w.debounce != time.Second {
		t.Errorf("debounce = %v, want 1s", w.debounce)
	}
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w := newTestWatcher(t)
	if err := w.Watch("/nonexistent/path/minikv.yaml"); err == nil {
		t.Error("Watch() expected error for nonexistent directory")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestWatcher_FileChange(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "minikv.yaml")
	if err := os.WriteFile(configFile, []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w := newTestWatcher(t, WithDebounce(20*time.Millisecond))
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 10)
	w.OnChange(func(path string) { changed <- path })
	w.StartAsync()
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("log:\n  level: debug\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case path := <-changed:
		if filepath.Base(path) != "minikv.yaml" {
			t.Errorf("callback path = %q, want minikv.yaml", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnChange() callback was not triggered within timeout")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "minikv.yaml")
	if err := os.WriteFile(configFile, []byte("a: 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w := newTestWatcher(t, WithDebounce(0))
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })
	w.StartAsync()
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("callbacks = %d, want 0 for unrelated file", n)
	}
}

func TestWatcher_DebounceCoalesces(t *testing.T) {
	w := newTestWatcher(t, WithDebounce(50*time.Millisecond))

	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })

	for i := 0; i < 5; i++ {
		w.schedule("/etc/minikv.yaml")
	}
	time.Sleep(200 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("callbacks = %d, want 1 after a burst", n)
	}
}

func TestWatcher_MultipleCallbacks(t *testing.T) {
	w := newTestWatcher(t)

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		w.OnChange(func(string) { calls.Add(1) })
	}
	w.notifyCallbacks("/etc/minikv.yaml")

	if n := calls.Load(); n != 3 {
		t.Errorf("callbacks = %d, want 3", n)
	}
}
