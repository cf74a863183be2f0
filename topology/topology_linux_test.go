//go:build linux

package topology

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"golang.org/x/sys/unix"
)

// writeCacheIndex fabricates one sysfs cache index directory.
func writeCacheIndex(t *testing.T, root, name, level, kind, line string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"level":               level + "\n",
		"type":                kind + "\n",
		"coherency_line_size": line + "\n",
	}
	for f, v := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte(v), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// withSysfs points the sysfs reader at root for the duration of the test.
func withSysfs(t *testing.T, root string) {
	t.Helper()
	old := sysfsCacheDir
	sysfsCacheDir = root
	t.Cleanup(func() { sysfsCacheDir = old })
}

func TestPlatformLineSizePicksL1Data(t *testing.T) {
	root := t.TempDir()
	writeCacheIndex(t, root, "index0", "1", "Instruction", "32")
	writeCacheIndex(t, root, "index1", "1", "Data", "128")
	writeCacheIndex(t, root, "index2", "2", "Unified", "256")
	withSysfs(t, root)

	n, ok := platformLineSize()
	if !ok || n != 128 {
		t.Fatalf("platformLineSize() = %d, %v; want 128, true", n, ok)
	}
	if got := LineSize(); got != 128 {
		t.Fatalf("LineSize() = %d, want 128", got)
	}
}

func TestPlatformLineSizeUnifiedL1(t *testing.T) {
	root := t.TempDir()
	writeCacheIndex(t, root, "index0", "1", "Unified", "64")
	withSysfs(t, root)

	if n, ok := platformLineSize(); !ok || n != 64 {
		t.Fatalf("platformLineSize() = %d, %v; want 64, true", n, ok)
	}
}

func TestLineSizeFallsBackOnGarbage(t *testing.T) {
	root := t.TempDir()
	writeCacheIndex(t, root, "index0", "1", "Data", "48")
	withSysfs(t, root)

	got := LineSize()
	if got == 48 {
		t.Fatal("LineSize accepted a non power of two")
	}
	if !validLineSize(got) {
		t.Fatalf("fallback LineSize() = %d is not usable", got)
	}
}

func TestPlatformLineSizeMissingSysfs(t *testing.T) {
	withSysfs(t, filepath.Join(t.TempDir(), "absent"))
	if _, ok := platformLineSize(); ok {
		t.Fatal("platformLineSize reported success without sysfs")
	}
}

func TestPinBeyondSetSize(t *testing.T) {
	if err := Pin(1 << 20); !errors.Is(err, ErrPin) {
		t.Fatalf("Pin(1<<20) = %v, want ErrPin", err)
	}
}

func TestPinOutsideMaskFails(t *testing.T) {
	cores, err := Cores()
	if err != nil {
		t.Fatal(err)
	}
	outside := cores[len(cores)-1] + 1
	if outside >= 1024 {
		t.Skip("mask reaches CPU_SETSIZE")
	}

	done := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		done <- Pin(outside)
	}()
	if err := <-done; !errors.Is(err, ErrPin) {
		t.Fatalf("Pin(%d) = %v, want ErrPin", outside, err)
	}
}

func TestSaveRestoresMask(t *testing.T) {
	cores, err := Cores()
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		restore, err := Save()
		if err != nil {
			done <- err
			return
		}
		if err := Pin(cores[0]); err != nil {
			done <- err
			return
		}
		if err := restore(); err != nil {
			done <- err
			return
		}
		var set unix.CPUSet
		if err := unix.SchedGetaffinity(0, &set); err != nil {
			done <- err
			return
		}
		if set.Count() != len(cores) {
			done <- errors.New("mask not restored")
			return
		}
		done <- nil
	}()
	if err := <-done; err != nil {
		t.Fatalf("Save/restore: %v", err)
	}
}
