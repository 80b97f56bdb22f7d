package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_ListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.npz", "a.npz", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.npz"), 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	names, err := OSFileSystem{}.ListFiles(dir, ".npz")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(names) != 2 || names[0] != "a.npz" || names[1] != "b.npz" {
		t.Errorf("expected [a.npz b.npz], got %v", names)
	}

	if _, err := (OSFileSystem{}).ListFiles(filepath.Join(dir, "missing"), ""); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("hello, world")
	if err := mfs.WriteFile("/test.txt", testData, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := mfs.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}
}

func TestMemoryFileSystem_CreateAndOpen(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/out/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("created content")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := mfs.Open("/out/created.txt")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "created content" {
		t.Errorf("expected 'created content', got %q", data)
	}
}

func TestMemoryFileSystem_MkdirAllAndExists(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if mfs.Exists("/a/b/c") {
		t.Error("expected directory to not exist yet")
	}
	if err := mfs.MkdirAll("/a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, p := range []string{"/a", "/a/b", "/a/b/c"} {
		if !mfs.Exists(p) {
			t.Errorf("expected %s to exist", p)
		}
	}
}

func TestMemoryFileSystem_ExistsImplicitDir(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/images/a.jpg", []byte("x"), 0644)

	if !mfs.Exists("/images") {
		t.Error("expected directory holding a file to exist")
	}
	if mfs.Exists("/imag") {
		t.Error("expected partial prefix to not exist")
	}
}

func TestMemoryFileSystem_ListFiles(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/data/z.json", nil, 0644)
	_ = mfs.WriteFile("/data/a.json", nil, 0644)
	_ = mfs.WriteFile("/data/a.npz", nil, 0644)
	_ = mfs.WriteFile("/data/nested/b.json", nil, 0644)

	names, err := mfs.ListFiles("/data", ".json")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(names) != 2 || names[0] != "a.json" || names[1] != "z.json" {
		t.Errorf("expected [a.json z.json], got %v", names)
	}

	_ = mfs.MkdirAll("/empty", 0755)
	names, err = mfs.ListFiles("/empty", "")
	if err != nil || len(names) != 0 {
		t.Errorf("expected empty listing, got %v, %v", names, err)
	}

	if _, err := mfs.ListFiles("/missing", ""); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestMemoryFileSystem_Paths(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/x/1.jpg", nil, 0644)
	_ = mfs.WriteFile("/x/min/0.jpg", nil, 0644)
	_ = mfs.WriteFile("/xy/2.jpg", nil, 0644)

	got := mfs.Paths("/x")
	if len(got) != 2 || got[0] != "/x/1.jpg" || got[1] != "/x/min/0.jpg" {
		t.Errorf("unexpected paths: %v", got)
	}
}
