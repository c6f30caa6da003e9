package storage

import (
	"io"
	"strings"
	"testing"
)

func TestDiskStorageRoundTrip(t *testing.T) {
	s := NewDiskStorage(t.TempDir())

	written, err := s.Save("staging/a.mp4", strings.NewReader("0123456789"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if written != 10 {
		t.Errorf("Save wrote %d bytes, want 10", written)
	}
	if size := s.GetSize("staging/a.mp4"); size != 10 {
		t.Errorf("GetSize = %d, want 10", size)
	}

	reader, err := s.Open("staging/a.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	if _, err = reader.Seek(4, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "456789" {
		t.Errorf("read %q after seek, want %q", data, "456789")
	}
}

func TestDiskStorageMove(t *testing.T) {
	s := NewDiskStorage(t.TempDir())
	if _, err := s.Save("staging/a.mp4", strings.NewReader("content")); err != nil {
		t.Fatal(err)
	}
	if err := s.Move("staging/a.mp4", "media/7/a.mp4"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if size := s.GetSize("media/7/a.mp4"); size != 7 {
		t.Errorf("moved blob size = %d, want 7", size)
	}
	if size := s.GetSize("staging/a.mp4"); size != -1 {
		t.Errorf("old blob still present, size = %d", size)
	}
}

// A handle opened before a rename keeps reading the same bytes - this
// is what lets an in-flight stream survive pipeline finalization
func TestDiskStorageOpenSurvivesMove(t *testing.T) {
	s := NewDiskStorage(t.TempDir())
	if _, err := s.Save("staging/a.mp4", strings.NewReader("0123456789")); err != nil {
		t.Fatal(err)
	}
	reader, err := s.Open("staging/a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	if err := s.Move("staging/a.mp4", "media/7/a.mp4"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll after move: %v", err)
	}
	if string(data) != "0123456789" {
		t.Errorf("read %q, want the full original content", data)
	}
}

func TestDiskStorageNotFound(t *testing.T) {
	s := NewDiskStorage(t.TempDir())
	if _, err := s.Open("missing"); err != ErrNotFound {
		t.Errorf("Open missing: err = %v, want ErrNotFound", err)
	}
	if err := s.Delete("missing"); err != ErrNotFound {
		t.Errorf("Delete missing: err = %v, want ErrNotFound", err)
	}
	if size := s.GetSize("missing"); size != -1 {
		t.Errorf("GetSize missing = %d, want -1", size)
	}
}
