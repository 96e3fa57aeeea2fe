package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncodeDir(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "encoded")

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	if err := os.WriteFile(filepath.Join(inDir, "shirt.PNG"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(inDir, "notes.md"), []byte("skip"), 0o644); err != nil {
		t.Fatal(err)
	}

	written, err := encodeDir(inDir, outDir)
	if err != nil {
		t.Fatalf("encodeDir() error = %v", err)
	}
	if written != 1 {
		t.Fatalf("written = %d, want 1", written)
	}

	got, err := os.ReadFile(filepath.Join(outDir, "shirt.txt"))
	if err != nil {
		t.Fatalf("missing output: %v", err)
	}
	if !strings.HasPrefix(string(got), "data:image/png;base64,") {
		t.Errorf("unexpected data URL prefix: %.40s", got)
	}
}

func TestEncodeDirMissingInput(t *testing.T) {
	if _, err := encodeDir(filepath.Join(t.TempDir(), "missing"), t.TempDir()); err == nil {
		t.Error("expected error for missing directory")
	}
}
