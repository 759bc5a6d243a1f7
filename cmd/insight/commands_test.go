package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadForAnalysis_SingleFileIsRaw(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "call.txt")
	if err := os.WriteFile(path, []byte("Speaker A: hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := loadForAnalysis([]string{path})
	if err != nil {
		t.Fatalf("loadForAnalysis: %v", err)
	}
	if got != "Speaker A: hi" {
		t.Errorf("got %q, want raw file content", got)
	}
	if strings.Contains(got, "=== FILE:") {
		t.Errorf("single file should have no header: %q", got)
	}
}

func TestLoadForAnalysis_MultipleFilesAreHeadered(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	os.WriteFile(a, []byte("first"), 0o644)
	os.WriteFile(b, []byte("second"), 0o644)

	got, err := loadForAnalysis([]string{a, b})
	if err != nil {
		t.Fatalf("loadForAnalysis: %v", err)
	}
	if !strings.Contains(got, "=== FILE: "+a+" ===") || !strings.Contains(got, "=== FILE: "+b+" ===") {
		t.Errorf("missing file headers in %q", got)
	}
}
