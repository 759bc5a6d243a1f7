// Package transcript loads conversation transcripts from disk and combines
// them into a single block suitable for analysis prompts.
package transcript

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// IsTextFile reports whether the filename has a supported transcript text extension.
func IsTextFile(name string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsPDFFile reports whether the filename is a PDF document.
func IsPDFFile(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".pdf"
}

// SupportedExtensions lists the transcript formats Load accepts, sorted for
// stable display.
func SupportedExtensions() []string {
	return []string{".md", ".pdf", ".txt"}
}

// Load reads a transcript from a .txt/.md file or extracts the plain text of
// a .pdf document.
func Load(path string) (string, error) {
	switch {
	case IsPDFFile(path):
		return loadPDF(path)
	case IsTextFile(path):
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading transcript: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported transcript format %q (want .txt, .md, or .pdf)", filepath.Ext(path))
	}
}

func loadPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	return ExtractPDF(f, info.Size())
}

// ExtractPDF extracts the plain text of a PDF document from an in-memory or
// on-disk reader. The upload server uses it on uploaded parts that never
// touch disk.
func ExtractPDF(r io.ReaderAt, size int64) (string, error) {
	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("parsing pdf: %w", err)
	}

	reader, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}

// CombineFiles loads every path and joins the contents with per-file headers,
// so the model can tell where one transcript ends and the next begins.
func CombineFiles(paths []string) (string, error) {
	var parts []string
	for _, path := range paths {
		content, err := Load(path)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		parts = append(parts, fmt.Sprintf("=== FILE: %s ===\n%s", path, content))
	}
	return strings.Join(parts, "\n"), nil
}

// Block is one named transcript in a combined analysis.
type Block struct {
	// Kind labels the origin: "Audio" for transcribed recordings, "Text"
	// for uploaded transcripts.
	Kind string
	Name string
	Text string
}

// Combine joins transcript blocks with bracketed source headers, the format
// the web upload flow sends to the analysis prompt.
func Combine(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, fmt.Sprintf("[%s: %s]\n%s", b.Kind, b.Name, b.Text))
	}
	return strings.Join(parts, "\n\n")
}
