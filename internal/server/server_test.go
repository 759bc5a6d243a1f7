package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/humanintuition/insight/internal/storage"
)

// minimalPDF builds a one-page PDF showing the given ASCII text, with the
// cross-reference offsets computed as the objects are written.
func minimalPDF(text string) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 6)
	writeObj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	buf.WriteString("%PDF-1.4\n")
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>")
	writeObj(4, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	writeObj(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	xref := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

// --- mocks ---

type mockAnalyst struct {
	markdown       string
	err            error
	gotTranscript  string
	gotContextNote string
}

func (m *mockAnalyst) Report(_ context.Context, transcriptText, contextNote string) (string, error) {
	m.gotTranscript = transcriptText
	m.gotContextNote = contextNote
	return m.markdown, m.err
}

type mockTranscriber struct {
	text string
	err  error
}

func (m *mockTranscriber) Transcribe(_ context.Context, r io.Reader, _ string) (string, error) {
	io.Copy(io.Discard, r)
	return m.text, m.err
}

func newTestDeps(t *testing.T) (Deps, *storage.Store, *mockAnalyst) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	analyst := &mockAnalyst{markdown: "## Surface Layer\nThey spoke."}
	return Deps{
		Store:       store,
		Analyst:     analyst,
		Transcriber: &mockTranscriber{text: "transcribed words"},
	}, store, analyst
}

func multipartUpload(t *testing.T, files map[string]string, contextNote string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	if contextNote != "" {
		w.WriteField("context", contextNote)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

// --- tests ---

func TestIndexServesUploadForm(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	srv := httptest.NewServer(NewHandler(deps))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `enctype="multipart/form-data"`) {
		t.Error("upload form missing from index page")
	}
}

func TestHealth(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	srv := httptest.NewServer(NewHandler(deps))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestUploadTextFile(t *testing.T) {
	deps, store, analyst := newTestDeps(t)
	srv := httptest.NewServer(NewHandler(deps))
	defer srv.Close()

	body, contentType := multipartUpload(t, map[string]string{"dinner.txt": "A: hi\nB: hello"}, "weekly check-in")
	resp, err := http.Post(srv.URL+"/", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "Combined Analysis (1 file)") {
		t.Errorf("result heading missing:\n%s", page)
	}
	if !strings.Contains(string(page), `analysis-h2`) {
		t.Error("rendered analysis missing from page")
	}

	if !strings.Contains(analyst.gotTranscript, "[Text: dinner.txt]") {
		t.Errorf("transcript block header missing: %q", analyst.gotTranscript)
	}
	if analyst.gotContextNote != "weekly check-in" {
		t.Errorf("context note = %q", analyst.gotContextNote)
	}

	// Run is recorded in history.
	analyses, err := store.ListAnalyses("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(analyses) != 1 {
		t.Fatalf("expected 1 stored analysis, got %d", len(analyses))
	}
	if analyses[0].Kind != storage.KindAnalysis {
		t.Errorf("kind = %q", analyses[0].Kind)
	}
}

func TestUploadPDFFile(t *testing.T) {
	deps, store, analyst := newTestDeps(t)
	srv := httptest.NewServer(NewHandler(deps))
	defer srv.Close()

	body, contentType := multipartUpload(t, map[string]string{"session.pdf": string(minimalPDF("printed words"))}, "")
	resp, err := http.Post(srv.URL+"/", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	page, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(page), "Unsupported file type") {
		t.Fatalf("pdf rejected as unsupported:\n%s", page)
	}
	if !strings.Contains(string(page), "Combined Analysis (1 file)") {
		t.Errorf("result heading missing:\n%s", page)
	}

	if !strings.Contains(analyst.gotTranscript, "[Text: session.pdf]") {
		t.Errorf("pdf transcript block missing: %q", analyst.gotTranscript)
	}
	if !strings.Contains(analyst.gotTranscript, "printed") {
		t.Errorf("extracted pdf text missing: %q", analyst.gotTranscript)
	}

	analyses, err := store.ListAnalyses("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(analyses) != 1 {
		t.Fatalf("expected 1 stored analysis, got %d", len(analyses))
	}
}

func TestUploadCorruptPDF(t *testing.T) {
	deps, store, _ := newTestDeps(t)
	srv := httptest.NewServer(NewHandler(deps))
	defer srv.Close()

	body, contentType := multipartUpload(t, map[string]string{"broken.pdf": "not a pdf at all"}, "")
	resp, err := http.Post(srv.URL+"/", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "Error reading broken.pdf") {
		t.Errorf("pdf error missing:\n%s", page)
	}

	analyses, _ := store.ListAnalyses("", 10)
	if len(analyses) != 0 {
		t.Errorf("failed run should not be stored, got %d records", len(analyses))
	}
}

func TestUploadAudioFileUsesTranscriber(t *testing.T) {
	deps, _, analyst := newTestDeps(t)
	srv := httptest.NewServer(NewHandler(deps))
	defer srv.Close()

	body, contentType := multipartUpload(t, map[string]string{"call.m4a": "fake-audio-bytes"}, "")
	resp, err := http.Post(srv.URL+"/", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if !strings.Contains(analyst.gotTranscript, "[Audio: call.m4a]\ntranscribed words") {
		t.Errorf("audio transcript block missing: %q", analyst.gotTranscript)
	}
}

func TestUploadTranscriptionError(t *testing.T) {
	deps, store, _ := newTestDeps(t)
	deps.Transcriber = &mockTranscriber{err: errors.New("api key invalid")}
	srv := httptest.NewServer(NewHandler(deps))
	defer srv.Close()

	body, contentType := multipartUpload(t, map[string]string{"call.mp3": "x"}, "")
	resp, err := http.Post(srv.URL+"/", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "Error transcribing call.mp3") {
		t.Errorf("transcription error missing:\n%s", page)
	}

	analyses, _ := store.ListAnalyses("", 10)
	if len(analyses) != 0 {
		t.Errorf("failed run should not be stored, got %d records", len(analyses))
	}
}

func TestUploadUnsupportedFile(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	srv := httptest.NewServer(NewHandler(deps))
	defer srv.Close()

	body, contentType := multipartUpload(t, map[string]string{"photo.png": "x"}, "")
	resp, err := http.Post(srv.URL+"/", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "Unsupported file type") {
		t.Errorf("unsupported file notice missing:\n%s", page)
	}
	// The notice names both transcript and audio formats.
	for _, ext := range []string{".txt", ".pdf", ".m4a"} {
		if !strings.Contains(string(page), ext) {
			t.Errorf("unsupported notice missing %s:\n%s", ext, page)
		}
	}
	if !strings.Contains(string(page), "No valid transcripts to analyze.") {
		t.Errorf("empty-transcript notice missing:\n%s", page)
	}
}

func TestAnalysesAPI(t *testing.T) {
	deps, store, _ := newTestDeps(t)
	srv := httptest.NewServer(NewHandler(deps))
	defer srv.Close()

	a := storage.Analysis{
		ID:        "a1",
		CreatedAt: time.Now().UTC(),
		Kind:      storage.KindAnalysis,
		Title:     "test",
		Result:    "## ok",
	}
	if err := store.SaveAnalysis(a); err != nil {
		t.Fatal(err)
	}

	// List
	resp, err := http.Get(srv.URL + "/analyses")
	if err != nil {
		t.Fatal(err)
	}
	var list []storage.Analysis
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(list) != 1 || list[0].ID != "a1" {
		t.Fatalf("list = %+v", list)
	}

	// Get
	resp, err = http.Get(srv.URL + "/analyses/a1")
	if err != nil {
		t.Fatal(err)
	}
	var got storage.Analysis
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got.Result != "## ok" {
		t.Errorf("result = %q", got.Result)
	}

	// Delete
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/analyses/a1", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	// Missing record is a 404.
	resp, err = http.Get(srv.URL + "/analyses/a1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
}
