// Package server implements the transcript upload web UI and the JSON
// history API.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/humanintuition/insight/internal/render"
	"github.com/humanintuition/insight/internal/storage"
	"github.com/humanintuition/insight/internal/transcript"
	"github.com/humanintuition/insight/internal/whisper"
)

const maxUploadSize = 100 << 20 // 100MB; audio recordings get large

//go:embed templates/*.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Transcriber converts an uploaded audio stream to text.
type Transcriber interface {
	Transcribe(ctx context.Context, r io.Reader, filename string) (string, error)
}

// Analyst produces the deep-analysis markdown report for a combined transcript.
type Analyst interface {
	Report(ctx context.Context, transcriptText, contextNote string) (string, error)
}

// Deps holds what the handlers need. Transcriber may be nil when no Whisper
// key is configured; audio uploads then fail with a per-file error.
type Deps struct {
	Store       *storage.Store
	Analyst     Analyst
	Transcriber Transcriber
}

// Result is one entry on the upload results page.
type Result struct {
	Filename   string
	Transcript string
	Analysis   template.HTML
	Error      string
	FileList   string
}

// NewHandler builds the full HTTP surface: the upload UI at / and the
// JSON history API under /analyses.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/", handleIndex)
	r.Post("/", handleUpload(deps))
	r.Get("/analyses", handleListAnalyses(deps))
	r.Get("/analyses/{id}", handleGetAnalysis(deps))
	r.Delete("/analyses/{id}", handleDeleteAnalysis(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	renderIndex(w, nil)
}

func handleUpload(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			renderIndex(w, []Result{{Filename: "Upload", Error: fmt.Sprintf("invalid upload: %v", err)}})
			return
		}
		defer r.MultipartForm.RemoveAll()

		files := r.MultipartForm.File["files"]
		if len(files) == 0 {
			renderIndex(w, nil)
			return
		}
		contextNote := r.FormValue("context")

		var (
			blocks      []transcript.Block
			processed   []string
			unsupported []string
		)

		for _, fh := range files {
			if fh.Filename == "" {
				continue
			}
			switch {
			case whisper.IsAudioFile(fh.Filename):
				if deps.Transcriber == nil {
					renderIndex(w, []Result{{
						Filename: "Combined Analysis",
						Error:    fmt.Sprintf("Error transcribing %s: no transcription API key configured", fh.Filename),
					}})
					return
				}
				text, err := transcribeUpload(r.Context(), deps.Transcriber, fh)
				if err != nil {
					renderIndex(w, []Result{{
						Filename: "Combined Analysis",
						Error:    fmt.Sprintf("Error transcribing %s: %v", fh.Filename, err),
					}})
					return
				}
				blocks = append(blocks, transcript.Block{Kind: "Audio", Name: fh.Filename, Text: text})
				processed = append(processed, fh.Filename)

			case transcript.IsTextFile(fh.Filename):
				text, err := readUpload(fh)
				if err != nil {
					renderIndex(w, []Result{{
						Filename: "Combined Analysis",
						Error:    fmt.Sprintf("Error reading %s: %v", fh.Filename, err),
					}})
					return
				}
				blocks = append(blocks, transcript.Block{Kind: "Text", Name: fh.Filename, Text: text})
				processed = append(processed, fh.Filename)

			case transcript.IsPDFFile(fh.Filename):
				text, err := extractPDFUpload(fh)
				if err != nil {
					renderIndex(w, []Result{{
						Filename: "Combined Analysis",
						Error:    fmt.Sprintf("Error reading %s: %v", fh.Filename, err),
					}})
					return
				}
				blocks = append(blocks, transcript.Block{Kind: "Text", Name: fh.Filename, Text: text})
				processed = append(processed, fh.Filename)

			default:
				unsupported = append(unsupported, fh.Filename)
			}
		}

		var results []Result

		combined := transcript.Combine(blocks)
		if combined == "" {
			results = append(results, Result{Filename: "Combined Analysis", Error: "No valid transcripts to analyze."})
		} else {
			markdown, err := deps.Analyst.Report(r.Context(), combined, contextNote)
			if err != nil {
				results = append(results, Result{
					Filename: "Combined Analysis",
					Error:    fmt.Sprintf("Analysis failed: %v", err),
				})
			} else {
				saveUploadAnalysis(deps.Store, processed, contextNote, combined, markdown)

				plural := ""
				if len(processed) != 1 {
					plural = "s"
				}
				results = append(results, Result{
					Filename:   fmt.Sprintf("Combined Analysis (%d file%s)", len(processed), plural),
					Transcript: combined,
					Analysis:   template.HTML(render.AnalysisHTML(markdown)),
					FileList:   joinNames(processed),
				})
			}
		}

		for _, name := range unsupported {
			results = append(results, Result{
				Filename: name,
				Error: fmt.Sprintf("Unsupported file type. Please upload transcripts (%s) or audio files (%s).",
					joinNames(transcript.SupportedExtensions()), joinNames(whisper.SupportedExtensions())),
			})
		}

		renderIndex(w, results)
	}
}

func transcribeUpload(ctx context.Context, t Transcriber, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return t.Transcribe(ctx, f, fh.Filename)
}

func readUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractPDFUpload buffers the uploaded part and extracts its text. The PDF
// parser needs random access, which multipart streams don't give directly.
func extractPDFUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return transcript.ExtractPDF(bytes.NewReader(data), int64(len(data)))
}

// saveUploadAnalysis records the run in history. Storage failures don't fail
// the request; the user already has the analysis on screen.
func saveUploadAnalysis(store *storage.Store, files []string, contextNote, combined, markdown string) {
	if store == nil {
		return
	}
	sourceFiles, err := json.Marshal(files)
	if err != nil {
		sourceFiles = []byte("[]")
	}
	a := storage.Analysis{
		ID:          uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		Kind:        storage.KindAnalysis,
		Title:       fmt.Sprintf("Web upload (%d files)", len(files)),
		SourceFiles: string(sourceFiles),
		ContextNote: contextNote,
		Transcript:  combined,
		Result:      markdown,
	}
	if err := store.SaveAnalysis(a); err != nil {
		slog.Warn("failed to save analysis to history", "error", err)
	}
}

func renderIndex(w http.ResponseWriter, results []Result) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, map[string]any{"Results": results}); err != nil {
		slog.Error("rendering index template", "error", err)
	}
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// --- History API ---

func handleListAnalyses(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		kind := r.URL.Query().Get("kind")

		analyses, err := deps.Store.ListAnalyses(kind, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list analyses: %v", err)
			return
		}
		if analyses == nil {
			analyses = []storage.Analysis{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(analyses)
	}
}

func handleGetAnalysis(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		a, err := deps.Store.GetAnalysis(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "analysis not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get analysis: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(a)
	}
}

func handleDeleteAnalysis(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := deps.Store.DeleteAnalysis(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "analysis not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete analysis: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
