// Package whisper transcribes audio recordings via the OpenAI audio API.
package whisper

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// audioExtensions lists the upload formats the transcription API accepts.
var audioExtensions = map[string]bool{
	".m4a":  true,
	".mp3":  true,
	".wav":  true,
	".mp4":  true,
	".webm": true,
	".ogg":  true,
	".flac": true,
}

// IsAudioFile reports whether the filename has a supported audio extension.
func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// SupportedExtensions returns the audio extensions accepted for transcription,
// sorted for stable display.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(audioExtensions))
	for ext := range audioExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Client wraps the OpenAI audio transcription endpoint.
type Client struct {
	api   openai.Client
	model string
}

// New creates a transcription client. An empty model defaults to whisper-1;
// an empty baseURL uses the public OpenAI endpoint.
func New(apiKey, baseURL, model string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	return &Client{
		api:   openai.NewClient(opts...),
		model: model,
	}
}

// TranscribeFile reads an audio file from disk and returns its transcript text.
func (c *Client) TranscribeFile(ctx context.Context, path string) (string, error) {
	if !IsAudioFile(path) {
		return "", fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	return c.Transcribe(ctx, f, filepath.Base(path))
}

// Transcribe sends audio content to the transcription API. The filename is
// used for upload metadata and format detection by the API.
func (c *Client) Transcribe(ctx context.Context, r io.Reader, filename string) (string, error) {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := c.api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(c.model),
		File:  openai.File(r, filename, contentType),
	})
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", filename, err)
	}
	return resp.Text, nil
}
