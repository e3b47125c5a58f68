package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/snarg/stt-bench/internal/diarize"
)

const openaiTranscriptionsEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// OpenAIClient calls the OpenAI /v1/audio/transcriptions endpoint.
// Implements the Provider interface.
type OpenAIClient struct {
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// openaiResponse covers json, verbose_json, and diarized_json response
// shapes; absent fields stay zero.
type openaiResponse struct {
	Text     string          `json:"text"`
	Duration float64         `json:"duration"`
	Segments []openaiSegment `json:"segments"`
}

type openaiSegment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// NewOpenAIClient creates a new OpenAI transcription client.
func NewOpenAIClient(apiKey string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (oc *OpenAIClient) Name() string { return "openai" }

// Transcribe sends an audio file to the OpenAI transcription API.
// whisper-1 gets verbose_json (carries duration), the diarize model gets
// diarized_json (carries speaker segments), everything else plain json.
func (oc *OpenAIClient) Transcribe(ctx context.Context, audioPath string, opts Options) (*Response, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	w.WriteField("model", opts.Model)

	switch opts.Model {
	case "whisper-1":
		w.WriteField("response_format", "verbose_json")
		if opts.Prompt != "" {
			w.WriteField("prompt", opts.Prompt)
		}
	case "gpt-4o-transcribe-diarize":
		w.WriteField("response_format", "diarized_json")
		w.WriteField("chunking_strategy", "auto")
	default:
		w.WriteField("response_format", "json")
	}

	if opts.Language != "" {
		w.WriteField("language", opts.Language)
	}

	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiTranscriptionsEndpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+oc.apiKey)

	resp, err := oc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result openaiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// Only diarized_json segments carry speakers; verbose_json segments are
	// plain windows and add nothing over the full text.
	var segments []diarize.Segment
	for _, s := range result.Segments {
		if s.Speaker == "" {
			continue
		}
		start, end := s.Start, s.End
		segments = append(segments, diarize.Segment{
			Speaker: s.Speaker,
			Start:   &start,
			End:     &end,
			Text:    s.Text,
		})
	}

	return &Response{
		Text:     result.Text,
		Segments: segments,
		Duration: result.Duration,
	}, nil
}
