package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/snarg/stt-bench/internal/diarize"
)

const assemblyaiBaseURL = "https://api.assemblyai.com/v2"

// AssemblyAIClient calls the AssemblyAI transcription API: upload the audio,
// create a transcript job with speaker labels, poll until done.
// Implements the Provider interface.
type AssemblyAIClient struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	client       *http.Client
}

type assemblyaiUploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type assemblyaiTranscript struct {
	ID            string                `json:"id"`
	Status        string                `json:"status"` // queued, processing, completed, error
	Error         string                `json:"error"`
	Text          string                `json:"text"`
	AudioDuration float64               `json:"audio_duration"`
	Utterances    []assemblyaiUtterance `json:"utterances"`
}

type assemblyaiUtterance struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"` // milliseconds
	End     float64 `json:"end"`   // milliseconds
	Text    string  `json:"text"`
}

// NewAssemblyAIClient creates a new AssemblyAI client. The HTTP client
// carries no overall timeout; polling duration is bounded by ctx.
func NewAssemblyAIClient(apiKey string) *AssemblyAIClient {
	return &AssemblyAIClient{
		apiKey:       apiKey,
		baseURL:      assemblyaiBaseURL,
		pollInterval: 2 * time.Second,
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

// Name returns the provider name.
func (ac *AssemblyAIClient) Name() string { return "assemblyai" }

// Transcribe uploads the audio and polls the transcript job to completion.
func (ac *AssemblyAIClient) Transcribe(ctx context.Context, audioPath string, opts Options) (*Response, error) {
	uploadURL, err := ac.upload(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	id, err := ac.createTranscript(ctx, uploadURL, opts.Language)
	if err != nil {
		return nil, err
	}

	tr, err := ac.poll(ctx, id)
	if err != nil {
		return nil, err
	}

	var segments []diarize.Segment
	for _, utt := range tr.Utterances {
		start, end := utt.Start/1000, utt.End/1000
		segments = append(segments, diarize.Segment{
			Speaker: "Speaker " + utt.Speaker,
			Start:   &start,
			End:     &end,
			Text:    utt.Text,
		})
	}

	return &Response{
		Text:     tr.Text,
		Segments: segments,
		Duration: tr.AudioDuration,
	}, nil
}

func (ac *AssemblyAIClient) upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ac.baseURL+"/upload", f)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("authorization", ac.apiKey)

	resp, err := ac.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assemblyai upload: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assemblyai upload error (status %d): %s", resp.StatusCode, string(body))
	}

	var up assemblyaiUploadResponse
	if err := json.Unmarshal(body, &up); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return up.UploadURL, nil
}

func (ac *AssemblyAIClient) createTranscript(ctx context.Context, audioURL, language string) (string, error) {
	payload := map[string]any{
		"audio_url":      audioURL,
		"speaker_labels": true,
	}
	if language != "" {
		payload["language_code"] = language
	}
	data, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ac.baseURL+"/transcript", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create transcript request: %w", err)
	}
	req.Header.Set("authorization", ac.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ac.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assemblyai create transcript: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcript response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assemblyai transcript error (status %d): %s", resp.StatusCode, string(body))
	}

	var tr assemblyaiTranscript
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("decode transcript response: %w", err)
	}
	return tr.ID, nil
}

func (ac *AssemblyAIClient) poll(ctx context.Context, id string) (*assemblyaiTranscript, error) {
	ticker := time.NewTicker(ac.pollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ac.baseURL+"/transcript/"+id, nil)
		if err != nil {
			return nil, fmt.Errorf("create poll request: %w", err)
		}
		req.Header.Set("authorization", ac.apiKey)

		resp, err := ac.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("assemblyai poll: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read poll response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("assemblyai poll error (status %d): %s", resp.StatusCode, string(body))
		}

		var tr assemblyaiTranscript
		if err := json.Unmarshal(body, &tr); err != nil {
			return nil, fmt.Errorf("decode poll response: %w", err)
		}

		switch tr.Status {
		case "completed":
			return &tr, nil
		case "error":
			return nil, fmt.Errorf("assemblyai transcription failed: %s", tr.Error)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("assemblyai poll: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
