package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini generateContent API with inline audio.
// Gemini returns free-text diarization; the dispatcher runs it through the
// normalizer. Implements the Provider interface.
type GeminiClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

var geminiMimeTypes = map[string]string{
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
}

// NewGeminiClient creates a new Gemini client. The timeout is generous:
// long recordings take minutes to transcribe in one generateContent call.
func NewGeminiClient(apiKey string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (gc *GeminiClient) Name() string { return "gemini" }

// Transcribe sends the audio inline with the diarization prompt and returns
// the raw text plus the vendor-reported token usage.
func (gc *GeminiClient) Transcribe(ctx context.Context, audioPath string, opts Options) (*Response, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	mimeType, ok := geminiMimeTypes[strings.ToLower(filepath.Ext(audioPath))]
	if !ok {
		mimeType = "audio/mp4"
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: opts.Prompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(audio),
				}},
			},
		}},
		// Flash models allow up to 65k output tokens; ask for all of it so
		// long transcripts are not truncated.
		GenerationConfig: geminiGenConfig{Temperature: 0.1, MaxOutputTokens: 65536},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", gc.baseURL, opts.Model, gc.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := gc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var texts []string
	if len(result.Candidates) > 0 {
		for _, p := range result.Candidates[0].Content.Parts {
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
	}

	return &Response{
		Text: strings.TrimSpace(strings.Join(texts, " ")),
		Usage: &TokenUsage{
			Input:  result.UsageMetadata.PromptTokenCount,
			Output: result.UsageMetadata.CandidatesTokenCount,
			Total:  result.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
