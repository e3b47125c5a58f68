package transcribe

import (
	"context"

	"github.com/snarg/stt-bench/internal/diarize"
)

// Provider is the interface for speech-to-text vendor adapters.
type Provider interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (*Response, error)
	Name() string // "openai", "assemblyai", "gemini"
}

// Options are per-request options passed to a provider adapter.
type Options struct {
	Model    string // vendor-side model identifier
	Language string // ISO-639 hint, "" = auto-detect
	Prompt   string // rendered instruction/vocabulary prompt, "" = none
}

// Response is the common transcription result from any provider.
type Response struct {
	Text     string
	Segments []diarize.Segment // nil if the provider returns only raw text
	Duration float64           // audio duration in seconds, 0 if unknown
	Usage    *TokenUsage       // nil unless the provider meters by token
}

// TokenUsage is a provider-reported token breakdown.
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}
