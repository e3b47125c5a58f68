package transcribe

import "github.com/snarg/stt-bench/internal/diarize"

// Result is the normalized transcription record, the document shape
// persisted in the cache and returned to API callers. Immutable once
// constructed; cache hits return a copy with Cached set.
type Result struct {
	Model        string            `json:"model"`
	ModelName    string            `json:"model_name"`
	Provider     string            `json:"provider"`
	Text         string            `json:"text"`
	Segments     []diarize.Segment `json:"segments,omitempty"`
	DurationSec  float64           `json:"duration_seconds"`
	LatencySec   float64           `json:"latency_seconds"`
	CostCents    float64           `json:"estimated_cost_cents"`
	ActualCost   bool              `json:"actual_cost"`
	Tokens       *TokenUsage       `json:"tokens,omitempty"`
	PromptUsed   string            `json:"prompt_used,omitempty"`
	LanguageHint string            `json:"language_hint,omitempty"`
	Cached       bool              `json:"cached"`
}
