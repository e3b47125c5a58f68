package transcribe

// TokenRates are dollars per 1M tokens for token-billed models.
type TokenRates struct {
	AudioInput float64 `json:"audio_input"`
	Output     float64 `json:"output"`
}

// ModelInfo describes one benchmarkable model. Rates are static,
// human-maintained pricing data copied from the vendors' published price
// sheets, not computed values.
type ModelInfo struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Provider            string      `json:"provider"`
	APIModel            string      `json:"-"` // vendor-side identifier when it differs from ID
	SupportsPrompt      bool        `json:"supports_prompt"`
	SupportsDiarization bool        `json:"supports_diarization"`
	CostPerMin          float64     `json:"cost_per_min"`        // dollars per audio minute
	TokenRates          *TokenRates `json:"token_rates,omitempty"` // nil = duration-billed
	MaxUploadBytes      int64       `json:"-"`                   // 0 = no upload ceiling
	MaxDurationSec      float64     `json:"-"`                   // 0 = no duration ceiling
}

const openaiUploadLimit = 25 * 1024 * 1024

// Models is the static model table, in display order.
var Models = []ModelInfo{
	{
		ID: "whisper-1", Name: "Whisper v2", Provider: "openai",
		SupportsPrompt: true, CostPerMin: 0.006,
		MaxUploadBytes: openaiUploadLimit,
	},
	{
		ID: "gpt-4o-mini-transcribe", Name: "GPT-4o Mini", Provider: "openai",
		SupportsPrompt: true, CostPerMin: 0.003,
		MaxUploadBytes: openaiUploadLimit,
	},
	{
		ID: "gpt-4o-transcribe", Name: "GPT-4o Transcribe", Provider: "openai",
		SupportsPrompt: true, CostPerMin: 0.006,
		MaxUploadBytes: openaiUploadLimit,
	},
	{
		ID: "gpt-4o-transcribe-diarize", Name: "GPT-4o + Diarize", Provider: "openai",
		SupportsDiarization: true, CostPerMin: 0.006,
		MaxUploadBytes: openaiUploadLimit, MaxDurationSec: 1400,
	},
	{
		ID: "assemblyai-best", Name: "AssemblyAI Best", Provider: "assemblyai",
		SupportsDiarization: true, CostPerMin: 0.00283,
	},
	// Gemini models are token-billed; CostPerMin is the fallback estimate when
	// the response carries no usage metadata (25 audio tokens/sec input plus a
	// small text output).
	{
		ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Provider: "gemini",
		SupportsPrompt: true, SupportsDiarization: true, CostPerMin: 0.0011,
		TokenRates: &TokenRates{AudioInput: 0.70, Output: 0.40},
	},
	{
		ID: "gemini-2.5-flash-lite", Name: "Gemini 2.5 Flash-Lite", Provider: "gemini",
		SupportsPrompt: true, SupportsDiarization: true, CostPerMin: 0.0005,
		TokenRates: &TokenRates{AudioInput: 0.30, Output: 0.40},
	},
	{
		ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: "gemini",
		SupportsPrompt: true, SupportsDiarization: true, CostPerMin: 0.0016,
		TokenRates: &TokenRates{AudioInput: 1.00, Output: 2.50},
	},
	{
		ID: "gemini-3-flash", Name: "Gemini 3 Flash", Provider: "gemini",
		APIModel:       "gemini-3-flash-preview",
		SupportsPrompt: true, SupportsDiarization: true, CostPerMin: 0.0016,
		TokenRates: &TokenRates{AudioInput: 1.00, Output: 3.00},
	},
}

// LookupModel returns the ModelInfo for id.
func LookupModel(id string) (ModelInfo, bool) {
	for _, m := range Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// VendorModel returns the identifier to send to the vendor API.
func (m ModelInfo) VendorModel() string {
	if m.APIModel != "" {
		return m.APIModel
	}
	return m.ID
}
