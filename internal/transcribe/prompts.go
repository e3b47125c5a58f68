package transcribe

import "strings"

// geminiDiarizePrompt instructs Gemini to group consecutive speech from one
// speaker into a single segment and to stamp each segment with a clock time.
// The grouping instruction is frequently ignored for single sentences, which
// is why the normalizer carries a merge pass as the backstop.
const geminiDiarizePrompt = `Transcribe this audio in {language} with speaker diarization and timestamps.

RULES:
1. Label speakers as Speaker A, Speaker B, etc. based on voice.
2. Group consecutive speech from the same speaker into ONE segment.
3. Only start a new segment when the speaker CHANGES.
4. Include timestamp (MM:SS) at the start of each segment.

FORMAT:
[Speaker A, 0:00] Complete speech until next speaker.
[Speaker B, 1:15] Next speaker's complete response.

{user_context}

Transcribe now:`

// promptTemplates maps model ID to its instruction template. {language} and
// {user_context} are substituted at render time. Models absent from the map
// (or with an empty template) receive no prompt.
var promptTemplates = map[string]string{
	// Whisper and the GPT-4o transcribe models take plain vocabulary hints.
	"whisper-1":              "{user_context}",
	"gpt-4o-mini-transcribe": "{user_context}",
	"gpt-4o-transcribe":      "{user_context}",

	"gemini-2.0-flash":      geminiDiarizePrompt,
	"gemini-2.5-flash-lite": geminiDiarizePrompt,
	"gemini-2.5-flash":      geminiDiarizePrompt,
	"gemini-3-flash":        geminiDiarizePrompt,
}

var languageNames = map[string]string{
	"pt": "Portuguese",
	"en": "English",
	"es": "Spanish",
}

// RenderPrompt builds the instruction prompt for a model, or "" when the
// model supports none.
func RenderPrompt(modelID, language, userContext string) string {
	tpl, ok := promptTemplates[modelID]
	if !ok {
		return ""
	}

	langStr := "the detected language"
	if language != "" {
		if name, ok := languageNames[language]; ok {
			langStr = name
		} else {
			langStr = language
		}
	}

	return strings.TrimSpace(strings.NewReplacer(
		"{language}", langStr,
		"{user_context}", userContext,
	).Replace(tpl))
}
