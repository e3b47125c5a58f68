package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/stt-bench/internal/archive"
	"github.com/snarg/stt-bench/internal/cache"
	"github.com/snarg/stt-bench/internal/diarize"
	"github.com/snarg/stt-bench/internal/media"
	"github.com/snarg/stt-bench/internal/metrics"
)

// State is the per-provider request lifecycle. A request starts pending,
// resolves through cache_hit or fetching (then normalizing), and terminates
// as done or failed.
type State string

const (
	StatePending     State = "pending"
	StateCacheHit    State = "cache_hit"
	StateFetching    State = "fetching"
	StateNormalizing State = "normalizing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Request is one provider-model transcription request. Its fields fully
// determine the cache key.
type Request struct {
	AudioPath    string
	Model        string
	Language     string
	Instructions string
}

// BatchRequest fans one audio file out to several models.
type BatchRequest struct {
	AudioPath    string
	Models       []string
	Language     string
	Instructions string
}

// Outcome is the terminal state of one provider-model request. Exactly one
// of Result and Error is set; Err keeps the typed error for callers that
// need to classify it.
type Outcome struct {
	Model  string  `json:"model"`
	State  State   `json:"state"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
	Err    error   `json:"-"`
}

// DispatcherOptions configures the dispatch orchestrator.
type DispatcherOptions struct {
	Cache           *cache.Store
	Providers       map[string]Provider // keyed by provider name
	Archive         archive.Store       // nil disables archiving
	TargetUploadMB  float64
	ProviderTimeout time.Duration
	Log             zerolog.Logger
}

// Dispatcher fans a transcription request out to provider adapters and
// drives cache lookups and writes around each call. It holds no per-request
// state beyond what it reads from and writes to the cache.
type Dispatcher struct {
	opts DispatcherOptions
	log  zerolog.Logger
}

// NewDispatcher creates a dispatch orchestrator.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	return &Dispatcher{
		opts: opts,
		log:  opts.Log.With().Str("component", "dispatch").Logger(),
	}
}

// Run invokes every requested model concurrently and joins the outcomes in
// request order. Each model's pipeline is independent: one provider's
// failure never cancels or taints a sibling's result.
func (d *Dispatcher) Run(ctx context.Context, br BatchRequest) []Outcome {
	outcomes := make([]Outcome, len(br.Models))

	var wg sync.WaitGroup
	for i, model := range br.Models {
		wg.Add(1)
		go func(i int, model string) {
			defer wg.Done()
			outcomes[i] = d.runOne(ctx, Request{
				AudioPath:    br.AudioPath,
				Model:        model,
				Language:     br.Language,
				Instructions: br.Instructions,
			})
		}(i, model)
	}
	wg.Wait()

	return outcomes
}

// runOne drives a single model through the pipeline: derive the key, check
// the cache, compress if over the upload ceiling, call the adapter,
// normalize unstructured output, annotate cost, write through to the cache.
func (d *Dispatcher) runOne(ctx context.Context, req Request) Outcome {
	log := d.log.With().Str("model", req.Model).Logger()

	info, ok := LookupModel(req.Model)
	if !ok {
		return fail(req.Model, &InputError{Msg: fmt.Sprintf("unknown model: %s", req.Model)})
	}
	if _, err := os.Stat(req.AudioPath); err != nil {
		return fail(req.Model, &InputError{Msg: fmt.Sprintf("audio file not found: %s", req.AudioPath)})
	}

	key := cache.DeriveKey(req.AudioPath, req.Model, req.Language, req.Instructions)

	var cached Result
	if d.opts.Cache.Get(key, &cached) {
		metrics.CacheHitsTotal.Inc()
		log.Debug().Str("key", key).Str("state", string(StateCacheHit)).Msg("serving cached result")
		hit := cached
		hit.Cached = true
		return Outcome{Model: req.Model, State: StateDone, Result: &hit}
	}
	metrics.CacheMissesTotal.Inc()

	provider, ok := d.opts.Providers[info.Provider]
	if !ok {
		return fail(req.Model, &ProviderError{
			Provider: info.Provider,
			Err:      errors.New("API key not configured"),
		})
	}

	// Detach from the caller's cancellation: a metered provider call already
	// in flight runs to completion and still lands in the cache, so the cost
	// incurred is not wasted when the caller stops waiting.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.ProviderTimeout)
	defer cancel()

	if info.MaxDurationSec > 0 {
		if dur := media.Duration(callCtx, req.AudioPath); dur > info.MaxDurationSec {
			return fail(req.Model, &InputError{Msg: fmt.Sprintf(
				"audio too long for %s (%dmin, limit %dmin)",
				req.Model, int(dur/60), int(info.MaxDurationSec/60))})
		}
	}

	// Compression substitutes a temp artifact for this call only; the
	// original file is never touched.
	transcribePath := req.AudioPath
	if info.MaxUploadBytes > 0 {
		path, cleanup, err := media.EnsureUnderLimit(callCtx, req.AudioPath, info.MaxUploadBytes, d.opts.TargetUploadMB)
		if err != nil {
			return fail(req.Model, err)
		}
		defer cleanup()
		if path != req.AudioPath {
			log.Info().Str("artifact", path).Msg("compressed audio for upload ceiling")
		}
		transcribePath = path
	}

	prompt := RenderPrompt(req.Model, req.Language, req.Instructions)

	log.Debug().Str("key", key).Str("state", string(StateFetching)).Msg("calling provider")
	start := time.Now()
	resp, err := provider.Transcribe(callCtx, transcribePath, Options{
		Model:    info.VendorModel(),
		Language: req.Language,
		Prompt:   prompt,
	})
	latency := time.Since(start).Seconds()
	metrics.ProviderLatencySeconds.WithLabelValues(info.Provider).Observe(latency)
	if err != nil {
		metrics.TranscriptionsTotal.WithLabelValues(info.Provider, req.Model, "failed").Inc()
		log.Warn().Err(err).Str("state", string(StateFailed)).Msg("provider call failed")
		return fail(req.Model, &ProviderError{Provider: info.Provider, Err: err})
	}

	segments := resp.Segments
	if len(segments) == 0 && resp.Text != "" {
		log.Debug().Str("state", string(StateNormalizing)).Msg("normalizing free-text output")
		segments = diarize.Normalize(resp.Text)
	}

	duration := resp.Duration
	if duration == 0 {
		duration = media.Duration(callCtx, req.AudioPath)
	}

	res := &Result{
		Model:        req.Model,
		ModelName:    info.Name,
		Provider:     info.Provider,
		Text:         resp.Text,
		Segments:     segments,
		DurationSec:  duration,
		LatencySec:   roundTo(latency, 2),
		Tokens:       resp.Usage,
		PromptUsed:   truncate(prompt, 200),
		LanguageHint: req.Language,
	}
	if resp.Usage != nil && info.TokenRates != nil {
		res.CostCents = ActualCents(*resp.Usage, *info.TokenRates)
		res.ActualCost = true
	} else {
		res.CostCents = EstimateCents(duration, info.CostPerMin)
	}
	metrics.CostCentsTotal.WithLabelValues(info.Provider, req.Model).Add(res.CostCents)
	metrics.TranscriptionsTotal.WithLabelValues(info.Provider, req.Model, "done").Inc()

	// A failed cache write must not fail the transcription; the result in
	// hand is worth more than the optimization.
	if err := d.opts.Cache.Put(key, res); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}

	if d.opts.Archive != nil {
		stem := strings.TrimSuffix(filepath.Base(req.AudioPath), filepath.Ext(req.AudioPath))
		d.opts.Archive.Save(callCtx, archive.EntryName(stem, req.Model, time.Now()), res)
	}

	log.Info().
		Str("key", key).
		Int("segments", len(segments)).
		Float64("latency_s", res.LatencySec).
		Float64("cost_cents", res.CostCents).
		Msg("transcription complete")

	return Outcome{Model: req.Model, State: StateDone, Result: res}
}

func fail(model string, err error) Outcome {
	return Outcome{Model: model, State: StateFailed, Error: err.Error(), Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
