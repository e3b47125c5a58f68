package transcribe

import "math"

// Cost normalization: every model's billing collapses to cents (hundredths
// of a dollar). Duration-billed models are always an estimate computed from
// the published per-minute rate; token-billed models are actual, because the
// token counts come from the vendor's own response metadata.

// EstimateCents prices durationSec of audio at ratePerMin dollars/minute.
func EstimateCents(durationSec, ratePerMin float64) float64 {
	return roundTo(durationSec/60*ratePerMin*100, 2)
}

// ActualCents prices reported token usage at the model's per-1M-token rates.
func ActualCents(usage TokenUsage, rates TokenRates) float64 {
	inputCost := float64(usage.Input) / 1e6 * rates.AudioInput
	outputCost := float64(usage.Output) / 1e6 * rates.Output
	return roundTo((inputCost+outputCost)*100, 4)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
