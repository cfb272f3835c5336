package metrics

import "time"

// NoopRecorder discards all measurements. It is the gate's default so metrics
// stay strictly opt-in.
type NoopRecorder struct{}

func (NoopRecorder) IncCounter(string, map[string]string)                    {}
func (NoopRecorder) ObserveLatency(string, time.Duration, map[string]string) {}
