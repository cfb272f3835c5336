// Package metrics defines the relay's metrics contract. Counters track gate
// outcomes (challenge, settled, rejected, delivery_failed, ...); latency
// histograms cover the settle and deliver operations.
package metrics

import "time"

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
