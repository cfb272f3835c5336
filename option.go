package relay

import (
	"github.com/cybergate-systems/relay/logger"
	"github.com/cybergate-systems/relay/metrics"
)

type Option func(*Gate)

func WithLogger(l logger.Logger) Option {
	return func(g *Gate) {
		g.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(g *Gate) {
		g.metrics = r
	}
}
