package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cybergate-systems/relay"
	"github.com/cybergate-systems/relay/config"
	"github.com/cybergate-systems/relay/dispatch"
	"github.com/cybergate-systems/relay/httpapi"
	"github.com/cybergate-systems/relay/logger"
	"github.com/cybergate-systems/relay/metrics"
	"github.com/cybergate-systems/relay/settlement"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("relayd: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.NewZapLogger(cfg.LogLevel)

	if err := cfg.Gate.ValidateRecipient(); err != nil {
		// Not fatal: the gate reports this per request so the deployment
		// defect is visible to callers, but it is worth shouting at boot.
		log.Error("recipient address misconfigured", map[string]any{"error": err.Error()})
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	settler := settlement.NewFacilitatorClient(cfg.FacilitatorURL, cfg.SettleTimeout)

	var dispatcher dispatch.Dispatcher
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		dispatcher = dispatch.NewTelegramDispatcher(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.Gate.Currency)
	} else {
		log.Warn("telegram credentials not set, deliveries will be skipped", nil)
		dispatcher = dispatch.NoopDispatcher{}
	}

	gate := relay.New(&cfg.Gate, settler, dispatcher,
		relay.WithLogger(log),
		relay.WithMetrics(recorder),
	)

	srv := httpapi.NewServer(cfg.Port, gate, cfg.Gate.ResourcePath, log, reg)

	log.Info("relay starting", map[string]any{
		"port":     cfg.Port,
		"resource": cfg.Gate.ResourcePath,
		"chainId":  cfg.Gate.ChainID,
	})

	if err := srv.Run(); err != nil {
		log.Error("server exited", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
