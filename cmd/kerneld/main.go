// FILE: cmd/kerneld/main.go
// Package main – kerneld entrypoint and HTTP/metrics server.
//
// Boot sequence:
//   1) config.LoadDotEnv()   – read .env (no shell exports required)
//   2) cfg := config.LoadFromEnv()
//   3) wire broker, registry, risk manager, flatten executor
//   4) start /healthz and /metrics on cfg.Port
//   5) serve until SIGINT/SIGTERM
//
// Flags:
//   -account <id>   Account shard to host (default "default")
//
// Example:
//   go run ./cmd/kerneld -account acct1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chidi150c/futures-kernel/auditbus"
	"github.com/chidi150c/futures-kernel/broker"
	"github.com/chidi150c/futures-kernel/compliance"
	"github.com/chidi150c/futures-kernel/config"
	"github.com/chidi150c/futures-kernel/flatten"
	"github.com/chidi150c/futures-kernel/registration"
	"github.com/chidi150c/futures-kernel/risk"
)

func main() {
	var accountID string
	flag.StringVar(&accountID, "account", "default", "Account shard to host")
	flag.Parse()

	config.LoadDotEnv()
	cfg := config.LoadFromEnv()

	sink, err := auditbus.NewFileSink(cfg.AuditDir)
	if err != nil {
		log.Fatalf("kerneld: %v", err)
	}
	defer sink.Close()
	bus := auditbus.NewBus(sink, true)

	var b broker.Broker
	switch cfg.Broker {
	case "paper", "":
		b = broker.NewPaperBroker()
	default:
		log.Fatalf("kerneld: unknown broker %q (only \"paper\" is wired in this build)", cfg.Broker)
	}

	thresholds := risk.TriggerThresholds{
		DailyLossPct:      cfg.DailyLossLimitPct,
		PositionLossPct:   cfg.PositionLossLimitPct,
		MarginUsagePct:    cfg.MarginLimitPct,
		ConsecutiveLosses: cfg.ConsecutiveLossLimit,
	}
	recovery := risk.DefaultRecoveryConfig()
	riskMgr := risk.NewManager(thresholds, recovery, time.Now)

	execCfg := flatten.ExecutorConfig{MaxRejections: cfg.MaxRejections}
	executor := flatten.NewExecutor(b, execCfg, flatten.DefaultPolicy(), time.Now, nil)

	persister := registration.NewPersister(cfg.RegistryPath)
	registry := registration.NewRegistry(func(ev registration.AuditEvent) {
		_ = bus.Emit(auditbus.Record{
			TS: ev.TS, EventType: auditbus.EventRegistrationChange,
			AccountID: ev.AccountID, Payload: ev.Details,
		})
	}, persister)

	analyzer := compliance.NewHFTPatternAnalyzer(compliance.DefaultAnalyzerConfig())

	log.Printf("kerneld: shard %q wired (broker=%s audit_dir=%s registry=%s)", accountID, cfg.Broker, cfg.AuditDir, cfg.RegistryPath)
	_ = executor
	_ = riskMgr
	_ = registry
	_ = analyzer

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}
	go func() {
		log.Printf("serving metrics on :%d/metrics", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	shutdownCtx, c := context.WithTimeout(context.Background(), 2*time.Second)
	defer c()
	_ = srv.Shutdown(shutdownCtx)
}
