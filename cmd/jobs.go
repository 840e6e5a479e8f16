package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coshikowa/ms-go-agency/app/service"
	"github.com/coshikowa/ms-go-agency/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	workerMode bool
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run submission relay related commands",
}

var relayDispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Relay completed payments whose submission has not been delivered yet",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"relay_dispatch",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.RelayDispatchInterval },
			func(s *service.PaymentService, ctx context.Context) error {
				return s.RunRelayDispatchBatch(ctx)
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(relayCmd)
	relayCmd.AddCommand(relayDispatchCmd)

	rootCmd.PersistentFlags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *service.PaymentService, ctx context.Context) error,
) {
	cfg, svcs, cleanup := mustCreateServices()
	defer cleanup()

	if workerMode {
		runWorker(name, intervalResolver(cfg), svcs.Payment, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(svcs.Payment, ctx) })
}

func runWorker(
	name string,
	interval time.Duration,
	paymentService *service.PaymentService,
	fn func(s *service.PaymentService, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(paymentService, ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(paymentService, ctx) })
		}
	}
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
