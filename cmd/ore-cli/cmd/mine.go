package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	vmetrics "github.com/VictoriaMetrics/metrics"
	"github.com/flashbots/go-utils/cli"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crypt0miester/ore-cli-v2/miner"
)

var (
	defaultJitoURL     = cli.GetEnv("JITO_URL", "https://mainnet.block-engine.jito.wtf/api/v1/bundles")
	defaultMetricsPort = cli.GetEnv("METRICS_PORT", "8088")

	mineThreads       uint64
	mineBuffer        int64
	mineMinDifficulty uint32
	jitoURL           string
	jitoTip           uint64
	relayConfigPath   string
	metricsPort       string
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Start mining and submitting solutions through the relay",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer func() { _ = logger.Sync() }()
		logger.Info("Starting ore-cli", zap.String("version", version))

		url := jitoURL
		var tipAccounts []string
		if relayConfigPath != "" {
			relayCfg, err := miner.LoadRelayConfig(relayConfigPath)
			if err != nil {
				return fmt.Errorf("load relay config: %w", err)
			}
			if relayCfg.URL != "" {
				url = relayCfg.URL
			}
			tipAccounts = relayCfg.TipAccounts
		}
		relay, err := miner.NewRelayBackend(logger, url, tipAccounts)
		if err != nil {
			return err
		}

		m, err := newMiner(logger, relay)
		if err != nil {
			return err
		}
		if feePayerPath == "" {
			return miner.ErrNoFeePayer
		}

		go serveMetrics(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = m.Mine(ctx, miner.MineOptions{
			Threads:       mineThreads,
			BufferTime:    mineBuffer,
			MinDifficulty: mineMinDifficulty,
			TipAmount:     jitoTip,
		})
		if ctx.Err() != nil {
			logger.Info("Shutting down...")
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)

	f := mineCmd.Flags()
	f.Uint64Var(&mineThreads, "threads", uint64(runtime.NumCPU()), "number of hash search threads")
	f.Int64Var(&mineBuffer, "buffer-time", 5, "seconds to subtract from the epoch cutoff before submitting")
	f.Uint32Var(&mineMinDifficulty, "min-difficulty", 0, "difficulty floor override (0 uses the program config)")
	f.StringVar(&jitoURL, "jito-url", defaultJitoURL, "relay bundle endpoint")
	f.Uint64Var(&jitoTip, "jito-tip", 100_000, "relay tip per bundle in lamports")
	f.StringVar(&relayConfigPath, "relay-config", "", "yaml file overriding relay url and tip accounts")
	f.StringVar(&metricsPort, "metrics-port", defaultMetricsPort, "port for the /metrics endpoint")
}

func serveMetrics(logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		vmetrics.WritePrometheus(w, true)
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", metricsPort),
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           mux,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.Warn("Metrics server stopped", zap.Error(err))
	}
}
