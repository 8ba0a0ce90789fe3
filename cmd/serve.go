package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"tokenhealth/internal/aggregator"
	"tokenhealth/internal/cache"
	"tokenhealth/internal/client"
	"tokenhealth/internal/config"
	"tokenhealth/internal/database"
	"tokenhealth/internal/heartbeat"
	"tokenhealth/internal/quota"
	"tokenhealth/internal/resolver"
	"tokenhealth/internal/scoring"
	"tokenhealth/internal/server"
	"tokenhealth/internal/sources"
	"tokenhealth/internal/subscription"
	"tokenhealth/internal/worker"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// StartServeCmd creates and returns the serve command. It wires the sources,
// cache, quota bookkeeping and HTTP API together and runs until interrupted.
func StartServeCmd() *cobra.Command {
	startServer := &cobra.Command{
		Use:   "serve",
		Short: "Start API server",
		Long:  `Starts the token health API server`,
		PreRun: func(cmd *cobra.Command, args []string) {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.InitConfig(configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Create a cancellable context
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Cache and scan history live in Postgres; when it is unreachable
			// the service degrades to an in-memory cache without bookkeeping
			// instead of refusing to start.
			var (
				store      cache.Store
				quotaDB    quota.ScanCounter
				scanWriter worker.ScanWriter
				scanReader server.ScanReader
			)
			db, err := database.New()
			if err != nil {
				logrus.WithError(err).Warn("database unavailable, running degraded: in-memory cache, no scan history or quotas")
				unavailable := database.NewUnavailable(err)
				store = cache.NewMemoryStore()
				quotaDB = unavailable
				scanWriter = unavailable
				scanReader = unavailable
			} else {
				defer db.Close()
				store = cache.NewPostgresStore(db.DB())
				quotaDB = db
				scanWriter = db
				scanReader = db
			}

			timeout := config.GetSourceTimeout()
			coingecko := sources.NewCoinGecko(config.GetCoingeckoBaseURL(), config.GetCoingeckoAPIKey(), timeout)
			geckoterminal := sources.NewGeckoTerminal(config.GetGeckoTerminalBaseURL(), timeout)
			etherscan := sources.NewEtherscan(config.GetEtherscanBaseURL(), config.GetEtherscanAPIKey(), timeout)
			goplus := sources.NewGoPlus(config.GetGoPlusBaseURL(), timeout)
			defillama := sources.NewDeFiLlama(config.GetDefiLlamaBaseURL(), timeout)
			apify := sources.NewApify(config.GetApifyBaseURL(), config.GetApifyToken(), config.GetApifyTwitterActor(), timeout)

			tokens := resolver.New(coingecko, store, config.GetDefaultBlockchain())
			metrics := aggregator.New(aggregator.Config{
				Resolver: tokens,
				Market:   coingecko,
				Pools:    geckoterminal,
				Security: goplus,
				Holders:  etherscan,
				TVL:      defillama,
				Social:   apify,
				Cache:    store,
				Weights:  scoring.DefaultWeights(),
			})

			quotas := quota.New(quotaDB, config.GetFreeDailyScans(), config.GetProDailyScans())
			if err := quotas.Load(ctx); err != nil {
				logrus.WithError(err).Warn("subscriber preload failed, plans default to free")
			}

			// Initialize and start the scan history worker
			scans := worker.New(scanWriter)
			scans.Start(ctx)

			// Keep the plan cache current over Supabase Realtime when configured.
			realtimeURL := config.GetSupabaseRealtimeURL()
			if realtimeURL != "" {
				realtime := client.New(realtimeURL, config.GetSupabaseAnonKey())
				if err := realtime.Connect(); err != nil {
					logrus.WithError(err).Warn("realtime unavailable, plan changes require restart")
				} else {
					hb := heartbeat.New(realtime, 30*time.Second)
					hb.Start()
					defer hb.Stop()

					sub := subscription.New(realtime)
					if err := sub.Subscribe(ctx, quotas); err != nil {
						return fmt.Errorf("failed to subscribe: %w", err)
					}
					defer sub.Stop()
				}
			}

			srv := server.NewServer(server.Config{
				Metrics:      metrics,
				Resolver:     tokens,
				Quota:        quotas,
				Recorder:     scans,
				Scans:        scanReader,
				AuthUsername: config.GetAuthUsername(),
				AuthPassword: config.GetAuthPassword(),
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(config.GetPort())
			}()

			// Wait for interrupt signal
			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)

			select {
			case err := <-errCh:
				return fmt.Errorf("server stopped: %w", err)
			case <-interrupt:
				fmt.Println("\nReceived interrupt signal, shutting down.")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	startServer.PersistentFlags().StringP("config", "c", "", "Path of the configuration file")
	return startServer
}
