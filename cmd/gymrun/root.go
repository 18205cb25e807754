package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gymrun/gymrun/internal/config"
	"github.com/gymrun/gymrun/internal/domain"
	"github.com/gymrun/gymrun/internal/fetch"
	"github.com/gymrun/gymrun/internal/interfaces/http"
	"github.com/gymrun/gymrun/internal/metrics"
	"github.com/gymrun/gymrun/internal/store"
	"github.com/gymrun/gymrun/internal/train"
	"github.com/gymrun/gymrun/internal/verify"
)

var (
	configPath string
	debug      bool
)

// Execute runs the CLI.
func Execute() error {
	root := &cobra.Command{
		Use:     "gymrun",
		Short:   "Competitive programming problem aggregator and training gym",
		Version: version,
		PersistentPreRun: func(*cobra.Command, []string) {
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/gymrun.yaml", "path to config file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(serveCmd(), fetchCmd(), generateCmd())
	return root.Execute()
}

// buildStore wires the fetch client, cache and store from config.
func buildStore(cfg config.Config, reg *metrics.Registry) *store.Store {
	client := fetch.NewClient(cfg.Sources, reg)

	var cache store.SnapshotCache
	if cfg.Cache.RedisAddr != "" {
		cache = store.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisDB, cfg.Cache.KeyPrefix)
		log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("using redis snapshot cache")
	} else {
		cache = store.NewMemoryCache()
	}

	return store.New(client, cache, cfg.Cache.TTL, reg)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			reg := metrics.Default()
			st := buildStore(cfg, reg)
			gen := train.NewGenerator(rand.NewSource(time.Now().UnixNano()), reg)
			checker := verify.NewHTTPChecker(cfg.Verify)
			sess := train.NewSession(cfg.Session.Duration, cfg.Session.PointsPerSolve, checker.Check, reg)

			srv, err := http.NewServer(cfg.Server, st, gen, sess, checker)
			if err != nil {
				return err
			}

			// Warm the pool before accepting traffic.
			st.Load(cmd.Context())

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Info().Str("signal", sig.String()).Msg("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
}

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and print the aggregate problem pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			st := buildStore(cfg, metrics.Default())
			snap := st.Load(cmd.Context())

			log.Info().Int("problems", len(snap.Problems)).Bool("degraded", snap.Degraded).
				Msg("pool loaded")
			return json.NewEncoder(os.Stdout).Encode(snap.Problems)
		},
	}
}

func generateCmd() *cobra.Command {
	var (
		platform string
		level    int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a leveled training set and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			p := domain.Platform(platform)
			if !p.Valid() {
				return fmt.Errorf("unknown platform %q", platform)
			}

			reg := metrics.Default()
			st := buildStore(cfg, reg)
			snap := st.Load(cmd.Context())

			gen := train.NewGenerator(rand.NewSource(time.Now().UnixNano()), reg)
			set, err := gen.Generate(snap.Problems, p, level)
			if err != nil {
				return err
			}

			for _, shortfall := range set.Shortfalls {
				log.Warn().Str("target", shortfall).Msg("no candidate found")
			}
			return json.NewEncoder(os.Stdout).Encode(set)
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "codeforces", "platform (codeforces or leetcode)")
	cmd.Flags().IntVar(&level, "level", 1, "training level")
	return cmd
}
