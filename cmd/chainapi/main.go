package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainapi/internal/application"
	"chainapi/internal/chain"
	"chainapi/internal/config"
	"chainapi/internal/contracts"
	"chainapi/internal/infrastructure/artifacts"
	"chainapi/internal/infrastructure/ethrpc"
	"chainapi/internal/infrastructure/idempotency"
	"chainapi/internal/infrastructure/kafka"
	"chainapi/internal/infrastructure/logging"
	"chainapi/internal/infrastructure/signer"
	"chainapi/internal/infrastructure/storage"
	"chainapi/internal/infrastructure/telemetry"
	"chainapi/internal/interfaces/httpapi"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chainapi",
		Short:         "HTTP gateway for multi-sig wallet and license contracts",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime),
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx)
		},
	}

	var path string
	address := &cobra.Command{
		Use:   "address <seed>",
		Short: "Print the signer address derived from a hex seed or mnemonic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := signer.NewProvider(path)
			if err != nil {
				return err
			}
			addr, err := provider.Address(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr.Hex())
			return nil
		},
	}
	address.Flags().StringVar(&path, "path", "", "BIP-32 derivation path (default m/44'/60'/0'/0/0)")

	root.AddCommand(serve, address)
	return root
}

func serve(ctx context.Context) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return errors.Wrap(err, "config")
	}

	if closer := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	}); closer != nil {
		defer closer.Close()
	}

	shutdownTracing, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    "chainapi",
		ServiceVersion: version,
		Endpoint:       cfg.OtelEndpoint,
		SampleRatio:    cfg.OtelSampleRatio,
	})
	if err != nil {
		slog.Warn("tracing disabled", "err", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown", "err", err)
		}
	}()

	rpc, err := ethrpc.NewClient(ctx, ethrpc.Config{URL: cfg.RPCURL})
	if err != nil {
		return err
	}
	defer rpc.Close()

	registry, err := artifacts.NewRegistry(cfg.ArtifactsDir)
	if err != nil {
		return err
	}
	if err := verifyArtifacts(registry, []artifactCheck{
		{name: cfg.MultiSigArtifact, iface: contracts.MultiSigWalletABI, required: true},
		{name: cfg.LicenseArtifact, iface: contracts.LicenseABI, required: true},
		{name: cfg.PayrollArtifact, iface: contracts.SalaryABI},
	}); err != nil {
		return err
	}
	signers, err := signer.NewProvider(cfg.DerivationPath)
	if err != nil {
		return err
	}

	metrics := httpapi.NewMetrics()
	chainClient, err := chain.NewClient(rpc, registry, signers, metrics, chain.Config{ReceiptTimeout: cfg.ReceiptTimeout})
	if err != nil {
		return err
	}

	var redisClient redis.UniversalClient
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
	}

	var (
		repo      application.JournalRepository
		publisher application.EventPublisher
		pinger    httpapi.Pinger
		idemStore idempotency.Store
	)

	base, err := storage.Open(cfg.JournalDSN)
	if err != nil {
		return err
	}
	if base != nil {
		defer base.Close()
		var journalStore storage.Journal = base
		if redisClient != nil {
			cached, err := storage.NewCachedRepository(base, redisClient, storage.CacheConfig{})
			if err != nil {
				return err
			}
			journalStore = cached
		}
		repo, pinger = journalStore, journalStore
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.KafkaBrokers, TopicPrefix: cfg.KafkaTopicPrefix})
		if err != nil {
			return err
		}
		defer producer.Close()
		publisher = producer
	}

	if redisClient != nil {
		store, err := idempotency.NewRedisStore(redisClient, idempotency.DefaultTTL)
		if err != nil {
			return err
		}
		idemStore = store
	}

	journal, err := application.NewJournal(chainClient, repo, publisher)
	if err != nil {
		return err
	}
	wallets, err := application.NewMultiSigService(chainClient, journal, cfg.MultiSigArtifact)
	if err != nil {
		return err
	}
	licenses, err := application.NewLicenseService(chainClient, wallets, cfg.LicenseArtifact)
	if err != nil {
		return err
	}

	salaries, err := application.NewSalaryService(chainClient, cfg.PayrollArtifact)
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(httpapi.Deps{
		MultiSig:    wallets,
		License:     licenses,
		Salary:      salaries,
		Journal:     journal,
		Signers:     signers,
		RPC:         rpc,
		Store:       pinger,
		Idempotency: idemStore,
		Metrics:     metrics,
		BuildInfo:   httpapi.BuildInfo{Version: version, Commit: commit, BuildTime: buildTime},
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server listening",
			"addr", cfg.HTTPAddr,
			"rpc", rpc.URL(),
			"journal", storage.Backend(cfg.JournalDSN),
			"kafka", len(cfg.KafkaBrokers) > 0,
			"redis", redisClient != nil,
		)
		return server.ListenAndServe(gctx, cfg.HTTPAddr)
	})
	g.Go(func() error {
		id, err := chainClient.ChainID(gctx)
		if err != nil {
			// the first transaction retries the lookup
			slog.Warn("chain id lookup failed", "err", err)
			return nil
		}
		slog.Info("connected to chain", "chain_id", id)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("shutdown complete")
	return nil
}

type artifactCheck struct {
	name     string
	iface    string
	required bool
}

type abiSource interface {
	ABI(name string) (abi.ABI, error)
}

// verifyArtifacts fails when an artifact lacks a method, event or constructor
// the services call. An optional artifact that cannot be loaded is skipped.
func verifyArtifacts(source abiSource, checks []artifactCheck) error {
	for _, check := range checks {
		loaded, err := source.ABI(check.name)
		if err != nil {
			if check.required {
				return errors.Wrapf(err, "artifact %s", check.name)
			}
			slog.Warn("optional artifact unavailable", "artifact", check.name, "err", err)
			continue
		}
		if err := contracts.Check(check.iface, loaded); err != nil {
			return errors.Wrapf(err, "artifact %s", check.name)
		}
	}
	return nil
}
