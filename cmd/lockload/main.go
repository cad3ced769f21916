package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/lockload/config"
	"github.com/alejandrodnm/lockload/internal/adapters/fhe"
	"github.com/alejandrodnm/lockload/internal/adapters/notify"
	"github.com/alejandrodnm/lockload/internal/adapters/onchain"
	"github.com/alejandrodnm/lockload/internal/adapters/pricefeed"
	"github.com/alejandrodnm/lockload/internal/adapters/storage"
	"github.com/alejandrodnm/lockload/internal/application/marketplace"
	"github.com/alejandrodnm/lockload/internal/application/reveal"
	"github.com/alejandrodnm/lockload/internal/domain"
	"github.com/alejandrodnm/lockload/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	dashboard := flag.Bool("dashboard", false, "run the tournament reveal dashboard in the console")
	once := flag.Bool("once", false, "print one snapshot (catalog, or dashboard with -dashboard) and exit")
	seed := flag.Bool("seed", true, "load the demo catalog and tournaments (overrides config)")
	syncChain := flag.Bool("sync", false, "read getDealInfo for every deal, update the catalog and exit")
	compact := flag.Bool("compact", false, "one line per deal instead of tables")
	dealID := flag.Int64("deal", 0, "print the detail of one deal and exit")
	acceptID := flag.Int64("accept", 0, "accept a deal as the -from wallet and exit")
	from := flag.String("from", "", "wallet address that signs -accept")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if flagSet("seed") {
		cfg.Storage.Seed = *seed
	}
	setupLogger(cfg.Log)

	slog.Info("lockload starting",
		"config", *configPath,
		"dsn", cfg.Storage.DSN,
		"chain_dry_run", cfg.Chain.DryRun,
		"dashboard", *dashboard,
		"once", *once,
		"sync", *syncChain,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	if cfg.Storage.Seed {
		if err := store.Seed(ctx, time.Now()); err != nil {
			slog.Error("failed to seed catalog", "err", err)
			os.Exit(1)
		}
	}

	contract, closeContract, err := buildContract(cfg.Chain, store)
	if err != nil {
		slog.Error("failed to set up contract", "err", err)
		os.Exit(1)
	}
	defer closeContract()

	market := marketplace.New(
		marketplace.Config{SyncWorkers: cfg.Marketplace.SyncWorkers},
		store,
		contract,
		fhe.NewMockEncryptor(),
		buildPriceFeed(cfg.PriceFeed, cfg.PriceTTL()),
	)

	console := notify.NewConsole(*compact)

	engine := reveal.New(reveal.Config{
		TickInterval:   cfg.TickInterval(),
		StartingWindow: cfg.StartingWindow(),
		Once:           *once,
	}, store, console)
	engine.SetCatalog(store)

	switch {
	case *syncChain:
		report, err := market.SyncFromChain(ctx)
		if err != nil {
			slog.Error("chain sync failed", "err", err)
			os.Exit(1)
		}
		slog.Info("chain sync done", "updated", report.Updated, "failed", report.Failed)
	case *dealID > 0:
		detail, err := market.GetDeal(ctx, *dealID)
		if err != nil {
			slog.Error("failed to load deal", "deal_id", *dealID, "err", domain.UserMessage(err))
			os.Exit(1)
		}
		console.PrintDeal(detail)
	case *acceptID > 0:
		receipt, err := market.AcceptDeal(ctx, *from, *acceptID)
		if err != nil {
			slog.Error("failed to accept deal", "deal_id", *acceptID, "err", domain.UserMessage(err))
			os.Exit(1)
		}
		console.PrintReceipt(receipt)
	case *dashboard:
		if err := runDashboard(ctx, engine, console, cfg.TickInterval(), *once); err != nil {
			slog.Error("dashboard exited with error", "err", err)
			os.Exit(1)
		}
	case *once:
		deals, err := market.ListDeals(ctx, "", domain.StatusAll)
		if err != nil {
			slog.Error("failed to list deals", "err", err)
			os.Exit(1)
		}
		console.PrintCatalog(deals)
	default:
		if err := runServer(ctx, cfg, market, engine, store); err != nil {
			slog.Error("server exited with error", "err", err)
			os.Exit(1)
		}
	}

	slog.Info("lockload stopped cleanly")
}

// buildContract elige el contrato: dry-run contra el catálogo local, o Sepolia
// si hay RPC, clave y dirección configuradas.
func buildContract(cfg config.ChainConfig, store *storage.SQLiteStorage) (ports.SponsorshipContract, func(), error) {
	if cfg.DryRun || cfg.RPCURL == "" || cfg.PrivateKey == "" || cfg.ContractAddress == "" {
		if !cfg.DryRun {
			slog.Warn("chain credentials incomplete, falling back to dry-run contract")
		}
		dry := onchain.NewDryRunContract(nil)
		dry.SetLookup(func(ctx context.Context, dealID int64) (domain.ChainDealInfo, error) {
			deal, err := store.GetDeal(ctx, dealID)
			if err != nil {
				return domain.ChainDealInfo{}, err
			}
			return onchain.LookupFromDeal(deal), nil
		})
		return dry, func() {}, nil
	}

	client, err := onchain.NewContractClient(cfg.RPCURL, cfg.PrivateKey, cfg.ContractAddress, cfg.ChainID)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("contract client ready", "contract", cfg.ContractAddress, "chain_id", cfg.ChainID)
	return client, client.Close, nil
}

func buildPriceFeed(cfg config.PriceFeedConfig, ttl time.Duration) ports.PriceFeed {
	if cfg.Offline {
		return pricefeed.Static{Price: pricefeed.FallbackETHUSD}
	}
	return pricefeed.NewCoinGecko(pricefeed.NewClient(cfg.BaseURL), ttl)
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
