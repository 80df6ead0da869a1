// Copyright 2025 Certen Protocol
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtcfg "github.com/cometbft/cometbft/config"
	dbm "github.com/cometbft/cometbft-db"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/node"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/cometbft/cometbft/proxy"
	cmttypes "github.com/cometbft/cometbft/types"

	"github.com/dashpay/platform-sub004/pkg/abci"
	"github.com/dashpay/platform-sub004/pkg/auditlog"
	"github.com/dashpay/platform-sub004/pkg/config"
	"github.com/dashpay/platform-sub004/pkg/fees"
	"github.com/dashpay/platform-sub004/pkg/metrics"
	"github.com/dashpay/platform-sub004/pkg/query"
	"github.com/dashpay/platform-sub004/pkg/rpc"
	"github.com/dashpay/platform-sub004/pkg/store"
	"github.com/dashpay/platform-sub004/pkg/types"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var (
		devMode  = flag.Bool("dev", false, "run with relaxed configuration validation")
		showHelp = flag.Bool("help", false, "show help message")
	)
	flag.Parse()

	if *showHelp {
		printHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	if *devMode {
		if err := cfg.ValidateForDevelopment(); err != nil {
			log.Fatalf("invalid configuration: %v", err)
		}
	} else {
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid configuration: %v", err)
		}
	}

	log.Printf("[main] starting certen-platform (chain %s, platform version %d)", cfg.ChainID, cfg.PlatformVersion)

	reg := metrics.NewPrometheusRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditClient, err := auditlog.NewClient(ctx, cfg, auditlog.WithLogger(
		log.New(log.Writer(), "[auditlog] ", log.LstdFlags),
	))
	if err != nil {
		log.Printf("[main] audit log disabled: %v", err)
		auditClient = nil
	} else if auditClient != nil {
		if err := auditClient.MigrateUp(ctx); err != nil {
			log.Printf("[main] audit log migration failed, continuing without it: %v", err)
		}
	}
	auditRepo := auditlog.NewBlockRepository(auditClient)

	st := store.NewStore()
	epochs := fees.NewEpochTracker(cfg.GenesisTime, cfg.EpochLength)
	chain := rpc.NewMockClient()
	costParams := store.CostParams{
		StorageCreditsPerByte:    cfg.StorageCreditsPerByte,
		ProcessingCreditsPerOp:   cfg.ProcessingCreditsPerOp,
		ProcessingCreditsPerByte: cfg.ProcessingCreditsPerByte,
	}

	app := abci.NewApp(st, chain, epochs, reg, auditRepo, cfg.ChainID, types.PlatformVersion(cfg.PlatformVersion), costParams, cfg.MaxTxBytes)

	cometNode, err := startCometBFT(cfg, app)
	if err != nil {
		log.Fatalf("start consensus engine: %v", err)
	}
	if err := cometNode.Start(); err != nil {
		log.Fatalf("start cometbft node: %v", err)
	}
	log.Printf("[main] consensus engine running, ABCI served in-process")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/query", handleQuery(st, cfg.ChainID))

	queryServer := &http.Server{Addr: cfg.QueryListenAddr, Handler: mux}
	if cfg.QueryListenAddr != "" {
		go func() {
			log.Printf("[main] query service listening on %s", cfg.QueryListenAddr)
			if err := queryServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("[main] query service error: %v", err)
			}
		}()
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}
	if cfg.MetricsAddr != "" {
		go func() {
			log.Printf("[main] metrics listening on %s", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("[main] metrics server error: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("[main] shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := queryServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] query service shutdown error: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] metrics server shutdown error: %v", err)
	}
	if err := cometNode.Stop(); err != nil {
		log.Printf("[main] cometbft node stop error: %v", err)
	}
	if auditClient != nil {
		if err := auditClient.Close(); err != nil {
			log.Printf("[main] audit log close error: %v", err)
		}
	}

	log.Printf("[main] stopped")
}

// startCometBFT creates the in-process CometBFT node running app, loading
// (or generating, on a fresh data directory) the node's private validator
// key and node key from cfg.DataDir, and writing a single-validator
// genesis document if one does not already exist there.
func startCometBFT(cfg *config.Config, app abcitypes.Application) (*node.Node, error) {
	nodeCfg := cmtcfg.DefaultConfig()
	nodeCfg.RootDir = cfg.DataDir
	nodeCfg.P2P.ListenAddress = cfg.ABCIListenAddr
	nodeCfg.Moniker = cfg.ChainID
	nodeCfg.DBBackend = "goleveldb"

	for _, dir := range []string{nodeCfg.RootDir, filepath.Join(nodeCfg.RootDir, "config"), filepath.Join(nodeCfg.RootDir, "data")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	pv := privval.LoadOrGenFilePV(nodeCfg.PrivValidatorKeyFile(), nodeCfg.PrivValidatorStateFile())
	nodeKey, err := p2p.LoadOrGenNodeKey(nodeCfg.NodeKeyFile())
	if err != nil {
		return nil, fmt.Errorf("load or generate node key: %w", err)
	}

	if err := writeGenesisIfNeeded(nodeCfg, cfg, pv); err != nil {
		return nil, fmt.Errorf("write genesis: %w", err)
	}

	dbProvider := cmtcfg.DBProvider(func(dbCtx *cmtcfg.DBContext) (dbm.DB, error) {
		return dbm.NewDB(dbCtx.ID, dbm.BackendType(nodeCfg.DBBackend), filepath.Join(nodeCfg.RootDir, "data"))
	})

	tmLogger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout)).With("module", "cometbft")

	n, err := node.NewNode(
		nodeCfg,
		pv,
		nodeKey,
		proxy.NewLocalClientCreator(app),
		node.DefaultGenesisDocProviderFunc(nodeCfg),
		dbProvider,
		node.DefaultMetricsProvider(nodeCfg.Instrumentation),
		tmLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("create cometbft node: %w", err)
	}
	return n, nil
}

// writeGenesisIfNeeded writes a deterministic single-validator genesis
// document derived from cfg and the node's own validator key, unless one
// already exists at nodeCfg's genesis file path (an existing data
// directory from a prior run, which must not be overwritten).
func writeGenesisIfNeeded(nodeCfg *cmtcfg.Config, cfg *config.Config, pv *privval.FilePV) error {
	genFile := nodeCfg.GenesisFile()
	if _, err := os.Stat(genFile); err == nil {
		return nil
	}

	pubKey, err := pv.GetPubKey()
	if err != nil {
		return fmt.Errorf("read validator public key: %w", err)
	}

	doc := &cmttypes.GenesisDoc{
		ChainID:         cfg.ChainID,
		GenesisTime:     cfg.GenesisTime,
		InitialHeight:   cfg.InitialHeight,
		ConsensusParams: cmttypes.DefaultConsensusParams(),
		Validators: []cmttypes.GenesisValidator{
			{Address: pubKey.Address(), PubKey: pubKey, Power: 1, Name: cfg.ChainID},
		},
		AppState: json.RawMessage(`{}`),
	}
	return doc.SaveAs(genFile)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleQuery exposes the committed store's read paths (§4.F) over plain
// HTTP/JSON, for operators and light clients that would rather not speak
// ABCI directly. It always answers against the latest committed store —
// exactly the state a non-proving ABCI Query would see.
func handleQuery(st *store.Store, chainID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := query.Handle(st, query.Request{
			Path:  r.URL.Query().Get("path"),
			Data:  []byte(r.URL.Query().Get("data")),
			Prove: r.URL.Query().Get("prove") == "true",
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp.Metadata = query.Metadata{ChainID: chainID}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func printHelp() {
	fmt.Println("certen-platform: a deterministic layer-2 replicated state machine validator node")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  certen-platform [flags]")
	fmt.Println()
	flag.PrintDefaults()
}
