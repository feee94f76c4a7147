package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"synthpool/config"
	"synthpool/keeper"
	"synthpool/native/epoch"
	"synthpool/native/oracle"
	"synthpool/native/ownable"
	"synthpool/native/pool"
	"synthpool/observability/logging"
	"synthpool/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("synthpoold: %v", err)
	}
}

// supplyQuerier and the two balance adapters fan the single gateway client
// out to the distinct querier interfaces the engines accept.
type supplyQuerier struct {
	source *oracle.HTTPPairSource
}

func (q supplyQuerier) TotalSupply(token string) (*big.Int, error) {
	return q.source.TotalSupply(token)
}

type bankQuerier struct {
	source *oracle.HTTPPairSource
}

func (q bankQuerier) Balance(addr, denom string) (*big.Int, error) {
	return q.source.BankBalance(addr, denom)
}

type tokenQuerier struct {
	source *oracle.HTTPPairSource
}

func (q tokenQuerier) Balance(token, account string) (*big.Int, error) {
	return q.source.TokenBalance(token, account)
}

func run() error {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "synthpool.toml", "path to synthpoold config")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	env := strings.TrimSpace(os.Getenv("SYNTHPOOL_ENV"))
	if env == "" {
		env = cfg.Environment
	}
	logger := logging.Setup("synthpoold", env)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()
	state := storage.NewState(db)

	source := oracle.NewHTTPPairSource(nil, cfg.PairSourceEndpoint)
	owners := ownable.NewRegistry(state)
	synthOracle := oracle.NewPairOracle(state, source, oracle.SynthOracleName)
	shareOracle := oracle.NewPairOracle(state, source, oracle.ShareOracleName)
	expansion := epoch.New(state, source, supplyQuerier{source: source})

	engine := pool.NewEngine(state, owners, synthOracle, shareOracle, expansion)
	engine.SetAddresses(cfg.PoolAddress, cfg.RouterAddress)
	engine.SetBankQuerier(bankQuerier{source: source})
	engine.SetTokenQuerier(tokenQuerier{source: source})

	maintainer := keeper.New(engine, []*oracle.PairOracle{synthOracle, shareOracle}, logger, cfg.KeeperInterval())

	metricsServer := &http.Server{
		Addr:         cfg.MetricsAddress,
		Handler:      promhttp.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		logger.Info("metrics listening", "address", cfg.MetricsAddress)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("metrics server: %w", err)
		}
	}()
	go func() {
		logger.Info("keeper started", "interval", cfg.KeeperInterval().String())
		if err := maintainer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errs <- fmt.Errorf("keeper: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errs:
		stop()
		shutdownMetrics(metricsServer)
		return err
	}
	shutdownMetrics(metricsServer)
	return nil
}

func shutdownMetrics(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}
