package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kayung-developer/NovaTrade/internal/config"
	httphandler "github.com/kayung-developer/NovaTrade/internal/handler/http"
	"github.com/kayung-developer/NovaTrade/internal/marketdata"
	"github.com/kayung-developer/NovaTrade/internal/service"
	"github.com/kayung-developer/NovaTrade/internal/websocket"
	"github.com/kayung-developer/NovaTrade/storage/postgres"
)

type App struct {
	cfg        *config.Config
	log        *slog.Logger
	httpServer *http.Server
	storage    *postgres.Storage
	wsManager  *websocket.Manager

	ctx    context.Context
	cancel context.CancelFunc
}

func New(log *slog.Logger, cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	storage, err := postgres.New(cfg.Database)
	if err != nil {
		panic(fmt.Errorf("failed to init storage: %w", err))
	}

	feed := marketdata.NewFeed(marketdata.DefaultCatalog(), rand.NewSource(time.Now().UnixNano()))
	locks := service.NewAccountLocks()

	accountsService := service.NewAccountsService(
		storage.DB, feed, locks, decimal.NewFromFloat(cfg.Trading.StartingBalance), log)
	tradingService := service.NewTradingService(
		storage.DB, feed, locks, service.LimitFillPolicy(cfg.Trading.LimitFillPolicy), log)
	paymentsService := service.NewPaymentsService(
		storage.DB, locks, decimal.NewFromFloat(cfg.Trading.MinDepositUSD), log)

	wsManager := websocket.NewManager(log, feed, cfg.Market.BroadcastInterval)

	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())
	httpHandler := httphandler.NewHandler(
		accountsService, tradingService, paymentsService, feed, wsManager, log, cfg.Security.JWTSecret)
	httpHandler.RegisterRoutes(ginEngine)

	httpServer := &http.Server{
		Addr:    net.JoinHostPort("", strconv.FormatUint(uint64(cfg.HTTP.Port), 10)),
		Handler: ginEngine,
	}

	return &App{
		log:        log,
		cfg:        cfg,
		httpServer: httpServer,
		storage:    storage,
		wsManager:  wsManager,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (a *App) Run() error {
	errChan := make(chan error, 2)
	a.log.Info("starting application components...")

	go func() {
		a.log.Info("market broadcast loop started")
		a.wsManager.Run(a.ctx)
		a.log.Info("market broadcast loop stopped")
	}()

	go func() {
		if err := a.runHTTP(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	err := <-errChan
	a.log.Warn("shutting down application due to an error", "error", err)

	a.Stop()
	return err
}

func (a *App) Stop() {
	a.log.Info("stopping application components gracefully...")

	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.HTTP.Timeout)
	defer shutdownCancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("failed to gracefully shutdown HTTP server", "error", err)
	} else {
		a.log.Info("HTTP server stopped")
	}

	if err := a.storage.Stop(); err != nil {
		a.log.Error("failed to stop storage", "error", err)
	} else {
		a.log.Info("database connection closed")
	}
}

func (a *App) runHTTP() error {
	const op = "app.runHTTP"

	a.log.Info("HTTP server is running", "addr", a.httpServer.Addr)

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
