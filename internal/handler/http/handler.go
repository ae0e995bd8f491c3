package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	gorilla_ws "github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/kayung-developer/NovaTrade/internal/handler/middleware"
	"github.com/kayung-developer/NovaTrade/internal/marketdata"
	"github.com/kayung-developer/NovaTrade/internal/models"
	"github.com/kayung-developer/NovaTrade/internal/service"
	"github.com/kayung-developer/NovaTrade/internal/websocket"
	"github.com/kayung-developer/NovaTrade/lib/errs"
)

type Handler struct {
	accountsService service.AccountsService
	tradingService  service.TradingService
	paymentsService service.PaymentsService
	feed            *marketdata.Feed
	wsManager       *websocket.Manager
	log             *slog.Logger
	jwtSecret       string
	upgrader        gorilla_ws.Upgrader
}

func NewHandler(
	accountsService service.AccountsService,
	tradingService service.TradingService,
	paymentsService service.PaymentsService,
	feed *marketdata.Feed,
	wsManager *websocket.Manager,
	log *slog.Logger,
	jwtSecret string,
) *Handler {
	return &Handler{
		accountsService: accountsService,
		tradingService:  tradingService,
		paymentsService: paymentsService,
		feed:            feed,
		wsManager:       wsManager,
		log:             log,
		jwtSecret:       jwtSecret,
		upgrader: gorilla_ws.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1", middleware.AuthMiddleware(h.jwtSecret, h.log))
	{
		api.GET("/users/me", h.getProfile)
		api.GET("/market/prices", h.getMarketPrices)
		api.GET("/portfolio", h.getPortfolio)
		api.POST("/trade/execute", h.executeTrade)
		api.GET("/transactions", h.listTransactions)

		payments := api.Group("/payments")
		{
			payments.POST("/create-intent", h.createPaymentIntent)
			payments.POST("/confirm/:intent_id", h.confirmPaymentIntent)
			payments.POST("/withdraw", h.withdraw)
		}

		api.GET("/ws/market-data", h.wsConnect)
	}
}

// currentAccount resolves the authenticated identity to its local
// account, creating one with the starting balance on first access.
func (h *Handler) currentAccount(c *gin.Context) (*models.Account, bool) {
	identityKey := c.GetString(middleware.IdentityKeyCtx)
	if identityKey == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	account, err := h.accountsService.GetOrCreateAccount(c.Request.Context(), service.Identity{
		Key:      identityKey,
		Email:    c.GetString(middleware.EmailCtx),
		FullName: c.GetString(middleware.FullNameCtx),
	})
	if err != nil {
		h.log.Error("failed to resolve account", slog.Any("error", err))
		h.respondError(c, err)
		return nil, false
	}

	if !account.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is inactive"})
		return nil, false
	}

	return account, true
}

func (h *Handler) getProfile(c *gin.Context) {
	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *Handler) getMarketPrices(c *gin.Context) {
	if _, ok := h.currentAccount(c); !ok {
		return
	}

	c.JSON(http.StatusOK, h.feed.AllTicks())
}

func (h *Handler) getPortfolio(c *gin.Context) {
	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	lines, err := h.accountsService.ValuePortfolio(c.Request.Context(), account.ID)
	if err != nil {
		h.log.Error("failed to value portfolio", slog.Any("error", err))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lines)
}

type tradeRequest struct {
	AssetID    string `json:"asset_id" binding:"required"`
	TradeType  string `json:"trade_type" binding:"required"`
	Quantity   string `json:"quantity" binding:"required"`
	PriceLimit string `json:"price_limit"`
}

func (h *Handler) executeTrade(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity format"})
		return
	}

	var priceLimit *decimal.Decimal
	if req.PriceLimit != "" {
		limit, err := decimal.NewFromString(req.PriceLimit)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price limit format"})
			return
		}
		priceLimit = &limit
	}

	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	result, err := h.tradingService.ExecuteTrade(c.Request.Context(), account.ID, models.TradeRequest{
		Symbol:     req.AssetID,
		Side:       req.TradeType,
		Quantity:   quantity,
		PriceLimit: priceLimit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) listTransactions(c *gin.Context) {
	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.accountsService.ListTransactions(c.Request.Context(), account.ID, limit)
	if err != nil {
		h.log.Error("failed to list transactions", slog.Any("error", err))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

type paymentIntentRequest struct {
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency"`
}

func (h *Handler) createPaymentIntent(c *gin.Context) {
	var req paymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount format"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	intent, err := h.paymentsService.CreateIntent(c.Request.Context(), account.ID, amount, currency)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}

func (h *Handler) confirmPaymentIntent(c *gin.Context) {
	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	result, err := h.paymentsService.ConfirmIntent(c.Request.Context(), account.ID, c.Param("intent_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) withdraw(c *gin.Context) {
	var req paymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount format"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	result, err := h.paymentsService.Withdraw(c.Request.Context(), account.ID, amount, currency)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) wsConnect(c *gin.Context) {
	if _, ok := h.currentAccount(c); !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("failed to upgrade connection", slog.Any("error", err))
		return
	}

	client := websocket.NewClient(h.wsManager, conn)
	h.wsManager.Register(client)

	go client.Writer()
	go client.Reader()
}

func (h *Handler) respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrAssetNotFound),
		errors.Is(err, errs.ErrIntentNotFound),
		errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidQuantity),
		errors.Is(err, errs.ErrInvalidTradeType),
		errors.Is(err, errs.ErrInvalidAmount),
		errors.Is(err, errs.ErrInsufficientFunds),
		errors.Is(err, errs.ErrInsufficientHoldings),
		errors.Is(err, errs.ErrLimitNotFillable),
		errors.Is(err, errs.ErrIntentNotConfirmable):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrAccountInactive):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrInternal):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
