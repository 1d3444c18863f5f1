package router

import (
	"crosschain-hub/internal/app"
	"crosschain-hub/internal/handlers"
	"crosschain-hub/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// SetupRouter registers every hub route on a new gin engine
func SetupRouter(c *app.ServiceContainer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS(c.Config.CORS))

	logger := logrus.StandardLogger()
	auth := middleware.NewAuthMiddleware(logger, c.Config.JWT.Secret)
	adminIPs := middleware.NewLocalhostOnly(logger, c.Config.Admin.AllowedIPs)
	adminTOTP := middleware.NewAdminAuthMiddleware(logger, c.Config.Admin.TOTPSecret)
	if len(c.Config.Admin.AllowedIPs) > 0 {
		logger.WithFields(logrus.Fields{
			"allowed_ips": c.Config.Admin.AllowedIPs,
		}).Info("Admin API IP whitelist configured")
	} else {
		logger.Info("No admin.allowedIPs configured, using localhost-only mode")
	}

	authHandler := handlers.NewAuthHandler(c.Config.JWT)
	hubHandler := handlers.NewHubHandler(c.HubService, c.Params)
	bridgeHandler := handlers.NewBridgeHandler(c.BridgeService)
	portfolioHandler := handlers.NewPortfolioHandler(c.PortfolioService)
	pactHandler := handlers.NewPactHandler(c.PactService)
	ledgerHandler := handlers.NewLedgerHandler(c.LedgerService, c.HubService)
	notificationHandler := handlers.NewNotificationHandler(c.NotificationService)
	wsHandler := handlers.NewWebSocketHandler(c.WebSocketPushService)

	// ============ Health / metrics ============
	var bus handlers.HealthChecker
	if c.NATSClient != nil {
		bus = c.NATSClient
	}
	r.GET("/ping", handlers.PingHandler)
	r.GET("/health", handlers.HealthCheckHandler(c.DB, bus))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// ============ Auth ============
	api.GET("/auth/nonce", authHandler.GenerateNonceHandler)
	api.POST("/auth/login", authHandler.LoginHandler)

	// ============ Public queries ============
	api.GET("/hub", hubHandler.GetHub)
	api.GET("/chains", hubHandler.ListChains)
	api.POST("/derive", hubHandler.DeriveAddress)
	api.GET("/bridge/requests/:address", bridgeHandler.GetRequest)
	api.GET("/bridge/users/:user/requests", bridgeHandler.ListRequestsByUser)
	api.GET("/bridge/completions/:hash", bridgeHandler.GetCompletion)
	api.GET("/bridge/recipients/:recipient/completions", bridgeHandler.ListCompletionsByRecipient)
	api.GET("/portfolios/:owner", portfolioHandler.GetPortfolio)
	api.GET("/pacts/:address", pactHandler.GetPact)
	api.GET("/pacts/:address/contributions", pactHandler.ListContributions)
	api.GET("/creators/:creator/pacts", pactHandler.ListByCreator)
	api.GET("/contributors/:contributor/pacts", pactHandler.ListByContributor)
	api.GET("/ledger/accounts/:address", ledgerHandler.GetAccount)
	api.GET("/notifications", notificationHandler.Replay)
	api.GET("/ws", auth.OptionalAuth(), wsHandler.HandleWebSocket)

	// ============ Authenticated operations ============
	signed := api.Group("")
	signed.Use(auth.RequireAuth())
	{
		signed.POST("/hub/initialize", hubHandler.InitializeHub)
		signed.POST("/bridge/requests", bridgeHandler.BridgeAssets)
		signed.POST("/bridge/completions", bridgeHandler.CompleteBridge)
		signed.POST("/portfolios", portfolioHandler.CreatePortfolio)
		signed.PUT("/portfolios/:owner", portfolioHandler.UpdatePortfolio)
		signed.POST("/pacts", pactHandler.InitializePact)
		signed.POST("/pacts/:address/contributions", pactHandler.Contribute)
		signed.POST("/pacts/:address/settle", pactHandler.Settle)
		signed.POST("/pacts/:address/refund", pactHandler.Refund)
	}

	// ============ Admin ============
	// The hub admin check itself happens in the services against the caller identity.
	admin := api.Group("/admin")
	admin.Use(adminIPs.Restrict(), adminTOTP.RequireTOTP(), auth.RequireAuth())
	{
		admin.POST("/hub/pause", hubHandler.SetPauseState)
		admin.POST("/hub/fees/collect", hubHandler.CollectFees)
		admin.POST("/bridge/requests/:address/outcome", bridgeHandler.RecordOutcome)
		admin.POST("/ledger/credits", ledgerHandler.Credit)
	}

	return r
}
