package app

import (
	"fmt"
	"log"
	"time"

	"crosschain-hub/internal/clients"
	"crosschain-hub/internal/config"
	"crosschain-hub/internal/events"
	"crosschain-hub/internal/ledger"
	"crosschain-hub/internal/services"
	"crosschain-hub/internal/types"
	"crosschain-hub/internal/utils"

	"gorm.io/gorm"
)

// ServiceContainer wires the hub services around one database handle
type ServiceContainer struct {
	// Database
	DB     *gorm.DB
	Config *config.Config
	Params services.HubParams

	// Ledger
	Ledger ledger.Ledger

	// Core Services
	HubService       *services.HubService
	BridgeService    *services.BridgeService
	PortfolioService *services.PortfolioService
	PactService      *services.PactService
	LedgerService    *services.LedgerService

	// Push & background services
	WebSocketPushService *services.WebSocketPushService
	NotificationService  *services.NotificationService
	PactDeadlineService  *services.PactDeadlineService
	MonitoringService    *services.MonitoringService

	// Messaging (nil when NATS is not configured)
	NATSClient *clients.NATSClient
	Consumer   *events.Consumer
}

// NewServiceContainer builds every service. NATS is connected separately by InitNATS.
func NewServiceContainer(cfg *config.Config, database *gorm.DB) (*ServiceContainer, error) {
	log.Println("🚀 Initializing Service Container...")

	if database == nil {
		return nil, fmt.Errorf("database is required")
	}
	params := services.HubParamsFromConfig(cfg)
	if params.ProgramID.IsZero() {
		return nil, fmt.Errorf("hub program id is required")
	}

	if cfg.Hub.ChainsFile != "" {
		chains, err := config.LoadChainsFile(cfg.Hub.ChainsFile)
		if err != nil {
			return nil, err
		}
		for _, network := range chains.Sorted() {
			utils.GlobalChainRegistry.Register(&utils.ChainInfo{
				ChainID:  types.ChainID(network.ChainID),
				Name:     network.Name,
				Symbol:   network.NativeSymbol,
				IsEVM:    network.IsEVM,
				Explorer: network.Explorer,
			})
		}
		log.Printf("📋 Registered %d chains from %s", len(chains.Networks), cfg.Hub.ChainsFile)
	}

	c := &ServiceContainer{
		DB:     database,
		Config: cfg,
		Params: params,
	}
	c.initCoreServices()
	c.initBackgroundServices(nil)

	log.Println("✅ Service Container initialized successfully")
	return c, nil
}

// initCoreServices creates the ledger and the operation services
func (c *ServiceContainer) initCoreServices() {
	log.Println("📦 Initializing core services...")

	c.Ledger = ledger.NewAccountLedger(c.DB)
	c.HubService = services.NewHubService(c.DB, c.Params)
	c.BridgeService = services.NewBridgeService(c.DB, c.Params, nil)
	c.PortfolioService = services.NewPortfolioService(c.DB, c.Params)
	c.PactService = services.NewPactService(c.DB, c.Params, c.Ledger)
	c.LedgerService = services.NewLedgerService(c.DB, c.Ledger)
	c.WebSocketPushService = services.NewWebSocketPushService()
	c.MonitoringService = services.NewMonitoringService(c.DB, c.HubService, 10*time.Second)
}

// initBackgroundServices creates the dispatcher and sweeper; publisher may be nil
func (c *ServiceContainer) initBackgroundServices(publisher services.EventPublisher) {
	c.NotificationService = services.NewNotificationService(
		c.DB,
		publisher,
		c.WebSocketPushService,
		time.Duration(c.Config.Notify.IntervalSeconds)*time.Second,
		c.Config.Notify.BatchSize,
	)
	c.PactDeadlineService = services.NewPactDeadlineService(
		c.DB,
		c.PactService,
		time.Duration(c.Config.Sweeper.IntervalSeconds)*time.Second,
		c.Config.Sweeper.BatchSize,
	)
}

// InitNATS connects to NATS, registers the consumers and routes the
// notification dispatcher through the event stream.
func (c *ServiceContainer) InitNATS() error {
	if c.Config.NATS.URL == "" {
		log.Println("⚠️ NATS not configured, notifications go to websocket clients only")
		return nil
	}

	client, err := clients.NewNATSClient(c.Config.NATS)
	if err != nil {
		return fmt.Errorf("failed to create NATS client: %w", err)
	}
	c.NATSClient = client

	c.Consumer = events.NewConsumer(c.BridgeService, c.LedgerService, c.Params.RelayerIdentity)
	if err := c.Consumer.Register(client, c.Config.NATS.Subscriptions); err != nil {
		return fmt.Errorf("failed to subscribe to relayer events: %w", err)
	}

	c.initBackgroundServices(client)
	return nil
}

// Start launches the background loops
func (c *ServiceContainer) Start() {
	c.MonitoringService.Start()
	c.NotificationService.Start()
	if c.Config.Sweeper.Enabled {
		c.PactDeadlineService.Start()
	} else {
		log.Println("ℹ️ Pact deadline sweeper disabled")
	}
}

// Cleanup stops background loops and closes NATS
func (c *ServiceContainer) Cleanup() {
	log.Println("🧹 Cleaning up services...")
	if c.PactDeadlineService != nil {
		c.PactDeadlineService.Stop()
	}
	if c.NotificationService != nil {
		c.NotificationService.Stop()
	}
	if c.MonitoringService != nil {
		c.MonitoringService.Stop()
	}
	if c.NATSClient != nil {
		c.NATSClient.Close()
	}
	log.Println("✅ Services cleaned up")
}
