package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"crosschain-hub/internal/types"

	"gopkg.in/yaml.v3"
)

// Config application configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	Hub      HubConfig      `yaml:"hub"`
	Relayer  RelayerConfig  `yaml:"relayer"`
	JWT      JWTConfig      `yaml:"jwt"`
	CORS     CORSConfig     `yaml:"cors"`
	Admin    AdminConfig    `yaml:"admin"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig Database configuration
type DatabaseConfig struct {
	DSN    string `yaml:"dsn"`
	Driver string `yaml:"driver"`
}

// NATSConfig NATS message server configuration
type NATSConfig struct {
	URL             string                  `yaml:"url"`
	Timeout         int                     `yaml:"timeout"`
	ReconnectWait   int                     `yaml:"reconnect_wait"`
	MaxReconnects   int                     `yaml:"max_reconnects"`
	EnableJetStream bool                    `yaml:"enable_jetstream"`
	EventStream     string                  `yaml:"event_stream"`
	Subscriptions   NATSSubscriptionsConfig `yaml:"subscriptions"`
}

// NATSSubscriptionsConfig subjects consumed from the relayer and the token-transfer subsystem
type NATSSubscriptionsConfig struct {
	Attestations []NATSSubjectConfig `yaml:"attestations"`
	Outbound     []NATSSubjectConfig `yaml:"outbound"`
	Credits      []NATSSubjectConfig `yaml:"credits"`
}

// NATSSubjectConfig NATS subject configuration
type NATSSubjectConfig struct {
	Subject     string `yaml:"subject"`
	Description string `yaml:"description"`
	Enabled     bool   `yaml:"enabled"`
}

// HubConfig ledger parameters
type HubConfig struct {
	ProgramID       string   `yaml:"programId"`       // 32-byte hex, namespace for derived addresses
	NativeChainID   uint16   `yaml:"nativeChainId"`   // chain the hub itself lives on
	SupportedChains []uint16 `yaml:"supportedChains"` // empty = any foreign chain
	MinBridgeAmount uint64   `yaml:"minBridgeAmount"` // 0 = disabled
	MaxBridgeAmount uint64   `yaml:"maxBridgeAmount"` // 0 = disabled
	ChainsFile      string   `yaml:"chainsFile"`      // optional extra chain definitions
}

// RelayerConfig messaging relayer identity
type RelayerConfig struct {
	Identity string `yaml:"identity"` // payer recorded on NATS-delivered completions
}

// JWTConfig caller token configuration
type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	TTLMinutes int    `yaml:"ttlMinutes"`
}

// CORSConfig CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"`
}

// AdminConfig Admin API access control configuration
type AdminConfig struct {
	AllowedIPs []string `yaml:"allowedIPs"` // List of allowed IP addresses or CIDR ranges
	TOTPSecret string   `yaml:"totpSecret"` // optional second factor for admin routes
}

// SweeperConfig expired pact refund loop
type SweeperConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"intervalSeconds"`
	BatchSize       int  `yaml:"batchSize"`
}

// NotifyConfig notification dispatcher
type NotifyConfig struct {
	IntervalSeconds int `yaml:"intervalSeconds"`
	BatchSize       int `yaml:"batchSize"`
}

var AppConfig *Config

// LoadConfig Load configuration file
func LoadConfig(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
			log.Printf("🔧 Using local configuration file: config.local.yaml")
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	fmt.Printf("✅ [%s] Loading configuration from config file: %s\n", time.Now().Format("2006-01-02 15:04:05"), configPath)

	overrideFromEnv(config)

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if len(config.Admin.AllowedIPs) > 0 {
		fmt.Printf("📋 [Config] Admin IP whitelist loaded: %d IPs/CIDRs configured\n", len(config.Admin.AllowedIPs))
	} else {
		fmt.Printf("📋 [Config] Admin IP whitelist: not configured (localhost-only mode)\n")
	}
	fmt.Printf("📋 [Config] Hub native chain: %d, supported chains: %v\n", config.Hub.NativeChainID, config.Hub.SupportedChains)

	AppConfig = config
	return nil
}

// Default returns a configuration usable for local development.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{Driver: "postgres"},
		NATS: NATSConfig{
			Timeout:         10,
			ReconnectWait:   2,
			MaxReconnects:   -1,
			EnableJetStream: true,
			EventStream:     "HUB_EVENTS",
		},
		Hub:     HubConfig{NativeChainID: uint16(types.ChainSolana)},
		JWT:     JWTConfig{Issuer: "crosschain-hub", TTLMinutes: 60},
		Sweeper: SweeperConfig{IntervalSeconds: 60, BatchSize: 50},
		Notify:  NotifyConfig{IntervalSeconds: 2, BatchSize: 100},
	}
}

// Validate checks values every component depends on.
func (c *Config) Validate() error {
	if c.Hub.ProgramID == "" {
		return fmt.Errorf("hub.programId is required")
	}
	if _, err := types.ParseAddress(c.Hub.ProgramID); err != nil {
		return fmt.Errorf("hub.programId: %w", err)
	}
	if c.Relayer.Identity != "" {
		if _, err := types.ParseAddress(c.Relayer.Identity); err != nil {
			return fmt.Errorf("relayer.identity: %w", err)
		}
	} else if c.NATS.URL != "" && anyEnabled(c.NATS.Subscriptions.Outbound) {
		return fmt.Errorf("relayer.identity is required when nats.subscriptions.outbound is enabled")
	}
	if c.Hub.MaxBridgeAmount != 0 && c.Hub.MinBridgeAmount > c.Hub.MaxBridgeAmount {
		return fmt.Errorf("hub.minBridgeAmount %d exceeds hub.maxBridgeAmount %d", c.Hub.MinBridgeAmount, c.Hub.MaxBridgeAmount)
	}
	for _, chain := range c.Hub.SupportedChains {
		if chain == c.Hub.NativeChainID {
			return fmt.Errorf("hub.supportedChains must not contain the native chain %d", chain)
		}
	}
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	return nil
}

// ProgramAddress parses Hub.ProgramID.
func (c *Config) ProgramAddress() types.Address {
	addr, _ := types.ParseAddress(c.Hub.ProgramID)
	return addr
}

func anyEnabled(subjects []NATSSubjectConfig) bool {
	for _, s := range subjects {
		if s.Enabled && s.Subject != "" {
			return true
		}
	}
	return false
}

// RelayerAddress parses Relayer.Identity; zero when unset.
func (c *Config) RelayerAddress() types.Address {
	if c.Relayer.Identity == "" {
		return types.ZeroAddress
	}
	addr, _ := types.ParseAddress(c.Relayer.Identity)
	return addr
}

// overrideFromEnv Override configuration from environment
func overrideFromEnv(config *Config) {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		config.Database.Driver = driver
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		config.NATS.URL = natsURL
	}
	if natsTimeout := os.Getenv("NATS_TIMEOUT"); natsTimeout != "" {
		if t, err := strconv.Atoi(natsTimeout); err == nil {
			config.NATS.Timeout = t
		}
	}

	// Hub
	if programID := os.Getenv("HUB_PROGRAM_ID"); programID != "" {
		config.Hub.ProgramID = programID
	}
	if native := os.Getenv("HUB_NATIVE_CHAIN_ID"); native != "" {
		if n, err := strconv.ParseUint(native, 10, 16); err == nil {
			config.Hub.NativeChainID = uint16(n)
		}
	}
	if chains := os.Getenv("HUB_SUPPORTED_CHAINS"); chains != "" {
		config.Hub.SupportedChains = config.Hub.SupportedChains[:0]
		for _, part := range strings.Split(chains, ",") {
			if n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 16); err == nil {
				config.Hub.SupportedChains = append(config.Hub.SupportedChains, uint16(n))
			}
		}
	}
	if minAmount := os.Getenv("HUB_MIN_BRIDGE_AMOUNT"); minAmount != "" {
		if n, err := strconv.ParseUint(minAmount, 10, 64); err == nil {
			config.Hub.MinBridgeAmount = n
		}
	}
	if maxAmount := os.Getenv("HUB_MAX_BRIDGE_AMOUNT"); maxAmount != "" {
		if n, err := strconv.ParseUint(maxAmount, 10, 64); err == nil {
			config.Hub.MaxBridgeAmount = n
		}
	}

	if relayer := os.Getenv("RELAYER_IDENTITY"); relayer != "" {
		config.Relayer.Identity = relayer
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.JWT.Secret = secret
	}
	if totp := os.Getenv("ADMIN_TOTP_SECRET"); totp != "" {
		config.Admin.TOTPSecret = totp
	}

	if enabled := os.Getenv("SWEEPER_ENABLED"); enabled != "" {
		config.Sweeper.Enabled = enabled == "true"
	}

	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		origins := strings.Split(corsOrigins, ",")
		config.CORS.AllowedOrigins = make([]string, 0, len(origins))
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				config.CORS.AllowedOrigins = append(config.CORS.AllowedOrigins, trimmed)
			}
		}
	}
}
