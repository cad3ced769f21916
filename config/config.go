package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de lockload.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Chain       ChainConfig       `yaml:"chain"`
	Wallet      WalletConfig      `yaml:"wallet"`
	Storage     StorageConfig     `yaml:"storage"`
	Log         LogConfig         `yaml:"log"`
	Reveal      RevealConfig      `yaml:"reveal"`
	PriceFeed   PriceFeedConfig   `yaml:"price_feed"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
}

// ServerConfig controla la API HTTP.
type ServerConfig struct {
	Addr                   string  `yaml:"addr"`
	Mode                   string  `yaml:"mode"` // gin: debug | release | test
	BidRatePerMin          float64 `yaml:"bid_rate_per_min"`
	BidBurst               int     `yaml:"bid_burst"`
	ShutdownTimeoutSeconds int     `yaml:"shutdown_timeout_seconds"`
}

// ChainConfig controla el acceso al contrato de patrocinios.
type ChainConfig struct {
	RPCURL          string `yaml:"rpc_url"`
	PrivateKey      string `yaml:"-"` // solo desde env: SPONSOR_PRIVATE_KEY
	ContractAddress string `yaml:"contract_address"`
	ChainID         int64  `yaml:"chain_id"`
	DryRun          bool   `yaml:"dry_run"` // true = no se envía nada a la red
}

// WalletConfig es lo que necesita el frontend para conectar wallets.
type WalletConfig struct {
	AppName   string `yaml:"app_name"`
	Chain     string `yaml:"chain"`
	ChainID   int64  `yaml:"chain_id"`
	ProjectID string `yaml:"project_id"`
}

// StorageConfig controla dónde se guarda el catálogo.
type StorageConfig struct {
	DSN  string `yaml:"dsn"`  // ruta al archivo SQLite, o ":memory:"
	Seed bool   `yaml:"seed"` // cargar el catálogo de demo al arrancar
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// RevealConfig controla el motor de reveal de torneos.
type RevealConfig struct {
	TickSeconds           int `yaml:"tick_seconds"`
	StartingWindowMinutes int `yaml:"starting_window_minutes"`
}

// PriceFeedConfig controla la conversión ETH → USD.
type PriceFeedConfig struct {
	BaseURL    string `yaml:"base_url"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	Offline    bool   `yaml:"offline"` // usa el precio fijo de fallback
}

// MarketplaceConfig controla el servicio de catálogo.
type MarketplaceConfig struct {
	SyncWorkers int `yaml:"sync_workers"` // 0 = NumCPU*2
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// Parse interpreta un YAML ya leído y aplica env y defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Config{Storage: StorageConfig{Seed: true}, Chain: ChainConfig{DryRun: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// TickInterval devuelve el intervalo del motor de reveal.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Reveal.TickSeconds) * time.Second
}

// StartingWindow devuelve cuánto antes del inicio un torneo pasa a starting.
func (c *Config) StartingWindow() time.Duration {
	return time.Duration(c.Reveal.StartingWindowMinutes) * time.Minute
}

// PriceTTL devuelve cuánto se cachea el precio ETH/USD.
func (c *Config) PriceTTL() time.Duration {
	return time.Duration(c.PriceFeed.TTLMinutes) * time.Minute
}

// ShutdownTimeout devuelve el tiempo máximo de cierre del servidor HTTP.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SEPOLIA_RPC_URL"); v != "" {
		cfg.Chain.RPCURL = v
	}
	if v := os.Getenv("SPONSOR_PRIVATE_KEY"); v != "" {
		cfg.Chain.PrivateKey = v
	}
	if v := os.Getenv("SPONSOR_CONTRACT_ADDRESS"); v != "" {
		cfg.Chain.ContractAddress = v
	}
	if v := os.Getenv("CHAIN_DRY_RUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Chain.DryRun = b
		}
	}
	if v := os.Getenv("WALLET_CONNECT_PROJECT_ID"); v != "" {
		cfg.Wallet.ProjectID = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.BidBurst <= 0 {
		cfg.Server.BidBurst = 3
	}
	if cfg.Server.ShutdownTimeoutSeconds <= 0 {
		cfg.Server.ShutdownTimeoutSeconds = 5
	}
	if cfg.Chain.ChainID <= 0 {
		cfg.Chain.ChainID = 11155111 // Sepolia
	}
	if cfg.Wallet.AppName == "" {
		cfg.Wallet.AppName = "Lock and Load Sponsors"
	}
	if cfg.Wallet.Chain == "" {
		cfg.Wallet.Chain = "sepolia"
	}
	if cfg.Wallet.ChainID <= 0 {
		cfg.Wallet.ChainID = cfg.Chain.ChainID
	}
	if cfg.Wallet.ProjectID == "" {
		cfg.Wallet.ProjectID = "demo"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = ":memory:"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Reveal.TickSeconds <= 0 {
		cfg.Reveal.TickSeconds = 1
	}
	if cfg.Reveal.StartingWindowMinutes <= 0 {
		cfg.Reveal.StartingWindowMinutes = 10
	}
	if cfg.PriceFeed.BaseURL == "" {
		cfg.PriceFeed.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.PriceFeed.TTLMinutes <= 0 {
		cfg.PriceFeed.TTLMinutes = 15
	}
}
