package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Ledger   LedgerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	TiersFile       string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LedgerConfig holds ledger behaviour settings
type LedgerConfig struct {
	// MaxRetries bounds internal retries on concurrent-modification
	// conflicts before the error is surfaced to the caller.
	MaxRetries int
}

// TierSeed is a deposito tier loaded from the tiers file, used to populate an
// empty registry at startup.
type TierSeed struct {
	Name         string
	YearlyReturn decimal.Decimal
}
