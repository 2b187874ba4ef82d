package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kelseyhightower/envconfig"

	"github.com/Astemirdum/library-circulation/pkg/kafka"
	"github.com/Astemirdum/library-circulation/pkg/logger"
	"github.com/Astemirdum/library-circulation/pkg/postgres"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type HTTPServer struct {
	Host         string        `envconfig:"LIBRARY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `envconfig:"LIBRARY_HTTP_PORT" default:"8060"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE" default:"10s"`
	RPS          int           `envconfig:"HTTP_RPS" default:"100"`
}

// Circulation holds the lending rules. Periods are whole days, a zero limit disables it.
type Circulation struct {
	LoanPeriodDays         int           `envconfig:"LOAN_PERIOD" default:"14"`
	ExtensionDays          int           `envconfig:"LOAN_EXTENSION" default:"7"`
	MaxPeriodDays          int           `envconfig:"LOAN_MAX_PERIOD" default:"60"`
	ExtendGrace            time.Duration `envconfig:"EXTEND_GRACE" default:"0s"`
	MaxExtensions          int           `envconfig:"MAX_EXTENSIONS" default:"0"`
	ExtendBlockedByQueue   bool          `envconfig:"EXTEND_BLOCKED_BY_QUEUE" default:"true"`
	MaxActiveLoans         int           `envconfig:"MAX_ACTIVE_LOANS" default:"5"`
	MaxActiveReservations  int           `envconfig:"MAX_ACTIVE_RESERVATIONS" default:"3"`
	MaxActiveRequests      int           `envconfig:"MAX_ACTIVE_REQUESTS" default:"5"`
	BlockBorrowWhenOverdue bool          `envconfig:"BLOCK_BORROW_WHEN_OVERDUE" default:"true"`
	LockTimeout            time.Duration `envconfig:"LOCK_TIMEOUT" default:"2s"`
}

// DefaultCirculation mirrors the envconfig defaults.
func DefaultCirculation() Circulation {
	return Circulation{
		LoanPeriodDays:         14,
		ExtensionDays:          7,
		MaxPeriodDays:          60,
		ExtendBlockedByQueue:   true,
		MaxActiveLoans:         5,
		MaxActiveReservations:  3,
		MaxActiveRequests:      5,
		BlockBorrowWhenOverdue: true,
		LockTimeout:            2 * time.Second,
	}
}

type Config struct {
	Server      HTTPServer
	Database    postgres.DB
	Kafka       kafka.Config
	Log         logger.Log
	Circulation Circulation
	Storage     string `envconfig:"STORAGE" default:"postgres"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options are applied on top of it.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		if err := envconfig.Process("", &config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		if err := config.validate(); err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func (c *Config) validate() error {
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.Circulation.LoanPeriodDays <= 0 || c.Circulation.ExtensionDays <= 0 {
		return fmt.Errorf("loan period and extension must be positive")
	}
	if c.Circulation.MaxPeriodDays < c.Circulation.LoanPeriodDays {
		return fmt.Errorf("max loan period %d is below default period %d",
			c.Circulation.MaxPeriodDays, c.Circulation.LoanPeriodDays)
	}
	return nil
}

func printConfig(cfg *Config) {
	masked := *cfg
	masked.Database.Password = "***"
	jscfg, _ := jsoniter.MarshalIndent(masked, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
