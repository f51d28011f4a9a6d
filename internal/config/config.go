package config

import (
	"fmt"
	"strings"

	"github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/platform/config"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	StorageDriver  string
	ApprovalPolicy booking.ApprovalPolicy
	DBConfig       config.DatabaseConfig
	KafkaConfig    config.KafkaConfig
}

// Load reads configuration from BOOKING_* environment variables.
func Load() (*ServiceConfig, error) {
	return load("BOOKING")
}

func load(prefix string) (*ServiceConfig, error) {
	v, err := config.Load(prefix)
	if err != nil {
		return nil, err
	}
	v.SetDefault("db_name", "shareit_booking")
	v.SetDefault("storage_driver", StoragePostgres)
	v.SetDefault("approval_policy", string(booking.PolicyPermissive))

	driver := strings.ToLower(strings.TrimSpace(v.GetString("storage_driver")))
	if driver != StoragePostgres && driver != StorageMemory {
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	policy, err := booking.ParseApprovalPolicy(v.GetString("approval_policy"))
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{
		Port:           config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:         config.GetAppEnv(v),
		StorageDriver:  driver,
		ApprovalPolicy: policy,
		DBConfig:       config.LoadDatabaseConfig(v, "DB_NAME"),
		KafkaConfig:    config.LoadKafkaConfig(v),
	}, nil
}
