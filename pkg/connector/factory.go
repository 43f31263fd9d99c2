// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/config"
)

// ConnectorFactory creates the database connector for the configured source
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// Create opens and validates the connector selected by the data source setting
func (f *ConnectorFactory) Create(ctx context.Context) (DatabaseConnector, error) {
	var (
		conn DatabaseConnector
		err  error
	)

	switch f.cfg.Source {
	case config.SourcePostgres:
		f.logger.Info("Creating PostgreSQL connector")
		conn, err = NewPostgresConnector(ctx, f.cfg.Postgres, f.logger)
	case config.SourceSnowflake:
		f.logger.Info("Creating Snowflake connector")
		conn, err = NewSnowflakeConnector(ctx, f.cfg.Snowflake, f.logger)
	default:
		return nil, fmt.Errorf("source %q is not a database source", f.cfg.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connector: %w", f.cfg.Source, err)
	}

	if err := conn.Validate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to validate %s connector: %w", f.cfg.Source, err)
	}

	return conn, nil
}
