package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/sync/singleflight"

	"github.com/rohankatakam/dppgraph/internal/errors"
	"github.com/rohankatakam/dppgraph/internal/metrics"
)

// Settings holds the connection parameters for the graph store
type Settings struct {
	URI         string
	User        string
	Password    string
	Database    string
	MaxPoolSize int
}

// Validate reports missing connection parameters as a configuration error
func (s Settings) Validate() error {
	var missing []string
	if s.URI == "" {
		missing = append(missing, "NEO4J_URI")
	}
	if s.User == "" {
		missing = append(missing, "NEO4J_USER")
	}
	if s.Password == "" {
		missing = append(missing, "NEO4J_PASSWORD")
	}
	if len(missing) > 0 {
		return errors.ConfigErrorf("neo4j connection settings missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Client wraps the Neo4j driver. It is safe for concurrent use; every call
// opens its own session and closes it before returning.
type Client struct {
	driver   neo4j.DriverWithContext
	logger   *slog.Logger
	database string
	poolSize int
}

// NewClient creates a driver from settings and verifies connectivity
func NewClient(ctx context.Context, s Settings) (*Client, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Database == "" {
		s.Database = "neo4j"
	}
	if s.MaxPoolSize <= 0 {
		s.MaxPoolSize = 50
	}

	driver, err := neo4j.NewDriverWithContext(s.URI,
		neo4j.BasicAuth(s.User, s.Password, ""),
		func(config *neo4j.Config) {
			config.MaxConnectionPoolSize = s.MaxPoolSize
			config.ConnectionAcquisitionTimeout = 60 * time.Second
			config.MaxConnectionLifetime = time.Hour
			config.ConnectionLivenessCheckTimeout = 5 * time.Second
			config.SocketConnectTimeout = 5 * time.Second
			config.SocketKeepalive = true
		})
	if err != nil {
		return nil, errors.ConfigErrorf("failed to create neo4j driver for %s: %v", s.URI, err)
	}

	// Fail fast on first use
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, errors.DatabaseErrorf(err, "failed to connect to neo4j at %s", s.URI)
	}

	logger := slog.Default().With("component", "neo4j")
	logger.Info("neo4j client connected",
		"uri", s.URI,
		"user", s.User,
		"database", s.Database,
		"max_pool_size", s.MaxPoolSize)

	return &Client{
		driver:   driver,
		logger:   logger,
		database: s.Database,
		poolSize: s.MaxPoolSize,
	}, nil
}

// Execute runs a parameterized query as an auto-commit read and returns the
// raw records. The operation tagged on ctx (WithOperation) is attached as
// transaction metadata. Failures are returned as they happen; reads are
// never retried.
func (c *Client) Execute(ctx context.Context, query string, params map[string]any) ([]Record, error) {
	op := OperationFrom(ctx)
	start := time.Now()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	records, err := c.run(ctx, session, query, params, GetConfigForOperation(op))
	metrics.ObserveQuery(op, start, err)
	if err != nil {
		return nil, errors.DatabaseErrorf(err, "%s query failed", op)
	}

	c.logger.Debug("query executed", "operation", op, "record_count", len(records), "duration", time.Since(start))
	return records, nil
}

func (c *Client) run(ctx context.Context, session neo4j.SessionWithContext, query string, params map[string]any, txConfig TransactionConfig) ([]Record, error) {
	res, err := session.Run(ctx, query, params, txConfig.AsNeo4jConfig()...)
	if err != nil {
		return nil, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(records))
	for _, record := range records {
		out = append(out, record.AsMap())
	}
	return out, nil
}

// Statement is one query of a write batch
type Statement struct {
	Query  string
	Params map[string]any
}

// ExecuteBatch runs all statements in a single write transaction.
// Either every statement commits or none does.
func (c *Client) ExecuteBatch(ctx context.Context, statements []Statement) error {
	if len(statements) == 0 {
		return nil
	}
	start := time.Now()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	txConfig := GetConfigForOperation(OpIngestBatch).WithCustomMetadata("statements", len(statements))
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for i, stmt := range statements {
			res, err := tx.Run(ctx, stmt.Query, stmt.Params)
			if err != nil {
				return nil, fmt.Errorf("statement %d failed: %w", i, err)
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, fmt.Errorf("statement %d failed: %w", i, err)
			}
		}
		return nil, nil
	}, txConfig.AsNeo4jConfig()...)

	metrics.ObserveQuery(OpIngestBatch, start, err)
	if err != nil {
		return errors.DatabaseErrorf(err, "write batch of %d statements failed", len(statements))
	}

	c.logger.Debug("batch committed", "statements", len(statements), "duration", time.Since(start))
	return nil
}

// HealthCheck verifies Neo4j connectivity
func (c *Client) HealthCheck(ctx context.Context) error {
	if timeout := GetConfigForOperation(OpHealthCheck).Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return errors.DatabaseError(err, "neo4j health check failed")
	}
	return nil
}

// Close closes the driver and every pooled connection
func (c *Client) Close(ctx context.Context) error {
	if err := c.driver.Close(ctx); err != nil {
		return fmt.Errorf("failed to close neo4j driver: %w", err)
	}
	c.logger.Info("neo4j client closed")
	return nil
}

var (
	sharedMu       sync.Mutex
	sharedSettings Settings
	sharedClient   *Client
	sharedConnect  singleflight.Group

	// newClient is replaced in tests to observe connection attempts
	newClient = NewClient
)

// Configure sets the settings used when the shared client is first created.
// It has no effect on a client that already exists.
func Configure(s Settings) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	sharedSettings = s
}

// Shared returns the process-wide client, creating it on first use.
// Concurrent callers wait on a single connection attempt, made without
// holding the shared lock. A failed creation is not cached, so a later call
// tries again.
func Shared(ctx context.Context) (*Client, error) {
	sharedMu.Lock()
	client := sharedClient
	sharedMu.Unlock()
	if client != nil {
		return client, nil
	}

	v, err, _ := sharedConnect.Do("shared", func() (any, error) {
		sharedMu.Lock()
		existing, settings := sharedClient, sharedSettings
		sharedMu.Unlock()
		if existing != nil {
			return existing, nil
		}

		created, err := newClient(ctx, settings)
		if err != nil {
			return nil, err
		}

		sharedMu.Lock()
		defer sharedMu.Unlock()
		sharedClient = created
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Client), nil
}

// CloseShared closes the process-wide client if one was created
func CloseShared(ctx context.Context) error {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedClient == nil {
		return nil
	}
	err := sharedClient.Close(ctx)
	sharedClient = nil
	return err
}

// SharedRunner is a Runner that resolves the shared client on every call,
// so services can be constructed before the store is reachable.
type SharedRunner struct{}

// Execute implements Runner
func (SharedRunner) Execute(ctx context.Context, query string, params map[string]any) ([]Record, error) {
	client, err := Shared(ctx)
	if err != nil {
		return nil, err
	}
	return client.Execute(ctx, query, params)
}
