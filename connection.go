package litorm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tordrt/litorm/adapter"
	"github.com/tordrt/litorm/schema"
)

// Connection ties an adapter to the models used with it and hands out one
// repository per model.
type Connection struct {
	adapter adapter.Adapter
	config  adapter.Config
	tag     string
	opts    []Option
	logger  *slog.Logger

	mu       sync.Mutex
	registry *schema.Registry
	repos    map[string]*Repository
}

// NewConnection wraps an adapter. It does not connect.
func NewConnection(a adapter.Adapter, cfg adapter.Config, opts ...Option) *Connection {
	o := buildOptions(opts)
	registry := o.registry
	if registry == nil {
		registry = schema.NewRegistry()
	}
	return &Connection{
		adapter:  a,
		config:   cfg,
		tag:      fmt.Sprintf("%T", a),
		opts:     opts,
		logger:   o.logger,
		registry: registry,
		repos:    make(map[string]*Repository),
	}
}

// CreateConnection creates the adapter registered under adapterType and
// connects it.
func CreateConnection(ctx context.Context, cfg adapter.Config, adapterType string, opts ...Option) (*Connection, error) {
	a, err := adapter.New(adapterType)
	if err != nil {
		return nil, err
	}
	c := NewConnection(a, cfg, opts...)
	c.tag = adapterType
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Open connects to the database named by a postgres://, postgresql:// or
// sqlite:// URL.
func Open(ctx context.Context, url string, opts ...Option) (*Connection, error) {
	tag, cfg, err := adapter.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return CreateConnection(ctx, cfg, tag, opts...)
}

// Connect opens the underlying adapter.
func (c *Connection) Connect(ctx context.Context) error {
	if err := c.adapter.Connect(ctx, c.config); err != nil {
		c.logger.ErrorContext(ctx, "database connection failed", "adapter", c.tag, "error", err)
		return err
	}
	c.logger.InfoContext(ctx, "database connected", "adapter", c.tag)
	return nil
}

// Disconnect closes the underlying adapter.
func (c *Connection) Disconnect(ctx context.Context) error {
	if err := c.adapter.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	c.logger.InfoContext(ctx, "database disconnected", "adapter", c.tag)
	return nil
}

// IsConnected reports whether the adapter holds an open connection.
func (c *Connection) IsConnected() bool { return c.adapter.IsConnected() }

// Adapter returns the underlying adapter.
func (c *Connection) Adapter() adapter.Adapter { return c.adapter }

// RegisterModel adds meta to the connection's models. Registering the same
// metadata twice is a no-op; a different model with the same name fails.
func (c *Connection) RegisterModel(meta *schema.Metadata) error {
	if meta == nil {
		return schema.ErrMissingMetadata
	}
	if existing, err := c.registry.Lookup(meta.Name()); err == nil && existing == meta {
		return nil
	}
	return c.registry.Register(meta)
}

// Models returns the registered models sorted by name.
func (c *Connection) Models() []*schema.Metadata { return c.registry.Models() }

// Repository returns the repository of meta, creating it on first use.
// Repositories are cached by model name.
func (c *Connection) Repository(meta *schema.Metadata) (*Repository, error) {
	if meta == nil {
		return nil, schema.ErrMissingMetadata
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.repos[meta.Name()]; ok {
		return r, nil
	}
	r, err := NewRepository(meta, c.adapter, c.opts...)
	if err != nil {
		return nil, err
	}
	c.repos[meta.Name()] = r
	return r, nil
}

// RepositoryFor resolves a model by name, first among the connection's
// models and then in schema.DefaultRegistry, and returns its repository.
func (c *Connection) RepositoryFor(name string) (*Repository, error) {
	meta, err := c.registry.Lookup(name)
	if errors.Is(err, schema.ErrMissingMetadata) {
		meta, err = schema.Lookup(name)
	}
	if err != nil {
		return nil, err
	}
	return c.Repository(meta)
}

// EnsureTables creates the table of every registered model that does not
// exist yet and returns the names of the tables it created. Existing tables
// are left untouched.
func (c *Connection) EnsureTables(ctx context.Context) ([]string, error) {
	d := dialectOf(c.adapter)
	var created []string
	for _, meta := range c.registry.Models() {
		table := meta.TableName()
		exists, err := c.adapter.TableExists(ctx, table)
		if err != nil {
			return created, fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if exists {
			c.logger.DebugContext(ctx, "table exists", "model", meta.Name(), "table", table)
			continue
		}
		if err := c.adapter.CreateTable(ctx, table, columnSpecs(meta, d)); err != nil {
			return created, fmt.Errorf("failed to create table %s: %w", table, err)
		}
		c.logger.InfoContext(ctx, "table created", "model", meta.Name(), "table", table)
		created = append(created, table)
	}
	return created, nil
}
