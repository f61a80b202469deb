package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/savorlab/foodstate"
	"github.com/savorlab/foodstate/schema"
)

// Spec is the wire form of a transform definition published to the catalog.
// Applicability travels as CEL source and is compiled on load.
type Spec struct {
	ID            string        `json:"id" yaml:"id"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	Params        schema.Params `json:"params,omitempty" yaml:"params,omitempty"`
	Applicable    string        `json:"applicable,omitempty" yaml:"applicable,omitempty"`
	NonRepeatable bool          `json:"non_repeatable,omitempty" yaml:"non_repeatable,omitempty"`
}

// Compile turns a wire spec into a usable Definition, compiling the
// applicability expression and validating the parameter schema.
func (s Spec) Compile() (Definition, error) {
	def := Definition{
		ID:            s.ID,
		Description:   s.Description,
		Params:        s.Params,
		NonRepeatable: s.NonRepeatable,
	}
	if s.Applicable != "" {
		pred, err := NewCELPredicate(s.Applicable)
		if err != nil {
			return Definition{}, fmt.Errorf("transform %s: %w", s.ID, err)
		}
		def.Applicable = pred
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// CatalogConfig configures the connection to an etcd-backed transform catalog.
type CatalogConfig struct {
	// Endpoints lists the etcd cluster endpoints (e.g., "localhost:2379").
	Endpoints []string

	// Namespace prefixes all catalog keys. Defaults to "savorlab".
	// Transform specs live under <namespace>/transforms/<id>.
	Namespace string

	// DialTimeout bounds connection establishment. Defaults to 5s.
	DialTimeout time.Duration

	// Logger receives catalog warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// EtcdCatalog is a Registry backed by an etcd cluster.
//
// Transform definitions are published as JSON Spec values under
// <namespace>/transforms/<id>. Lookup performs a point read per request;
// Sync bulk-loads the catalog into a StaticRegistry and Watch keeps it
// current, which is the recommended mode for composition-serving processes.
//
// Per the engine's error contract, every lookup failure (missing key,
// undecodable spec, etcd unreachable) surfaces as
// foodstate.ErrTransformNotFound. Transient unavailability and true
// non-existence are distinguished by the catalog operator, not the engine.
type EtcdCatalog struct {
	client    *clientv3.Client
	namespace string
	logger    *slog.Logger
}

// NewEtcdCatalog connects to the catalog cluster and verifies connectivity.
// The catalog must be closed with Close() when no longer needed.
func NewEtcdCatalog(cfg CatalogConfig) (*EtcdCatalog, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, foodstate.NewConfigurationError("NewEtcdCatalog",
			fmt.Errorf("catalog endpoints cannot be empty"))
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "savorlab"
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, foodstate.NewConfigurationError("NewEtcdCatalog",
			fmt.Errorf("failed to create etcd client: %w", err))
	}

	return &EtcdCatalog{
		client:    cli,
		namespace: namespace,
		logger:    logger,
	}, nil
}

// keyPrefix returns the key prefix under which transform specs live.
func (c *EtcdCatalog) keyPrefix() string {
	return path.Join(c.namespace, "transforms") + "/"
}

// key returns the catalog key for a transform id.
func (c *EtcdCatalog) key(id string) string {
	return c.keyPrefix() + id
}

// Lookup implements Registry with a point read against etcd.
func (c *EtcdCatalog) Lookup(ctx context.Context, id string) (Definition, error) {
	notFound := func(err error) (Definition, error) {
		e := foodstate.NewNotFoundError("EtcdCatalog.Lookup", foodstate.ErrTransformNotFound).
			WithContext(map[string]any{"transform": id})
		if err != nil {
			c.logger.Warn("catalog lookup failed",
				"transform", id,
				"error", err)
		}
		return Definition{}, e
	}

	resp, err := c.client.Get(ctx, c.key(id))
	if err != nil {
		return notFound(err)
	}
	if len(resp.Kvs) == 0 {
		return notFound(nil)
	}

	var spec Spec
	if err := json.Unmarshal(resp.Kvs[0].Value, &spec); err != nil {
		return notFound(fmt.Errorf("undecodable spec: %w", err))
	}

	def, err := spec.Compile()
	if err != nil {
		return notFound(err)
	}
	return def, nil
}

// Sync bulk-loads every transform spec in the catalog into the registry.
// Specs that fail to decode or compile are skipped with a warning; a partial
// catalog is preferable to none for a read path that treats missing
// transforms as per-request validation errors.
func (c *EtcdCatalog) Sync(ctx context.Context, reg *StaticRegistry) error {
	resp, err := c.client.Get(ctx, c.keyPrefix(), clientv3.WithPrefix())
	if err != nil {
		return foodstate.NewInternalError("EtcdCatalog.Sync", err)
	}

	for _, kv := range resp.Kvs {
		var spec Spec
		if err := json.Unmarshal(kv.Value, &spec); err != nil {
			c.logger.Warn("skipping undecodable transform spec",
				"key", string(kv.Key),
				"error", err)
			continue
		}
		def, err := spec.Compile()
		if err != nil {
			c.logger.Warn("skipping uncompilable transform spec",
				"key", string(kv.Key),
				"error", err)
			continue
		}
		if err := reg.Replace(def); err != nil {
			c.logger.Warn("skipping invalid transform spec",
				"key", string(kv.Key),
				"error", err)
		}
	}
	return nil
}

// Watch keeps the registry current with catalog changes until ctx is
// cancelled. Puts replace definitions, deletes unregister them. Watch
// returns after the watch channel closes.
func (c *EtcdCatalog) Watch(ctx context.Context, reg *StaticRegistry) {
	prefix := c.keyPrefix()
	for resp := range c.client.Watch(ctx, prefix, clientv3.WithPrefix()) {
		if err := resp.Err(); err != nil {
			c.logger.Warn("catalog watch error", "error", err)
			continue
		}
		for _, ev := range resp.Events {
			id := string(ev.Kv.Key)[len(prefix):]
			switch ev.Type {
			case clientv3.EventTypeDelete:
				reg.Unregister(id)
			case clientv3.EventTypePut:
				var spec Spec
				if err := json.Unmarshal(ev.Kv.Value, &spec); err != nil {
					c.logger.Warn("ignoring undecodable transform update",
						"transform", id,
						"error", err)
					continue
				}
				def, err := spec.Compile()
				if err != nil {
					c.logger.Warn("ignoring uncompilable transform update",
						"transform", id,
						"error", err)
					continue
				}
				if err := reg.Replace(def); err != nil {
					c.logger.Warn("ignoring invalid transform update",
						"transform", id,
						"error", err)
				}
			}
		}
	}
}

// Publish writes a transform spec to the catalog. Authoring tooling uses
// this; composition-serving processes are read-only consumers.
func (c *EtcdCatalog) Publish(ctx context.Context, spec Spec) error {
	if _, err := spec.Compile(); err != nil {
		return foodstate.NewValidationError("EtcdCatalog.Publish", err)
	}
	data, err := json.Marshal(spec)
	if err != nil {
		return foodstate.NewInternalError("EtcdCatalog.Publish", err)
	}
	if _, err := c.client.Put(ctx, c.key(spec.ID), string(data)); err != nil {
		return foodstate.NewInternalError("EtcdCatalog.Publish", err)
	}
	return nil
}

// Close releases the underlying etcd client.
func (c *EtcdCatalog) Close() error {
	return c.client.Close()
}
