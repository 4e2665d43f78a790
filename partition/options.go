// SPDX-License-Identifier: MIT
//
// options.go: Device, Config and functional options.
//
// Contract:
//   • Option constructors validate and panic on meaningless inputs (nil funcs).
//   • Config values are validated by PartitionGraph, which returns ErrConfiguration.

package partition

import (
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/katalvlaran/fxgraph/fx"
)

// Device is a compute target. Name and LogicalID are unique within a Config.
type Device struct {
	Name              string
	AvailableMemBytes int64
	LogicalID         int
}

// EmbeddingPredicate reports whether n is a large embedding lookup that needs a
// device of its own in sparse mode.
type EmbeddingPredicate func(n *fx.Node, owner fx.Owner) bool

// Config drives one PartitionGraph call.
type Config struct {
	// Devices in preference order.
	Devices []Device

	// IsSparseNN enables sparse-recommendation mode: one partition per embedding lookup.
	IsSparseNN bool

	// CombineSmallPartitions merges connected partitions while the result fits a device.
	CombineSmallPartitions bool

	// IsEmbedding classifies nodes in sparse mode; nil means DefaultEmbeddingPredicate.
	IsEmbedding EmbeddingPredicate

	// Logger receives Debug records about partitions, merges and placement; nil means slog.Default().
	Logger *slog.Logger
}

// Option customizes a Config built by NewConfig.
type Option func(*Config)

// NewConfig returns a Config over devices with the given options applied.
// The device slice is copied.
func NewConfig(devices []Device, opts ...Option) Config {
	cfg := Config{
		Devices:     append([]Device(nil), devices...),
		IsEmbedding: DefaultEmbeddingPredicate,
		Logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithSparseNN enables sparse-recommendation mode.
func WithSparseNN() Option {
	return func(c *Config) { c.IsSparseNN = true }
}

// WithCombineSmallPartitions enables merging of connected partitions.
func WithCombineSmallPartitions() Option {
	return func(c *Config) { c.CombineSmallPartitions = true }
}

// WithEmbeddingPredicate overrides embedding detection. Panics on nil.
func WithEmbeddingPredicate(fn EmbeddingPredicate) Option {
	if fn == nil {
		panic("partition: WithEmbeddingPredicate(nil)")
	}

	return func(c *Config) { c.IsEmbedding = fn }
}

// WithLogger routes diagnostics to l. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("partition: WithLogger(nil)")
	}

	return func(c *Config) { c.Logger = l }
}

// DefaultEmbeddingPredicate matches call_module nodes whose module type, or one
// of its base types, contains "Embedding".
func DefaultEmbeddingPredicate(n *fx.Node, owner fx.Owner) bool {
	if n.Op() != fx.OpCallModule || owner == nil {
		return false
	}
	m, ok := owner.Submodule(n.Target())
	if !ok {
		return false
	}
	if strings.Contains(string(m.Type()), "Embedding") {
		return true
	}
	if b, ok := m.(fx.Based); ok {
		for _, t := range b.BaseTypes() {
			if strings.Contains(string(t), "Embedding") {
				return true
			}
		}
	}

	return false
}

// validate checks the device list.
func (c Config) validate() error {
	if len(c.Devices) == 0 {
		return errors.Wrap(ErrConfiguration, "no devices")
	}
	names := make(map[string]struct{}, len(c.Devices))
	ids := make(map[int]struct{}, len(c.Devices))
	for _, d := range c.Devices {
		if d.AvailableMemBytes <= 0 {
			return errors.Wrapf(ErrConfiguration, "device %q: capacity %d", d.Name, d.AvailableMemBytes)
		}
		if _, dup := names[d.Name]; dup {
			return errors.Wrapf(ErrConfiguration, "duplicate device name %q", d.Name)
		}
		if _, dup := ids[d.LogicalID]; dup {
			return errors.Wrapf(ErrConfiguration, "duplicate logical id %d", d.LogicalID)
		}
		names[d.Name] = struct{}{}
		ids[d.LogicalID] = struct{}{}
	}

	return nil
}
