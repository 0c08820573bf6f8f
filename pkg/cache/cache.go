// Package cache stores rendered artifacts and resolved frames.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the HTTP service when several instances share results, and
// [NullCache] when caching is disabled. Keys come from a [Keyer] so the
// pipeline never builds key strings by hand.
//
// Scene documents are addressed by content: callers pass [Hash] of the raw
// document bytes, and the keyer folds in every option that changes the
// output (canvas size, depth limit, format, scale).
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// LayoutKeyOpts holds the options that change a resolved frame.
type LayoutKeyOpts struct {
	Width    int `json:"w"`
	Height   int `json:"h"`
	MaxDepth int `json:"d"`
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Width    int     `json:"w"`
	Height   int     `json:"h"`
	MaxDepth int     `json:"d"`
	Format   string  `json:"f"`
	Scale    float64 `json:"s,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key of the frame resolved from a document.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of one rendered output format.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, docHash, opts)
}
