// Package storage provides bucket style key/value document storage with
// interchangeable backends. Records are addressed by slash separated keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotFound is returned when no object exists at the requested key.
	ErrNotFound = errors.New("object not found")
)

// Storage is implemented by the S3 and filesystem backends.
type Storage interface {
	Write(ctx context.Context, key string, body []byte, options *Options) error
	Read(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
	List(ctx context.Context, path string) ([]string, error)
}

// Options alter the behavior of a write.
type Options struct {
	// TTL is an optional expiry, in seconds, for backends that support it.
	TTL int64

	// Mode is the file mode used by the filesystem backend.
	Mode os.FileMode

	// DirMode is the directory mode used by the filesystem backend.
	DirMode os.FileMode
}

// NewOptions returns an Options with defaults applied.
func NewOptions() Options {
	return Options{
		Mode:    0644,
		DirMode: 0755,
	}
}

const (
	// DefaultMaxRetries is the number of retries for a write operation.
	DefaultMaxRetries = 4
)

// Config holds all configuration for the Storage.
//
// Config is geared towards "bucket" style storage, where you have a specific
// root (the Bucket).
type Config struct {
	Bucket     string
	Root       string
	MaxRetries int
}

// NewConfig returns a new Config with AWS style options.
func NewConfig(bucket, root string) Config {
	return Config{
		Bucket:     bucket,
		Root:       root,
		MaxRetries: DefaultMaxRetries,
	}
}

func (c Config) String() string {
	return fmt.Sprintf("{Bucket:%v Root:%v MaxRetries:%v}",
		c.Bucket, c.Root, c.MaxRetries)
}
