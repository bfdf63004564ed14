package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownDriver is returned by Open for a driver name it does not know.
var ErrUnknownDriver = errors.New("unknown store driver")

// KV is a durable string key-value store. Set must not return before the
// value is durable. Get reports found=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Store is a KV backed by a resource that must be released.
type Store interface {
	KV
	io.Closer
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Driver        string
	Path          string // file and sqlite
	DatabaseURL   string // postgres
	MongoURI      string
	MongoDatabase string
}

// Open connects to the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(opts.Driver) {
	case DriverMemory:
		s = NewMemory()
	case DriverFile, "":
		s, err = OpenFile(opts.Path)
	case DriverSQLite:
		s, err = OpenSQLite(ctx, opts.Path)
	case DriverPostgres:
		s, err = OpenPostgres(opts.DatabaseURL)
	case DriverMongo:
		s, err = OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
