package memdb

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/vortex-fintech/memdb-lib/netutil"
)

// StoreType identifies the flavor of in-memory store behind a URI.
type StoreType = string

const (
	StoreTypeRedis     StoreType = "redis"
	StoreTypeMemcached StoreType = "memcached"
	StoreTypeDragonfly StoreType = "dragonfly"
	StoreTypeValkey    StoreType = "valkey"
)

// Mode selects how the connector reaches the store. The empty mode dials
// the URI directly.
type Mode = string

const ModeSentinel Mode = "sentinel"

// Config describes one in-memory store. URI is the only required field;
// the store type is inferred from its scheme when Type is empty.
type Config struct {
	URI            string
	Type           StoreType
	ConnectionMode Mode          // sentinel routing, redis only
	MasterService  string        // sentinel master set name
	ConnectTimeout time.Duration // socket timeout for sentinel hops and handle verification
}

const defaultConnectTimeout = 30 * time.Second

var (
	ErrURIRequired      = errors.New("memdb: db url is required")
	ErrUnknownStoreType = errors.New("memdb: unknown store type")
)

// UnsupportedProtocolError is returned when the store type has to be
// inferred and the URI scheme is not a known store.
type UnsupportedProtocolError struct {
	Scheme string
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("memdb: unsupported connection protocol: %s", e.Scheme)
}

// resolveConfig normalizes a raw config: it requires a URI, fills the
// store type from the URI scheme when not explicit, and defaults the
// timeout. Resolving an already-resolved config changes nothing.
func resolveConfig(cfg Config) (Config, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return Config{}, ErrURIRequired
	}

	switch {
	case cfg.Type == "":
		t, err := inferStoreType(cfg.URI)
		if err != nil {
			return Config{}, err
		}
		cfg.Type = t
	case !knownStoreType(cfg.Type):
		// An explicit type is taken verbatim and never checked against
		// the URI scheme, but it still has to be a store we know.
		return Config{}, ErrUnknownStoreType
	}

	cfg.ConnectTimeout = netutil.SanitizeTimeout(cfg.ConnectTimeout, defaultConnectTimeout)
	return cfg, nil
}

func inferStoreType(uri string) (StoreType, error) {
	// Everything before "://" is the scheme; a URI without the separator
	// is treated as all scheme, so the error names what was given.
	scheme, _, _ := strings.Cut(uri, "://")
	if knownStoreType(scheme) {
		return scheme, nil
	}
	return "", &UnsupportedProtocolError{Scheme: scheme}
}

func knownStoreType(t StoreType) bool {
	switch t {
	case StoreTypeRedis, StoreTypeMemcached, StoreTypeDragonfly, StoreTypeValkey:
		return true
	}
	return false
}

type envSettings struct {
	URL            string `envconfig:"DB_URL"`
	Type           string `envconfig:"DB_TYPE"`
	ConnectionMode string `envconfig:"REDIS_CONNECTION_TYPE"`
	MasterService  string `envconfig:"REDIS_MASTER_SERVICE"`
	TimeoutSeconds int    `envconfig:"DB_TIMEOUT" default:"30"`
}

// FromEnv builds a raw Config from the process environment: DB_URL,
// DB_TYPE, REDIS_CONNECTION_TYPE, REDIS_MASTER_SERVICE and DB_TIMEOUT
// (whole seconds). The result is resolved by New.
func FromEnv() (Config, error) {
	var s envSettings
	if err := envconfig.Process("", &s); err != nil {
		return Config{}, err
	}
	return Config{
		URI:            s.URL,
		Type:           s.Type,
		ConnectionMode: s.ConnectionMode,
		MasterService:  s.MasterService,
		ConnectTimeout: time.Duration(s.TimeoutSeconds) * time.Second,
	}, nil
}
