package memdb

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vortex-fintech/memdb-lib/netutil"
)

// masterResolver is the sentinel-side surface the connector needs: one
// master lookup plus a close. *redis.SentinelClient satisfies it.
type masterResolver interface {
	GetMasterAddrByName(ctx context.Context, name string) *redis.StringSliceCmd
	Close() error
}

var (
	newStoreClient = func(opt *redis.Options) redis.UniversalClient {
		return redis.NewClient(opt)
	}
	newSentinelClient = func(opt *redis.Options) masterResolver {
		return redis.NewSentinelClient(opt)
	}
	pingClient = func(ctx context.Context, c redis.UniversalClient) error {
		return c.Ping(ctx).Err()
	}
)

// Connector produces client handles for one configured store. It is
// immutable after construction and safe for concurrent use; every
// successful Connect returns a fresh handle owned by the caller. A failed
// call leaves the connector fully reusable.
type Connector struct {
	uri           string
	storeType     StoreType
	mode          Mode
	masterService string
	timeout       time.Duration
	log           *zap.Logger
	metrics       Metrics
}

// Option adjusts a Connector at construction time.
type Option func(*connectorOptions)

type connectorOptions struct {
	mode          Mode
	masterService string
	log           *zap.Logger
	metrics       Metrics
}

// WithConnectionMode overrides the connection mode from the config.
// The empty value falls back to the config.
func WithConnectionMode(m Mode) Option {
	return func(o *connectorOptions) { o.mode = m }
}

// WithMasterService overrides the sentinel master set name from the
// config. The empty value falls back to the config.
func WithMasterService(name string) Option {
	return func(o *connectorOptions) { o.masterService = name }
}

// WithLogger attaches a logger for connection-path events. The connector
// is silent without it.
func WithLogger(l *zap.Logger) Option {
	return func(o *connectorOptions) { o.log = l }
}

// WithMetrics attaches a Metrics sink for connect outcomes.
func WithMetrics(m Metrics) Option {
	return func(o *connectorOptions) { o.metrics = m }
}

// New resolves cfg and builds a connector for it. Sentinel routing fields
// (mode and master service, option value over config value) apply to the
// redis store type only; for every other type they stay unset.
func New(cfg Config, opts ...Option) (*Connector, error) {
	resolved, err := resolveConfig(cfg)
	if err != nil {
		return nil, err
	}

	var o connectorOptions
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log
	if log == nil {
		log = zap.NewNop()
	}

	c := &Connector{
		uri:       resolved.URI,
		storeType: resolved.Type,
		timeout:   resolved.ConnectTimeout,
		log:       log,
		metrics:   o.metrics,
	}

	mode := resolved.ConnectionMode
	if o.mode != "" {
		mode = o.mode
	}
	service := resolved.MasterService
	if o.masterService != "" {
		service = o.masterService
	}

	if resolved.Type == StoreTypeRedis {
		c.mode = mode
		c.masterService = service
	} else if o.mode != "" || o.masterService != "" {
		// A shared config may carry sentinel fields for other store
		// types; they are dropped, not rejected.
		log.Debug("dropping sentinel overrides for non-redis store",
			zap.String("store_type", resolved.Type))
	}

	return c, nil
}

// NewFromEnv is New over FromEnv.
func NewFromEnv(opts ...Option) (*Connector, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

func (c *Connector) StoreType() StoreType { return c.storeType }
func (c *Connector) ConnectionMode() Mode { return c.mode }
func (c *Connector) MasterService() string { return c.masterService }

// ConnectOption adjusts a single Connect call.
type ConnectOption func(*connectOptions)

type connectOptions struct {
	db      int
	timeout time.Duration
}

// WithDB selects the logical database index. Default 0.
func WithDB(db int) ConnectOption {
	return func(o *connectOptions) { o.db = db }
}

// WithTimeout overrides the connector's socket and verification timeout
// for this call only.
func WithTimeout(d time.Duration) ConnectOption {
	return func(o *connectOptions) { o.timeout = d }
}

// Connect opens one verified client handle. Direct mode dials the URI;
// sentinel mode resolves the current master through the Sentinel endpoint
// first. Transport failures come back unmodified, with no retries.
func (c *Connector) Connect(ctx context.Context, opts ...ConnectOption) (redis.UniversalClient, error) {
	return c.connect(ctx, opts...)
}

// connect is the single decision path behind Connect and ConnectAsync.
func (c *Connector) connect(ctx context.Context, opts ...ConnectOption) (redis.UniversalClient, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var o connectOptions
	for _, opt := range opts {
		opt(&o)
	}
	timeout := netutil.SanitizeTimeout(o.timeout, c.timeout)

	start := time.Now()

	var (
		client redis.UniversalClient
		err    error
	)
	if c.mode == ModeSentinel {
		client, err = c.sentinelConnect(ctx, o.db, timeout)
	} else {
		client, err = c.directConnect(o.db)
	}
	if err != nil {
		c.countConnect("error")
		return nil, err
	}

	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pingClient(pctx, client); err != nil {
		_ = client.Close()
		c.countConnect("error")
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.IncConnectTotal(c.modeLabel(), "success")
		c.metrics.ObserveConnectDuration(c.modeLabel(), time.Since(start))
	}
	c.log.Info("store connected",
		zap.String("store_type", c.storeType),
		zap.String("mode", c.mode),
		zap.Int("db", o.db))
	return client, nil
}

func (c *Connector) countConnect(result string) {
	if c.metrics != nil {
		c.metrics.IncConnectTotal(c.modeLabel(), result)
	}
}

func (c *Connector) modeLabel() string {
	if c.mode == ModeSentinel {
		return "sentinel"
	}
	return "direct"
}

func (c *Connector) directConnect(db int) (redis.UniversalClient, error) {
	opt, err := redis.ParseURL(dialURL(c.uri))
	if err != nil {
		return nil, err
	}
	opt.DB = db
	return newStoreClient(opt), nil
}

// dialURL rewrites the dragonfly and valkey schemes to redis: both stores
// serve the redis protocol and differ only in the advertised scheme. Any
// other URI passes through verbatim and an undialable scheme surfaces the
// transport's own parse error.
func dialURL(uri string) string {
	for _, scheme := range []string{"dragonfly://", "valkey://"} {
		if rest, ok := strings.CutPrefix(uri, scheme); ok {
			return "redis://" + rest
		}
	}
	return uri
}

func (c *Connector) sentinelConnect(ctx context.Context, db int, timeout time.Duration) (redis.UniversalClient, error) {
	u, err := url.Parse(c.uri)
	if err != nil {
		return nil, err
	}
	password, _ := u.User.Password()

	// One sentinel endpoint only, taken from the URI as-is: a missing
	// port is not defaulted and fails at dial time.
	sentinel := newSentinelClient(&redis.Options{
		Addr:         net.JoinHostPort(u.Hostname(), u.Port()),
		Password:     password,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	masterAddr, err := sentinel.GetMasterAddrByName(ctx, c.masterService).Result()
	_ = sentinel.Close()
	if err != nil {
		return nil, err
	}
	if len(masterAddr) != 2 {
		return nil, fmt.Errorf("memdb: unexpected master address for %q: %v", c.masterService, masterAddr)
	}

	c.log.Debug("sentinel master resolved",
		zap.String("service", c.masterService),
		zap.Strings("addr", masterAddr))

	// DB here makes the transport SELECT the requested database on every
	// connection it initializes to the freshly resolved master.
	return newStoreClient(&redis.Options{
		Addr:         net.JoinHostPort(masterAddr[0], masterAddr[1]),
		Password:     password,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}), nil
}
