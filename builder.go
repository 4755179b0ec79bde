package authcore

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/localista/authcore/internal/rate"
	"github.com/localista/authcore/kv"
	"github.com/localista/authcore/password"
	"github.com/localista/authcore/revocation"
	"github.com/localista/authcore/token"
)

// Builder assembles a [Manager]. Construction is allocation-only; no I/O
// happens until the first Manager method call.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  kv.Store
	users  UserProvider
	logger *zap.Logger
	clock  func() time.Time
	built  bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// DefaultConfig returns the baseline configuration: 15m access tokens,
// 7d refresh tokens, ed25519 signing, argon2id defaults, throttles on.
func DefaultConfig() Config {
	return defaultConfig()
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the Redis client backing the credential store and the
// rate limiter.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore overrides the credential store adapter. Takes precedence
// over the store derived from WithRedis; the rate limiter still needs a
// Redis client.
func (b *Builder) WithStore(store kv.Store) *Builder {
	b.store = store
	return b
}

// WithUserProvider connects the caller's user database for Login.
func (b *Builder) WithUserProvider(users UserProvider) *Builder {
	b.users = users
	return b
}

// WithLogger sets the logger; defaults to a no-op logger.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock injects the time source used for minting and expiry checks.
// Defaults to time.Now.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration and assembles the Manager. A Builder
// builds at most once.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := b.config.validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("a redis client or store adapter is required")
		}
		store = kv.NewRedis(b.redis)
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	signer, err := token.NewSigner(token.Config{
		Method:     token.Method(b.config.Tokens.SigningMethod),
		PrivateKey: b.config.Tokens.PrivateKey,
		PublicKey:  b.config.Tokens.PublicKey,
		Issuer:     b.config.Tokens.Issuer,
		Leeway:     b.config.Tokens.Leeway,
		Now:        clock,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(b.config.Password.toPackage())
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if b.redis != nil {
		limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle:      b.config.RateLimit.EnableIPThrottle,
			EnableRefreshThrottle: b.config.RateLimit.EnableRefreshThrottle,
			MaxLoginAttempts:      b.config.RateLimit.MaxLoginAttempts,
			LoginCooldown:         b.config.RateLimit.LoginCooldown,
			MaxRefreshAttempts:    b.config.RateLimit.MaxRefreshAttempts,
			RefreshCooldown:       b.config.RateLimit.RefreshCooldown,
		})
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	b.built = true
	return &Manager{
		config:  b.config,
		signer:  signer,
		ledger:  revocation.NewLedger(store),
		limiter: limiter,
		hasher:  hasher,
		users:   b.users,
		logger:  logger,
		metrics: newMetrics(),
		clock:   clock,
	}, nil
}
