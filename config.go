package authcore

import (
	"errors"
	"time"

	"github.com/localista/authcore/password"
	"github.com/localista/authcore/token"
)

// Config is the full Manager configuration tree. Zero values are filled
// from defaultConfig by the Builder; validation happens once in Build,
// before any I/O.
type Config struct {
	Tokens    TokenConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
}

// TokenConfig controls signing and lifetimes.
type TokenConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// SigningMethod is "ed25519" (default) or "hs256".
	SigningMethod string
	PrivateKey    []byte
	PublicKey     []byte

	Issuer string

	// Leeway tolerates clock skew during verification and pads blacklist
	// TTLs so an entry always outlives the token it revokes.
	Leeway time.Duration
}

// PasswordConfig mirrors password.Config; see that package for bounds.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// RateLimitConfig controls the login and rotation throttles.
type RateLimitConfig struct {
	EnableLoginThrottle   bool
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldown         time.Duration
	EnableRefreshThrottle bool
	MaxRefreshAttempts    int
	RefreshCooldown       time.Duration
}

func defaultConfig() Config {
	return Config{
		Tokens: TokenConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: string(token.MethodEd25519),
			Leeway:        30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		RateLimit: RateLimitConfig{
			EnableLoginThrottle:   true,
			EnableIPThrottle:      true,
			MaxLoginAttempts:      10,
			LoginCooldown:         15 * time.Minute,
			EnableRefreshThrottle: true,
			MaxRefreshAttempts:    30,
			RefreshCooldown:       time.Minute,
		},
	}
}

func (c Config) validate() error {
	t := c.Tokens
	if t.AccessTTL <= 0 {
		return errors.New("access ttl must be positive")
	}
	if t.RefreshTTL <= t.AccessTTL {
		return errors.New("refresh ttl must exceed access ttl")
	}
	switch token.Method(t.SigningMethod) {
	case token.MethodEd25519, token.MethodHS256:
	default:
		return errors.New("unsupported signing method")
	}
	if len(t.PrivateKey) == 0 {
		return errors.New("signing key is required")
	}
	if t.Leeway < 0 {
		return errors.New("leeway must not be negative")
	}

	r := c.RateLimit
	if r.EnableLoginThrottle && (r.MaxLoginAttempts <= 0 || r.LoginCooldown <= 0) {
		return errors.New("login throttle requires positive attempts and cooldown")
	}
	if r.EnableRefreshThrottle && (r.MaxRefreshAttempts <= 0 || r.RefreshCooldown <= 0) {
		return errors.New("refresh throttle requires positive attempts and cooldown")
	}

	return nil
}

func (c PasswordConfig) toPackage() password.Config {
	return password.Config{
		Memory:      c.Memory,
		Time:        c.Time,
		Parallelism: c.Parallelism,
		SaltLength:  c.SaltLength,
		KeyLength:   c.KeyLength,
	}
}
