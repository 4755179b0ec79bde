package authcore

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/localista/authcore/internal/rate"
	"github.com/localista/authcore/password"
	"github.com/localista/authcore/revocation"
	"github.com/localista/authcore/token"
)

// Manager is the token lifecycle and revocation manager. Construct it
// through [Builder.Build]; all methods are safe for concurrent use.
type Manager struct {
	config  Config
	signer  *token.Signer
	ledger  *revocation.Ledger
	limiter *rate.Limiter
	hasher  *password.Argon2
	users   UserProvider
	logger  *zap.Logger
	metrics *Metrics
	clock   func() time.Time
}

// Login authenticates an identifier/password pair and issues a fresh
// token pair. Unknown identifiers and wrong passwords are
// indistinguishable to the caller.
func (m *Manager) Login(ctx context.Context, identifier, pass string) (TokenPair, error) {
	if m == nil {
		return TokenPair{}, ErrManagerNotReady
	}
	if m.users == nil {
		return TokenPair{}, errors.New("no user provider configured")
	}

	ip := clientIPFromContext(ctx)
	if m.limiter != nil && m.config.RateLimit.EnableLoginThrottle {
		if err := m.limiter.CheckLogin(ctx, identifier, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				m.metrics.Inc(MetricLoginRateLimited)
				return TokenPair{}, ErrLoginRateLimited
			}
			return TokenPair{}, ErrVerificationUnavailable
		}
	}

	rec, err := m.users.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return TokenPair{}, m.loginRejected(ctx, identifier, ip)
		}
		return TokenPair{}, err
	}

	ok, err := m.hasher.Verify(pass, rec.PasswordHash)
	if err != nil || !ok {
		return TokenPair{}, m.loginRejected(ctx, identifier, ip)
	}

	if m.limiter != nil && m.config.RateLimit.EnableLoginThrottle {
		if err := m.limiter.ResetLogin(ctx, identifier, ip); err != nil {
			m.logger.Warn("login throttle reset failed", zap.Error(err))
		}
	}

	pair, err := m.Issue(ctx, Principal{SubjectID: rec.UserID, Role: rec.Role})
	if err != nil {
		return TokenPair{}, err
	}

	m.metrics.Inc(MetricLoginSuccess)
	return pair, nil
}

func (m *Manager) loginRejected(ctx context.Context, identifier, ip string) error {
	m.metrics.Inc(MetricLoginFailure)
	if m.limiter != nil && m.config.RateLimit.EnableLoginThrottle {
		if err := m.limiter.RecordLoginFailure(ctx, identifier, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				m.metrics.Inc(MetricLoginRateLimited)
				return ErrLoginRateLimited
			}
			m.logger.Warn("login throttle update failed", zap.Error(err))
		}
	}
	return ErrInvalidCredentials
}

// MetricsSnapshot returns a point-in-time copy of the manager's counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return m.metrics.Snapshot()
}

// mapLedgerErr converts a revocation-ledger failure into the root
// taxonomy. Every ledger failure is a fail-closed rejection.
func mapLedgerErr(err error, onUnavailable error) error {
	if errors.Is(err, revocation.ErrCheckFailed) {
		return onUnavailable
	}
	return err
}
