package authcore

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/localista/authcore/internal/rate"
	"github.com/localista/authcore/token"
)

// Rotate consumes a refresh token and mints a replacement pair. The
// presented token is blacklisted before the new pair exists: a crash in
// between leaves the subject re-authenticating, never holding two live
// refresh tokens. When two requests race on the same token, the NX
// blacklist write picks exactly one winner; the loser gets ErrRevoked,
// which is the single-use contract, not an error to retry.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (TokenPair, error) {
	if m == nil {
		return TokenPair{}, ErrManagerNotReady
	}

	claims, err := m.verifyClaims(ctx, refreshToken, token.KindRefresh)
	if err != nil {
		m.metrics.Inc(MetricRotateFailure)
		return TokenPair{}, err
	}

	if m.limiter != nil && m.config.RateLimit.EnableRefreshThrottle {
		if err := m.limiter.CheckRotate(ctx, claims.Subject); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				m.metrics.Inc(MetricRotateRateLimited)
				return TokenPair{}, ErrRefreshRateLimited
			}
			m.metrics.Inc(MetricRotateFailure)
			return TokenPair{}, ErrVerificationUnavailable
		}
	}

	// Consume before reissue. The blacklist TTL covers the token's full
	// remaining lifetime plus leeway, so the entry cannot expire first.
	first, err := m.ledger.Blacklist(ctx, claims.ID, m.signer.Remaining(claims)+m.config.Tokens.Leeway)
	if err != nil {
		m.metrics.Inc(MetricRotateFailure)
		return TokenPair{}, mapLedgerErr(err, ErrVerificationUnavailable)
	}
	if !first {
		// Someone already consumed this token between our verify and our
		// write: either a concurrent legitimate rotation or a replayed
		// stolen token.
		m.metrics.Inc(MetricRotateReuseDetected)
		m.metrics.Inc(MetricRotateFailure)
		m.logger.Warn("refresh token reuse detected",
			zap.String("subject_id", claims.Subject),
			zap.String("jti", claims.ID),
		)
		return TokenPair{}, ErrRevoked
	}

	pair, err := m.Issue(ctx, Principal{SubjectID: claims.Subject, Role: Role(claims.Role)})
	if err != nil {
		m.metrics.Inc(MetricRotateFailure)
		return TokenPair{}, err
	}

	m.metrics.Inc(MetricRotateSuccess)
	return pair, nil
}

// Logout revokes a single access token: a one-step rotation with no
// reissue. It is idempotent, and an already-expired token is a success:
// there is nothing left to revoke.
func (m *Manager) Logout(ctx context.Context, accessToken string) error {
	if m == nil {
		return ErrManagerNotReady
	}

	claims, err := m.signer.Parse(accessToken, token.KindAccess)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			m.metrics.Inc(MetricLogout)
			return nil
		}
		return mapSignerErr(err)
	}

	if _, err := m.ledger.Blacklist(ctx, claims.ID, m.signer.Remaining(claims)+m.config.Tokens.Leeway); err != nil {
		return mapLedgerErr(err, ErrVerificationUnavailable)
	}

	m.metrics.Inc(MetricLogout)
	return nil
}

// RevokeAll invalidates every outstanding token for the subject with a
// single version bump, O(1) regardless of how many tokens are out
// there. Tokens minted after this call carry the new version and pass.
func (m *Manager) RevokeAll(ctx context.Context, subjectID string) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if subjectID == "" {
		return errors.New("empty subject id")
	}

	// The marker must outlive the longest-lived token it invalidates.
	if _, err := m.ledger.RevokeAllForSubject(ctx, subjectID, m.config.Tokens.RefreshTTL+m.config.Tokens.Leeway); err != nil {
		return mapLedgerErr(err, ErrVerificationUnavailable)
	}

	m.metrics.Inc(MetricRevokeAll)
	return nil
}
