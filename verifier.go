package authcore

import (
	"context"
	"errors"

	"github.com/localista/authcore/token"
)

// VerifyAccess validates a presented access token and returns the
// authenticated principal. Verification is side-effect free.
func (m *Manager) VerifyAccess(ctx context.Context, raw string) (Principal, error) {
	return m.verify(ctx, raw, token.KindAccess)
}

// VerifyRefresh validates a presented refresh token without consuming
// it. Rotation, not verification, is what retires a refresh token.
func (m *Manager) VerifyRefresh(ctx context.Context, raw string) (Principal, error) {
	return m.verify(ctx, raw, token.KindRefresh)
}

func (m *Manager) verify(ctx context.Context, raw string, kind token.Kind) (Principal, error) {
	claims, err := m.verifyClaims(ctx, raw, kind)
	if err != nil {
		return Principal{}, err
	}
	return Principal{SubjectID: claims.Subject, Role: Role(claims.Role)}, nil
}

// verifyClaims runs the verification state machine: signature and expiry
// first, then the blacklist, then the subject's revocation version. Each
// step can only reject; nothing here mutates the ledger.
func (m *Manager) verifyClaims(ctx context.Context, raw string, kind token.Kind) (*token.Claims, error) {
	if m == nil {
		return nil, ErrManagerNotReady
	}

	claims, err := m.signer.Parse(raw, kind)
	if err != nil {
		m.metrics.Inc(MetricVerifyRejected)
		return nil, mapSignerErr(err)
	}

	blacklisted, err := m.ledger.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		m.metrics.Inc(MetricVerifyUnavailable)
		return nil, mapLedgerErr(err, ErrVerificationUnavailable)
	}
	if blacklisted {
		m.metrics.Inc(MetricVerifyRejected)
		return nil, ErrRevoked
	}

	current, err := m.ledger.SubjectVersion(ctx, claims.Subject)
	if err != nil {
		m.metrics.Inc(MetricVerifyUnavailable)
		return nil, mapLedgerErr(err, ErrVerificationUnavailable)
	}
	// Minted strictly before the last revoke-all: permanently dead.
	if claims.Version < current {
		m.metrics.Inc(MetricVerifyRejected)
		return nil, ErrRevoked
	}

	m.metrics.Inc(MetricVerifySuccess)
	return claims, nil
}

func mapSignerErr(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ErrExpired
	case errors.Is(err, token.ErrInvalidSignature):
		return ErrInvalidSignature
	case errors.Is(err, token.ErrWrongKind):
		return ErrWrongKind
	case errors.Is(err, token.ErrMalformed):
		return ErrMalformed
	default:
		return ErrMalformed
	}
}
