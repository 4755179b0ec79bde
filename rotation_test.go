package authcore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/localista/authcore/token"
)

func TestRotateSingleUseRefresh(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	pair1 := issuePair(t, env, "u1")

	pair2, err := env.manager.Rotate(ctx, pair1.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair1.RefreshToken, pair2.RefreshToken)

	// Replaying the consumed refresh token always fails.
	_, err = env.manager.Rotate(ctx, pair1.RefreshToken)
	require.ErrorIs(t, err, ErrRevoked)
	require.Equal(t, uint64(1), env.manager.MetricsSnapshot().Counters[MetricRotateReuseDetected])

	// Rotation retires only the refresh token: the old access token
	// keeps working until its own expiry or an explicit logout.
	_, err = env.manager.VerifyAccess(ctx, pair1.AccessToken)
	require.NoError(t, err)

	_, err = env.manager.Rotate(ctx, pair2.RefreshToken)
	require.NoError(t, err)
}

func TestRotateConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(t, nil)
	pair := issuePair(t, env, "u1")
	ctx := context.Background()

	const workers = 16
	start := make(chan struct{})
	results := make(chan error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err := env.manager.Rotate(ctx, pair.RefreshToken)
			results <- err
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrRevoked):
		default:
			t.Fatalf("unexpected rotate error: %v", err)
		}
	}

	if success != 1 {
		t.Fatalf("expected exactly one winner, got %d", success)
	}
}

func TestRotateCrashBeforeReissueLeavesOldTokenDead(t *testing.T) {
	env := newTestEnv(t, nil)
	pair := issuePair(t, env, "u1")
	ctx := context.Background()

	// Fail every read once the blacklist write has landed: the rotation
	// dies between consuming the old token and minting the new pair.
	env.store.set(func(f *faultStore) { f.failGetNext = true })

	_, err := env.manager.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrIssuanceFailed)

	env.store.set(func(f *faultStore) { f.failGet = false })

	// No new pair exists and the old refresh token is unusable; the
	// subject re-authenticates rather than holding a live token.
	_, err = env.manager.VerifyRefresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrRevoked)
	_, err = env.manager.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrRevoked)
}

func TestRotateBlacklistTTLCoversRemainingLifetime(t *testing.T) {
	env := newTestEnv(t, nil)
	pair := issuePair(t, env, "u1")
	ctx := context.Background()

	env.clock.Advance(10 * time.Hour)

	claims, err := env.manager.signer.Parse(pair.RefreshToken, token.KindRefresh)
	require.NoError(t, err)
	remaining := env.manager.signer.Remaining(claims)

	_, err = env.manager.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)

	require.GreaterOrEqual(t, env.mr.TTL("tbl:"+claims.ID), remaining)
}

func TestRotateRateLimited(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.RateLimit.EnableRefreshThrottle = true
		cfg.RateLimit.MaxRefreshAttempts = 1
		cfg.RateLimit.RefreshCooldown = time.Minute
	})
	ctx := context.Background()

	pair, err := env.manager.Issue(ctx, Principal{SubjectID: "u1", Role: RoleUser})
	require.NoError(t, err)

	pair, err = env.manager.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)

	_, err = env.manager.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshRateLimited)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	env := newTestEnv(t, nil)
	pair := issuePair(t, env, "u1")
	ctx := context.Background()

	_, err := env.manager.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.manager.Logout(ctx, pair.AccessToken))

	_, err = env.manager.VerifyAccess(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrRevoked)

	// Logout is idempotent.
	require.NoError(t, env.manager.Logout(ctx, pair.AccessToken))

	// Only the presented token was revoked; the refresh token still
	// rotates.
	_, err = env.manager.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutExpiredTokenIsANoOp(t *testing.T) {
	env := newTestEnv(t, nil)
	pair := issuePair(t, env, "u1")

	env.clock.Advance(16 * time.Minute)

	require.NoError(t, env.manager.Logout(context.Background(), pair.AccessToken))
}

func TestLogoutRejectsNonAccessTokens(t *testing.T) {
	env := newTestEnv(t, nil)
	pair := issuePair(t, env, "u1")
	ctx := context.Background()

	require.ErrorIs(t, env.manager.Logout(ctx, pair.RefreshToken), ErrWrongKind)
	require.ErrorIs(t, env.manager.Logout(ctx, "garbage"), ErrMalformed)
}

func TestRevokeAllInvalidatesEverythingOutstanding(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	before1 := issuePair(t, env, "u1")
	before2 := issuePair(t, env, "u1")
	other := issuePair(t, env, "u2")

	require.NoError(t, env.manager.RevokeAll(ctx, "u1"))

	for _, raw := range []string{before1.AccessToken, before2.AccessToken} {
		_, err := env.manager.VerifyAccess(ctx, raw)
		require.ErrorIs(t, err, ErrRevoked)
	}
	for _, raw := range []string{before1.RefreshToken, before2.RefreshToken} {
		_, err := env.manager.Rotate(ctx, raw)
		require.ErrorIs(t, err, ErrRevoked)
	}

	// Other subjects are untouched.
	_, err := env.manager.VerifyAccess(ctx, other.AccessToken)
	require.NoError(t, err)

	// Tokens minted after the bump carry the new version and pass.
	after := issuePair(t, env, "u1")
	_, err = env.manager.VerifyAccess(ctx, after.AccessToken)
	require.NoError(t, err)
	_, err = env.manager.Rotate(ctx, after.RefreshToken)
	require.NoError(t, err)
}

func TestRevokeAllIsRepeatable(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	require.NoError(t, env.manager.RevokeAll(ctx, "u1"))
	pair := issuePair(t, env, "u1")
	require.NoError(t, env.manager.RevokeAll(ctx, "u1"))

	_, err := env.manager.VerifyAccess(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrRevoked)
}

func TestRevokeAllUnavailableStore(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.set(func(f *faultStore) { f.failIncr = true })

	err := env.manager.RevokeAll(context.Background(), "u1")
	require.ErrorIs(t, err, ErrVerificationUnavailable)
}
