package authcore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/localista/authcore/token"
)

func TestIssueConcurrentJTIsAreDistinct(t *testing.T) {
	env := newTestEnv(t, nil)
	principal := Principal{SubjectID: "u1", Role: RoleUser}
	ctx := context.Background()

	const workers = 32
	start := make(chan struct{})
	pairs := make(chan TokenPair, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			pair, err := env.manager.Issue(ctx, principal)
			if err != nil {
				t.Error(err)
				return
			}
			pairs <- pair
		}()
	}

	close(start)
	wg.Wait()
	close(pairs)

	seen := map[string]bool{}
	for pair := range pairs {
		access, err := env.manager.signer.Parse(pair.AccessToken, token.KindAccess)
		require.NoError(t, err)
		refresh, err := env.manager.signer.Parse(pair.RefreshToken, token.KindRefresh)
		require.NoError(t, err)

		require.False(t, seen[access.ID], "duplicate access jti %s", access.ID)
		require.False(t, seen[refresh.ID], "duplicate refresh jti %s", refresh.ID)
		seen[access.ID] = true
		seen[refresh.ID] = true
	}
	require.Len(t, seen, 2*workers)
}

func TestIssueStampsCurrentVersion(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	principal := Principal{SubjectID: "u1", Role: RoleUser}

	pair, err := env.manager.Issue(ctx, principal)
	require.NoError(t, err)
	claims, err := env.manager.signer.Parse(pair.AccessToken, token.KindAccess)
	require.NoError(t, err)
	require.Equal(t, int64(0), claims.Version)

	require.NoError(t, env.manager.RevokeAll(ctx, "u1"))

	pair, err = env.manager.Issue(ctx, principal)
	require.NoError(t, err)
	claims, err = env.manager.signer.Parse(pair.AccessToken, token.KindAccess)
	require.NoError(t, err)
	require.Equal(t, int64(1), claims.Version)
}

func TestIssueFailsClosedWhenVersionUnreadable(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.set(func(f *faultStore) { f.failGet = true })

	_, err := env.manager.Issue(context.Background(), Principal{SubjectID: "u1", Role: RoleUser})
	require.ErrorIs(t, err, ErrIssuanceFailed)
	require.Equal(t, uint64(1), env.manager.MetricsSnapshot().Counters[MetricIssueFailure])
}

func TestIssueRejectsInvalidPrincipal(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.manager.Issue(ctx, Principal{SubjectID: "", Role: RoleUser})
	require.Error(t, err)

	_, err = env.manager.Issue(ctx, Principal{SubjectID: "u1", Role: Role("superuser")})
	require.Error(t, err)
}
