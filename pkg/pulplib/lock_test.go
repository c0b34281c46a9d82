package pulplib_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jm-wk/pubtools-pulplib/pkg/pulplib"
)

func lockNote(t *testing.T, claim pulplib.LockClaim) string {
	t.Helper()
	raw, err := json.Marshal(claim)
	require.NoError(t, err)
	return string(raw)
}

func storedLockNote(t *testing.T, client *fakeClient, repoID string) (pulplib.LockClaim, bool) {
	t.Helper()
	client.mu.Lock()
	defer client.mu.Unlock()
	notes, _ := client.repoData[repoID]["notes"].(map[string]any)
	raw, ok := notes["pulplib-lock"].(string)
	if !ok {
		return pulplib.LockClaim{}, false
	}
	var claim pulplib.LockClaim
	require.NoError(t, json.Unmarshal([]byte(raw), &claim))
	return claim, true
}

func lockForRepo(t *testing.T, sess *pulplib.Session, repoID, lockContext string, duration time.Duration) *pulplib.RepoLock {
	t.Helper()
	repo, err := sess.DecodeRepository(yumRepoData(repoID))
	require.NoError(t, err)
	lock, err := repo.Base().Lock(lockContext, duration)
	require.NoError(t, err)
	return lock
}

func TestLockAcquireAndRelease(t *testing.T) {
	client := newFakeClient()
	client.addRepo(yumRepoData("my-repo"))
	sess := newTestSession(t, client)
	lock := lockForRepo(t, sess, "my-repo", "publishing updates", time.Hour)

	ctx := context.Background()
	require.NoError(t, lock.Acquire(ctx))

	claim, ok := storedLockNote(t, client, "my-repo")
	require.True(t, ok)
	assert.NotEmpty(t, claim.ID)
	assert.Equal(t, "publishing updates", claim.Context)
	assert.Equal(t, int64(3600), claim.ValidSeconds)

	require.NoError(t, lock.Release(ctx))
	_, ok = storedLockNote(t, client, "my-repo")
	assert.False(t, ok, "lock note should be cleared after release")
}

func TestLockAcquireHeldByAnother(t *testing.T) {
	other := pulplib.LockClaim{
		ID:           "other-holder",
		Context:      "long running import",
		Created:      time.Now().UTC(),
		ValidSeconds: 3600,
	}
	data := yumRepoData("my-repo")
	data["notes"].(map[string]any)["pulplib-lock"] = lockNote(t, other)

	client := newFakeClient()
	client.addRepo(data)
	sess := newTestSession(t, client)
	lock := lockForRepo(t, sess, "my-repo", "second worker", time.Minute)

	err := lock.Acquire(context.Background())
	require.ErrorIs(t, err, pulplib.ErrLocked)

	var lockedErr *pulplib.LockedError
	require.ErrorAs(t, err, &lockedErr)
	assert.Equal(t, "my-repo", lockedErr.RepoID)
	assert.Equal(t, "other-holder", lockedErr.Claim.ID)

	// The existing claim is untouched.
	claim, ok := storedLockNote(t, client, "my-repo")
	require.True(t, ok)
	assert.Equal(t, "other-holder", claim.ID)
}

func TestLockAcquireSupersedesExpiredClaim(t *testing.T) {
	stale := pulplib.LockClaim{
		ID:           "dead-process",
		Context:      "crashed job",
		Created:      time.Now().UTC().Add(-2 * time.Hour),
		ValidSeconds: 60,
	}
	data := yumRepoData("my-repo")
	data["notes"].(map[string]any)["pulplib-lock"] = lockNote(t, stale)

	client := newFakeClient()
	client.addRepo(data)
	sess := newTestSession(t, client)
	lock := lockForRepo(t, sess, "my-repo", "new work", time.Minute)

	require.NoError(t, lock.Acquire(context.Background()))

	claim, ok := storedLockNote(t, client, "my-repo")
	require.True(t, ok)
	assert.NotEqual(t, "dead-process", claim.ID)
	assert.Equal(t, "new work", claim.Context)
}

func TestLockAcquireSubSecondDurationStaysExpirable(t *testing.T) {
	client := newFakeClient()
	client.addRepo(yumRepoData("my-repo"))
	sess := newTestSession(t, client)
	lock := lockForRepo(t, sess, "my-repo", "quick work", 500*time.Millisecond)

	require.NoError(t, lock.Acquire(context.Background()))

	// A short non-zero duration rounds up to a full second rather than
	// truncating into a never-expiring claim.
	claim, ok := storedLockNote(t, client, "my-repo")
	require.True(t, ok)
	assert.Equal(t, int64(1), claim.ValidSeconds)
	assert.True(t, claim.Expired(claim.Created.Add(2*time.Second)))
}

func TestLockClaimWithoutDurationNeverExpires(t *testing.T) {
	claim := pulplib.LockClaim{
		ID:      "immortal",
		Created: time.Now().UTC().Add(-24 * 365 * time.Hour),
	}
	assert.False(t, claim.Expired(time.Now().UTC()))
}

func TestLockReleaseWhenSuperseded(t *testing.T) {
	client := newFakeClient()
	client.addRepo(yumRepoData("my-repo"))
	sess := newTestSession(t, client)
	lock := lockForRepo(t, sess, "my-repo", "work", time.Minute)

	ctx := context.Background()
	require.NoError(t, lock.Acquire(ctx))

	// Someone else forcibly replaced the claim while we worked.
	usurper := pulplib.LockClaim{
		ID:           "usurper",
		Context:      "forced",
		Created:      time.Now().UTC(),
		ValidSeconds: 3600,
	}
	_, err := client.UpdateRepositoryNotes(ctx, "my-repo",
		map[string]any{"pulplib-lock": lockNote(t, usurper)}).Result(ctx)
	require.NoError(t, err)

	// Release succeeds without touching the usurper's claim.
	require.NoError(t, lock.Release(ctx))
	claim, ok := storedLockNote(t, client, "my-repo")
	require.True(t, ok)
	assert.Equal(t, "usurper", claim.ID)
}

func TestLockReleaseWithoutAcquireIsNoop(t *testing.T) {
	client := newFakeClient()
	client.addRepo(yumRepoData("my-repo"))
	sess := newTestSession(t, client)
	lock := lockForRepo(t, sess, "my-repo", "work", time.Minute)

	assert.NoError(t, lock.Release(context.Background()))
}

func TestLockDo(t *testing.T) {
	t.Run("releases after success", func(t *testing.T) {
		client := newFakeClient()
		client.addRepo(yumRepoData("my-repo"))
		sess := newTestSession(t, client)
		lock := lockForRepo(t, sess, "my-repo", "work", time.Minute)

		var lockedDuringFn bool
		err := lock.Do(context.Background(), func(ctx context.Context) error {
			_, lockedDuringFn = storedLockNote(t, client, "my-repo")
			return nil
		})
		require.NoError(t, err)
		assert.True(t, lockedDuringFn)

		_, held := storedLockNote(t, client, "my-repo")
		assert.False(t, held)
	})

	t.Run("releases after failure and keeps the primary error", func(t *testing.T) {
		client := newFakeClient()
		client.addRepo(yumRepoData("my-repo"))
		sess := newTestSession(t, client)
		lock := lockForRepo(t, sess, "my-repo", "work", time.Minute)

		fnErr := errors.New("work failed")
		err := lock.Do(context.Background(), func(ctx context.Context) error {
			return fnErr
		})
		assert.ErrorIs(t, err, fnErr)

		_, held := storedLockNote(t, client, "my-repo")
		assert.False(t, held)
	})

	t.Run("does not run fn when acquisition fails", func(t *testing.T) {
		data := yumRepoData("my-repo")
		data["notes"].(map[string]any)["pulplib-lock"] = lockNote(t, pulplib.LockClaim{
			ID:           "other",
			Created:      time.Now().UTC(),
			ValidSeconds: 3600,
		})
		client := newFakeClient()
		client.addRepo(data)
		sess := newTestSession(t, client)
		lock := lockForRepo(t, sess, "my-repo", "work", time.Minute)

		ran := false
		err := lock.Do(context.Background(), func(ctx context.Context) error {
			ran = true
			return nil
		})
		assert.ErrorIs(t, err, pulplib.ErrLocked)
		assert.False(t, ran)
	})
}
