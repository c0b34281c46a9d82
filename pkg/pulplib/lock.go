package pulplib

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// lockNoteKey is the repository note under which lock claims are recorded.
const lockNoteKey = "pulplib-lock"

// LockClaim is the server-recorded state of a repository lock: who holds it,
// why, since when, and for how long the claim stays valid.
type LockClaim struct {
	// ID uniquely identifies the holder of this claim.
	ID string `json:"id"`

	// Context is a short description of the task carried out under the lock,
	// recorded for debugging.
	Context string `json:"context"`

	// Created is the UTC acquisition time.
	Created time.Time `json:"created"`

	// ValidSeconds bounds the claim's validity. Zero means the claim never
	// expires and must be released explicitly.
	ValidSeconds int64 `json:"valid_seconds"`
}

// Expired reports whether the claim is stale at the given time. Claims with
// no duration never expire.
func (c LockClaim) Expired(now time.Time) bool {
	if c.ValidSeconds == 0 {
		return false
	}
	return now.After(c.Created.Add(time.Duration(c.ValidSeconds) * time.Second))
}

// RepoLock is a cooperative, advisory lock on one repository, recorded on the
// remote repository itself. Only lock users cooperate: the lock does not
// prevent concurrent modification through other code paths.
//
// Two processes racing to supersede the same expired claim may both believe
// they hold the lock afterwards; this race is known and accepted for an
// advisory protocol.
type RepoLock struct {
	repoID      string
	session     *Session
	lockContext string
	duration    time.Duration

	claim *LockClaim
}

// validSeconds converts a lock duration to whole seconds, rounding up so
// that a short non-zero duration never collapses to zero. Zero stays zero,
// keeping its never-expires meaning.
func validSeconds(duration time.Duration) int64 {
	if duration == 0 {
		return 0
	}
	return int64((duration + time.Second - 1) / time.Second)
}

func newRepoLock(repoID string, session *Session, lockContext string, duration time.Duration) *RepoLock {
	return &RepoLock{
		repoID:      repoID,
		session:     session,
		lockContext: lockContext,
		duration:    duration,
	}
}

// Acquire attempts to record lock ownership. If another holder's claim is
// present and unexpired, acquisition fails with LockedError; an expired claim
// is forcibly superseded.
func (l *RepoLock) Acquire(ctx context.Context) error {
	repo, err := l.session.client.GetRepository(ctx, l.repoID).Result(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if existing := repo.lockClaim; existing != nil {
		if !existing.Expired(now) {
			return &LockedError{RepoID: l.repoID, Claim: *existing}
		}
		l.session.logger.Warn("superseding expired repository lock",
			"repository", l.repoID, "holder", existing.ID, "context", existing.Context)
	}

	if l.duration == 0 {
		l.session.logger.Warn("acquiring repository lock with no duration; "+
			"it will never expire without an explicit release",
			"repository", l.repoID, "context", l.lockContext)
	}

	claim := LockClaim{
		ID:           uuid.NewString(),
		Context:      l.lockContext,
		Created:      now,
		ValidSeconds: validSeconds(l.duration),
	}
	raw, err := lockClaimJSON(claim)
	if err != nil {
		return err
	}

	notes := map[string]any{lockNoteKey: raw}
	if _, err := l.session.client.UpdateRepositoryNotes(ctx, l.repoID, notes).Result(ctx); err != nil {
		return err
	}

	l.claim = &claim
	return nil
}

// Release clears the lock if this lock still holds it. Releasing a lock
// already superseded by another holder is a no-op, not an error.
func (l *RepoLock) Release(ctx context.Context) error {
	if l.claim == nil {
		return nil
	}

	repo, err := l.session.client.GetRepository(ctx, l.repoID).Result(ctx)
	if err != nil {
		return err
	}

	current := repo.lockClaim
	if current == nil || current.ID != l.claim.ID {
		l.session.logger.Info("repository lock already superseded; skipping release",
			"repository", l.repoID, "context", l.lockContext)
		l.claim = nil
		return nil
	}

	notes := map[string]any{lockNoteKey: nil}
	if _, err := l.session.client.UpdateRepositoryNotes(ctx, l.repoID, notes).Result(ctx); err != nil {
		return err
	}

	l.claim = nil
	return nil
}

// Do runs fn while holding the lock. The lock is acquired before fn starts
// and released on every exit path, including when fn fails. Release failures
// after a successful fn are returned; after a failed fn they are logged so
// they never mask the primary error.
func (l *RepoLock) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}

	fnErr := fn(ctx)

	if err := l.Release(ctx); err != nil {
		if fnErr == nil {
			return err
		}
		l.session.logger.Warn("failed to release repository lock",
			"repository", l.repoID, "error", err)
	}
	return fnErr
}
