package pulplib

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrDetached indicates an operation requiring a live session was invoked
	// on an entity with no session reference.
	ErrDetached = errors.New("entity is not attached to a session")

	// ErrLocked indicates a repository lock could not be acquired because it
	// is held, unexpired, by another owner.
	ErrLocked = errors.New("repository is locked")

	// ErrTaskFailed indicates one or more remote tasks finished in a failed
	// terminal state.
	ErrTaskFailed = errors.New("task failed")
)

// InvalidDataError indicates a remote payload failed required-field or
// type-coercion expectations during decode.
type InvalidDataError struct {
	Field string
	Path  string
	Err   error
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("invalid remote data for field %s (path %s): %v", e.Field, e.Path, e.Err)
}

func (e *InvalidDataError) Unwrap() error {
	return e.Err
}

// ConfigurationError indicates an invalid entity or field-set configuration,
// such as a distributor with a mismatched repo_id or two field descriptors
// colliding on a remote path. It is raised at construction time, never
// silently corrected.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// LockedError indicates a repository lock is unavailable. It carries the
// current claim for inspection.
type LockedError struct {
	RepoID string
	Claim  LockClaim
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("repository %s is locked by %s (%s)", e.RepoID, e.Claim.ID, e.Claim.Context)
}

func (e *LockedError) Unwrap() error {
	return ErrLocked
}

// TaskFailedError indicates that remote tasks in a composed chain finished in
// a failed terminal state. Earlier successful steps are not rolled back.
type TaskFailedError struct {
	// Tasks holds the failed task(s) only.
	Tasks []Task
}

func (e *TaskFailedError) Error() string {
	if len(e.Tasks) == 1 {
		return fmt.Sprintf("task %s failed: %s", e.Tasks[0].ID, e.Tasks[0].ErrorSummary)
	}
	return fmt.Sprintf("%d tasks failed", len(e.Tasks))
}

func (e *TaskFailedError) Unwrap() error {
	return ErrTaskFailed
}
