package pulplib

import (
	"context"
	"io"

	"github.com/jm-wk/pubtools-pulplib/pkg/pulplib/futures"
)

// UploadRequest identifies an upload slot obtained from the remote service.
type UploadRequest struct {
	UploadID string
}

// UploadedFile describes bytes streamed into an upload slot. A nil
// *UploadedFile means the content kind has no associated payload.
type UploadedFile struct {
	Size     int64
	Checksum string
}

// ImportResult is the outcome of importing an uploaded unit into a
// repository, carrying the tasks triggered and awaited during the import.
type ImportResult struct {
	Tasks []Task
}

// PublishTarget pairs a distributor with the configuration derived for it
// from PublishOptions.
type PublishTarget struct {
	Distributor Distributor
	Config      map[string]any
}

// Client is the transport collaborator carrying out remote calls. The
// orchestration in this package sequences these calls and applies entity
// conversions; authentication, retries and wire formats are entirely the
// implementation's concern. Tasks returned from Client futures have been
// polled to a terminal state.
type Client interface {
	// GetRepository fetches one repository by ID.
	GetRepository(ctx context.Context, id string) *futures.Future[*Repository]

	// UpdateRepositoryNotes applies a partial update of the given notes to
	// the repository. A nil value for a note key clears that note.
	UpdateRepositoryNotes(ctx context.Context, repoID string, notes map[string]any) *futures.Future[*Repository]

	// DeleteRepository removes a repository.
	DeleteRepository(ctx context.Context, repoID string) *futures.Future[[]Task]

	// PublishRepository triggers the given distributors, in order, with
	// their derived configs.
	PublishRepository(ctx context.Context, repo *Repository, targets []PublishTarget) *futures.Future[[]Task]

	// SyncRepository triggers a sync with the given payload.
	SyncRepository(ctx context.Context, repoID string, payload map[string]any) *futures.Future[[]Task]

	// UnassociateContent removes content matching criteria from the
	// repository. Nil criteria removes everything.
	UnassociateContent(ctx context.Context, repoID string, criteria *Criteria) *futures.Future[[]Task]

	// SearchRepoUnits returns the first page of units matching criteria.
	SearchRepoUnits(ctx context.Context, repoID string, criteria *Criteria) *futures.Future[*Page]

	// RequestUpload obtains an upload slot.
	RequestUpload(ctx context.Context, name string) *futures.Future[UploadRequest]

	// UploadBytes streams source into the slot, returning size and checksum.
	UploadBytes(ctx context.Context, uploadID string, source io.Reader, name string) *futures.Future[*UploadedFile]

	// ImportUnit imports the uploaded unit into the repository.
	ImportUnit(ctx context.Context, repoID, uploadID, typeID string, unitKey, unitMetadata map[string]any) *futures.Future[ImportResult]

	// DeleteUpload releases an upload slot. Best-effort: callers log but
	// never propagate its failure.
	DeleteUpload(ctx context.Context, uploadID, name string) *futures.Future[struct{}]
}
