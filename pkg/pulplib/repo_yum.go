package pulplib

import (
	"context"
	"fmt"

	"github.com/jm-wk/pubtools-pulplib/pkg/pulplib/futures"
)

const yumRepoType = "rpm-repo"

// yumMutableURLs is the default set of publish-root-relative URLs expected to
// change on every publish of a yum repository.
var yumMutableURLs = []string{"repodata/repomd.xml"}

// YumRepository is a repository holding rpm and related content.
type YumRepository struct {
	Repository
}

func decodeYumRepository(data RemoteData) (Repo, error) {
	repo := &YumRepository{}
	if err := decodeRepositoryBase(data, &repo.Repository); err != nil {
		return nil, err
	}
	if repo.MutableURLs == nil {
		repo.MutableURLs = yumMutableURLs
	}
	return repo, nil
}

// UploadErratum uploads erratum metadata into this repository. Errata carry
// no file payload: no bytes are streamed, and the unit key is derived from
// the erratum ID alone.
func (r *YumRepository) UploadErratum(ctx context.Context, erratumID string, metadata map[string]any) (*futures.Future[ImportResult], error) {
	if erratumID == "" {
		return nil, fmt.Errorf("erratum ID is required")
	}
	return r.uploadThenImport(ctx, nil, erratumID, "erratum",
		func(*UploadedFile) map[string]any {
			return map[string]any{"id": erratumID}
		},
		func(*UploadedFile) map[string]any {
			return metadata
		},
	)
}

// SrpmContent returns the first page of srpm units in this repository.
func (r *YumRepository) SrpmContent(ctx context.Context) (*futures.Future[*Page], error) {
	return r.SearchContent(ctx, WithField("content_type_id", "srpm"))
}

// ModulemdContent returns the first page of modulemd units in this
// repository.
func (r *YumRepository) ModulemdContent(ctx context.Context) (*futures.Future[*Page], error) {
	return r.SearchContent(ctx, WithField("content_type_id", "modulemd"))
}

// ModulemdDefaultsContent returns the first page of modulemd_defaults units
// in this repository.
func (r *YumRepository) ModulemdDefaultsContent(ctx context.Context) (*futures.Future[*Page], error) {
	return r.SearchContent(ctx, WithField("content_type_id", "modulemd_defaults"))
}
