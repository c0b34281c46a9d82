package pulplib

import (
	"context"
	"fmt"
	"io"

	"github.com/jm-wk/pubtools-pulplib/pkg/pulplib/futures"
)

const fileRepoType = "iso-repo"

// FileRepository is a repository holding generic file ("iso") content.
type FileRepository struct {
	Repository
}

func decodeFileRepository(data RemoteData) (Repo, error) {
	repo := &FileRepository{}
	if err := decodeRepositoryBase(data, &repo.Repository); err != nil {
		return nil, err
	}
	return repo, nil
}

// UploadFile uploads file content into this repository under the given name.
// The unit key is derived from the uploaded bytes' size and checksum once the
// byte upload completes.
func (r *FileRepository) UploadFile(ctx context.Context, source io.Reader, name string) (*futures.Future[ImportResult], error) {
	if source == nil {
		return nil, fmt.Errorf("source is required for file upload")
	}
	if name == "" {
		return nil, fmt.Errorf("name is required for file upload")
	}
	return r.uploadThenImport(ctx, source, name, "iso",
		func(uploaded *UploadedFile) map[string]any {
			return map[string]any{
				"name":     name,
				"size":     uploaded.Size,
				"checksum": uploaded.Checksum,
			}
		},
		nil,
	)
}
