package pulplib_test

import (
	"context"
	"io"
	"sync"

	"github.com/jm-wk/pubtools-pulplib/pkg/pulplib"
	"github.com/jm-wk/pubtools-pulplib/pkg/pulplib/futures"
)

// fakeClient is the in-test transport double. It records every call and
// returns canned task results; repository state lives in raw remote form so
// note updates behave like the real service.
type fakeClient struct {
	mu sync.Mutex

	repoData map[string]pulplib.RemoteData

	// tasks returned by publish/sync/unassociate/delete calls.
	tasks []pulplib.Task

	// importTasks returned inside ImportResult.
	importTasks []pulplib.Task

	publishErr      error
	uploadErr       error
	importErr       error
	deleteUploadErr error

	publishes    []publishCall
	syncs        []syncCall
	unassociates []unassociateCall
	searches     []searchCall

	uploadRequests []string
	uploadBytes    []uploadBytesCall
	imports        []importCall

	// deletedUploads receives one upload ID per DeleteUpload call, letting
	// tests wait for the fire-and-forget cleanup step.
	deletedUploads chan string
}

type publishCall struct {
	repoID  string
	targets []pulplib.PublishTarget
}

type syncCall struct {
	repoID  string
	payload map[string]any
}

type unassociateCall struct {
	repoID   string
	criteria *pulplib.Criteria
}

type searchCall struct {
	repoID   string
	criteria *pulplib.Criteria
}

type uploadBytesCall struct {
	uploadID string
	name     string
}

type importCall struct {
	repoID       string
	uploadID     string
	typeID       string
	unitKey      map[string]any
	unitMetadata map[string]any
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		repoData:       map[string]pulplib.RemoteData{},
		tasks:          []pulplib.Task{{ID: "task-1", State: pulplib.TaskStateFinished}},
		importTasks:    []pulplib.Task{{ID: "import-task-1", State: pulplib.TaskStateFinished}},
		deletedUploads: make(chan string, 8),
	}
}

func (c *fakeClient) addRepo(data pulplib.RemoteData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repoData[data["id"].(string)] = data
}

func (c *fakeClient) GetRepository(ctx context.Context, id string) *futures.Future[*pulplib.Repository] {
	c.mu.Lock()
	data, ok := c.repoData[id]
	c.mu.Unlock()
	if !ok {
		return futures.Failed[*pulplib.Repository](errRepoNotFound(id))
	}
	repo, err := pulplib.DecodeRepository(data)
	if err != nil {
		return futures.Failed[*pulplib.Repository](err)
	}
	return futures.Resolved(repo.Base())
}

func (c *fakeClient) UpdateRepositoryNotes(ctx context.Context, repoID string, notes map[string]any) *futures.Future[*pulplib.Repository] {
	c.mu.Lock()
	data, ok := c.repoData[repoID]
	if ok {
		existing, _ := data["notes"].(map[string]any)
		if existing == nil {
			existing = map[string]any{}
			data["notes"] = existing
		}
		for key, value := range notes {
			if value == nil {
				delete(existing, key)
				continue
			}
			existing[key] = value
		}
	}
	c.mu.Unlock()
	if !ok {
		return futures.Failed[*pulplib.Repository](errRepoNotFound(repoID))
	}
	return c.GetRepository(ctx, repoID)
}

func (c *fakeClient) DeleteRepository(ctx context.Context, repoID string) *futures.Future[[]pulplib.Task] {
	c.mu.Lock()
	delete(c.repoData, repoID)
	tasks := c.tasks
	c.mu.Unlock()
	return futures.Resolved(tasks)
}

func (c *fakeClient) PublishRepository(ctx context.Context, repo *pulplib.Repository, targets []pulplib.PublishTarget) *futures.Future[[]pulplib.Task] {
	c.mu.Lock()
	c.publishes = append(c.publishes, publishCall{repoID: repo.ID, targets: targets})
	err := c.publishErr
	tasks := c.tasks
	c.mu.Unlock()
	if err != nil {
		return futures.Failed[[]pulplib.Task](err)
	}
	return futures.Resolved(tasks)
}

func (c *fakeClient) SyncRepository(ctx context.Context, repoID string, payload map[string]any) *futures.Future[[]pulplib.Task] {
	c.mu.Lock()
	c.syncs = append(c.syncs, syncCall{repoID: repoID, payload: payload})
	tasks := c.tasks
	c.mu.Unlock()
	return futures.Resolved(tasks)
}

func (c *fakeClient) UnassociateContent(ctx context.Context, repoID string, criteria *pulplib.Criteria) *futures.Future[[]pulplib.Task] {
	c.mu.Lock()
	c.unassociates = append(c.unassociates, unassociateCall{repoID: repoID, criteria: criteria})
	tasks := c.tasks
	c.mu.Unlock()
	return futures.Resolved(tasks)
}

func (c *fakeClient) SearchRepoUnits(ctx context.Context, repoID string, criteria *pulplib.Criteria) *futures.Future[*pulplib.Page] {
	c.mu.Lock()
	c.searches = append(c.searches, searchCall{repoID: repoID, criteria: criteria})
	c.mu.Unlock()
	return futures.Resolved(&pulplib.Page{})
}

func (c *fakeClient) RequestUpload(ctx context.Context, name string) *futures.Future[pulplib.UploadRequest] {
	c.mu.Lock()
	c.uploadRequests = append(c.uploadRequests, name)
	c.mu.Unlock()
	return futures.Resolved(pulplib.UploadRequest{UploadID: "upload-1"})
}

func (c *fakeClient) UploadBytes(ctx context.Context, uploadID string, source io.Reader, name string) *futures.Future[*pulplib.UploadedFile] {
	c.mu.Lock()
	c.uploadBytes = append(c.uploadBytes, uploadBytesCall{uploadID: uploadID, name: name})
	err := c.uploadErr
	c.mu.Unlock()
	if err != nil {
		return futures.Failed[*pulplib.UploadedFile](err)
	}
	return futures.Go(func() (*pulplib.UploadedFile, error) {
		content, err := io.ReadAll(source)
		if err != nil {
			return nil, err
		}
		return &pulplib.UploadedFile{Size: int64(len(content)), Checksum: "fake-checksum"}, nil
	})
}

func (c *fakeClient) ImportUnit(ctx context.Context, repoID, uploadID, typeID string, unitKey, unitMetadata map[string]any) *futures.Future[pulplib.ImportResult] {
	c.mu.Lock()
	c.imports = append(c.imports, importCall{
		repoID:       repoID,
		uploadID:     uploadID,
		typeID:       typeID,
		unitKey:      unitKey,
		unitMetadata: unitMetadata,
	})
	err := c.importErr
	tasks := c.importTasks
	c.mu.Unlock()
	if err != nil {
		return futures.Failed[pulplib.ImportResult](err)
	}
	return futures.Resolved(pulplib.ImportResult{Tasks: tasks})
}

func (c *fakeClient) DeleteUpload(ctx context.Context, uploadID, name string) *futures.Future[struct{}] {
	c.mu.Lock()
	err := c.deleteUploadErr
	c.mu.Unlock()
	c.deletedUploads <- uploadID
	if err != nil {
		return futures.Failed[struct{}](err)
	}
	return futures.Resolved(struct{}{})
}

type errRepoNotFound string

func (e errRepoNotFound) Error() string {
	return "repository not found: " + string(e)
}
