package pulplib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jm-wk/pubtools-pulplib/pkg/pulplib/futures"
)

// publishDistributors lists the distributor IDs activated when publishing a
// repository. Order matters; distributors not in this list are ignored.
var publishDistributors = []string{
	"iso_distributor",
	"yum_distributor",
	"cdn_distributor",
	"cdn_distributor_unprotected",
	"docker_web_distributor_name_cli",
}

// dockerWebDistributorID is skipped entirely when origin_only is requested.
const dockerWebDistributorID = "docker_web_distributor_name_cli"

// Repository represents a content repository on the remote service.
//
// Repositories are value objects: operations never mutate them in place but
// return handles for the remote work instead. Fields documented as mutable
// may be changed remotely via Update; everything else is immutable identity
// or metadata.
type Repository struct {
	// ID of this repository. Unique and immutable.
	ID string

	// Type is the repository type discriminator, e.g. "rpm-repo".
	Type string

	// Created is the UTC creation time, when known.
	Created *time.Time

	// Distributors belonging to this repository. Each distributor's RepoID
	// must be empty or equal to ID; anything else rejects construction.
	Distributors []Distributor

	// EngProductID is the engineering product this repository belongs to.
	EngProductID *int

	// RelativeURL is the default publish URL relative to the content root.
	// Derived from distributor config during decode; never sent on update.
	RelativeURL string

	// MutableURLs lists URLs relative to the publish root expected to change
	// at every publish.
	MutableURLs []string

	// IsTemporary is true for short-lived repositories created by tooling.
	IsTemporary bool

	// SigningKeys lists GPG signing key IDs used to sign content here.
	SigningKeys []string

	// SkipRsyncRepodata is true when publishes of this repository are
	// configured not to push repository metadata to remote hosts. Derived
	// from the cdn distributor config during decode.
	SkipRsyncRepodata bool

	// ContentSet names the content set associated with this repository.
	ContentSet string

	// Arch is the primary architecture of content in this repository.
	Arch string

	// PlatformFullVersion is a loosely defined version string. Avoid
	// depending on its semantics in new code.
	PlatformFullVersion string

	// ProductVersions lists product versions associated with this
	// repository, sorted by the component-numeric version law. Mutable.
	ProductVersions []string

	// IncludeInDownloadService reports visibility in the production download
	// service. Mutable. Nil means the note was never set remotely.
	IncludeInDownloadService *bool

	// IncludeInDownloadServicePreview reports visibility in the staging
	// download service. Mutable.
	IncludeInDownloadServicePreview *bool

	lockClaim *LockClaim
	session   *Session
}

var repositoryFields = mustFieldSet(
	Field[Repository]{
		Name: "id", Path: "id",
		ToLocal: asString,
		Get:     func(r *Repository) (any, bool) { return r.ID, r.ID != "" },
		Set:     func(r *Repository, v any) error { r.ID = v.(string); return nil },
	},
	Field[Repository]{
		Name: "type", Path: "notes._repo-type",
		ToLocal: asString,
		Get:     func(r *Repository) (any, bool) { return r.Type, r.Type != "" },
		Set:     func(r *Repository, v any) error { r.Type = v.(string); return nil },
	},
	Field[Repository]{
		Name: "created", Path: "notes.created",
		ToLocal:  timeRFC3339,
		ToRemote: rfc3339Time,
		Get: func(r *Repository) (any, bool) {
			if r.Created == nil {
				return nil, false
			}
			return *r.Created, true
		},
		Set: func(r *Repository, v any) error {
			t := v.(time.Time)
			r.Created = &t
			return nil
		},
	},
	Field[Repository]{
		Name: "distributors", Path: "distributors",
		ToLocal:  distributorList,
		ToRemote: listDistributors,
		Get:      func(r *Repository) (any, bool) { return r.Distributors, r.Distributors != nil },
		Set:      func(r *Repository, v any) error { r.Distributors = v.([]Distributor); return nil },
	},
	Field[Repository]{
		Name: "eng_product_id", Path: "notes.eng_product",
		ToLocal:  stringInt,
		ToRemote: intString,
		Get: func(r *Repository) (any, bool) {
			if r.EngProductID == nil {
				return nil, false
			}
			return *r.EngProductID, true
		},
		Set: func(r *Repository, v any) error {
			n := v.(int)
			r.EngProductID = &n
			return nil
		},
	},
	Field[Repository]{
		Name: "is_temporary", Path: "notes.pub_temp_repo",
		ToLocal: asBool,
		Get:     func(r *Repository) (any, bool) { return r.IsTemporary, true },
		Set:     func(r *Repository, v any) error { r.IsTemporary = v.(bool); return nil },
	},
	Field[Repository]{
		Name: "signing_keys", Path: "notes.signatures",
		ToLocal:  csvList,
		ToRemote: listCSV,
		Get:      func(r *Repository) (any, bool) { return r.SigningKeys, r.SigningKeys != nil },
		Set:      func(r *Repository, v any) error { r.SigningKeys = v.([]string); return nil },
	},
	Field[Repository]{
		Name: "content_set", Path: "notes.content_set",
		ToLocal: asString,
		Get:     func(r *Repository) (any, bool) { return r.ContentSet, r.ContentSet != "" },
		Set:     func(r *Repository, v any) error { r.ContentSet = v.(string); return nil },
	},
	Field[Repository]{
		Name: "arch", Path: "notes.arch",
		ToLocal: asString,
		Get:     func(r *Repository) (any, bool) { return r.Arch, r.Arch != "" },
		Set:     func(r *Repository, v any) error { r.Arch = v.(string); return nil },
	},
	Field[Repository]{
		Name: "platform_full_version", Path: "notes.platform_full_version",
		ToLocal: asString,
		Get:     func(r *Repository) (any, bool) { return r.PlatformFullVersion, r.PlatformFullVersion != "" },
		Set:     func(r *Repository, v any) error { r.PlatformFullVersion = v.(string); return nil },
	},
	Field[Repository]{
		Name: "product_versions", Path: "notes.product_versions",
		Mutable:  true,
		ToLocal:  jsonVersionList,
		ToRemote: versionListJSON,
		Get:      func(r *Repository) (any, bool) { return r.ProductVersions, r.ProductVersions != nil },
		Set:      func(r *Repository, v any) error { r.ProductVersions = v.([]string); return nil },
	},
	Field[Repository]{
		Name: "include_in_download_service", Path: "notes.include_in_download_service",
		Mutable:  true,
		ToLocal:  stringBool,
		ToRemote: boolString,
		Get: func(r *Repository) (any, bool) {
			if r.IncludeInDownloadService == nil {
				return nil, false
			}
			return *r.IncludeInDownloadService, true
		},
		Set: func(r *Repository, v any) error {
			b := v.(bool)
			r.IncludeInDownloadService = &b
			return nil
		},
	},
	Field[Repository]{
		Name: "include_in_download_service_preview", Path: "notes.include_in_download_service_preview",
		Mutable:  true,
		ToLocal:  stringBool,
		ToRemote: boolString,
		Get: func(r *Repository) (any, bool) {
			if r.IncludeInDownloadServicePreview == nil {
				return nil, false
			}
			return *r.IncludeInDownloadServicePreview, true
		},
		Set: func(r *Repository, v any) error {
			b := v.(bool)
			r.IncludeInDownloadServicePreview = &b
			return nil
		},
	},
	Field[Repository]{
		Name: "lock_claim", Path: "notes." + lockNoteKey,
		ToLocal:  jsonLockClaim,
		ToRemote: lockClaimJSON,
		Get: func(r *Repository) (any, bool) {
			if r.lockClaim == nil {
				return nil, false
			}
			return *r.lockClaim, true
		},
		Set: func(r *Repository, v any) error {
			c := v.(LockClaim)
			r.lockClaim = &c
			return nil
		},
	},
)

func distributorList(raw any) (any, error) {
	elems, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", raw)
	}
	out := make([]Distributor, len(elems))
	for i, e := range elems {
		data, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected mapping element, got %T", e)
		}
		d, err := DecodeDistributor(data)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func listDistributors(value any) (any, error) {
	dists := value.([]Distributor)
	out := make([]any, len(dists))
	for i, d := range dists {
		data, err := EncodeDistributor(d)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}

func jsonLockClaim(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", raw)
	}
	var claim LockClaim
	if err := json.Unmarshal([]byte(s), &claim); err != nil {
		return nil, err
	}
	return claim, nil
}

func lockClaimJSON(value any) (any, error) {
	b, err := json.Marshal(value.(LockClaim))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// decodeRepositoryBase decodes the generic repository fields plus the
// post-processing derived from distributor configuration.
func decodeRepositoryBase(data RemoteData, repo *Repository) error {
	if err := repositoryFields.Decode(data, repo); err != nil {
		return err
	}
	if err := repo.validateDistributors(); err != nil {
		return err
	}

	// relative_url and skip_rsync_repodata live inside distributor config
	// rather than repository notes.
	for _, dist := range repo.Distributors {
		switch dist.DistributorTypeID {
		case "yum_distributor", "iso_distributor":
			if url, ok := dist.Config["relative_url"].(string); ok {
				repo.RelativeURL = url
			}
		}
		if dist.ID == "cdn_distributor" {
			if skip, ok := dist.Config["skip_repodata"].(bool); ok {
				repo.SkipRsyncRepodata = skip
			}
		}
	}
	return nil
}

// Encode serializes the repository back into its raw remote form.
func (r *Repository) Encode() (RemoteData, error) {
	return repositoryFields.Encode(r)
}

// MutableNotes returns the partial-update payload: the notes subtree holding
// exactly the mutable note fields with a known value.
func (r *Repository) MutableNotes() (map[string]any, error) {
	return repositoryFields.MutableNotes(r)
}

// Base returns the generic repository view of any repository object.
func (r *Repository) Base() *Repository { return r }

func (r *Repository) validateDistributors() error {
	for _, dist := range r.Distributors {
		if dist.RepoID != "" && dist.RepoID != r.ID {
			return &ConfigurationError{
				Reason: fmt.Sprintf("repo_id mismatch for distributor %s: repository %s, distributor repo_id %s",
					dist.ID, r.ID, dist.RepoID),
			}
		}
	}
	return nil
}

// Attach binds this repository, and all of its distributors, to the given
// session. Attaching re-validates distributor ownership.
func (r *Repository) Attach(s *Session) error {
	if err := r.validateDistributors(); err != nil {
		return err
	}
	r.session = s
	for i := range r.Distributors {
		r.Distributors[i].session = s
	}
	return nil
}

// Attached reports whether this repository is bound to a live session.
func (r *Repository) Attached() bool {
	return r.session != nil && r.session.client != nil
}

func (r *Repository) liveSession() (*Session, error) {
	if !r.Attached() {
		return nil, ErrDetached
	}
	return r.session, nil
}

// Distributor looks up one of this repository's distributors by ID, returning
// nil when absent.
func (r *Repository) Distributor(id string) *Distributor {
	for i := range r.Distributors {
		if r.Distributors[i].ID == id {
			return &r.Distributors[i]
		}
	}
	return nil
}

// Publish publishes this repository.
//
// Every PrePublish hook is offered the chance to replace options first. The
// repository's distributors are then filtered to the known ordered set (the
// docker web distributor is skipped when options request origin_only), each
// retained distributor gets a config derived from options, and all are
// submitted as one publish request. The returned future resolves with the
// completed tasks after PostPublish hooks have run; it fails with
// TaskFailedError if any task failed.
func (r *Repository) Publish(ctx context.Context, options PublishOptions) (*futures.Future[[]Task], error) {
	sess, err := r.liveSession()
	if err != nil {
		return nil, err
	}

	options, err = sess.hooks.executePrePublish(ctx, r, options)
	if err != nil {
		return nil, err
	}

	var targets []PublishTarget
	for _, candidate := range publishDistributors {
		dist := r.Distributor(candidate)
		if dist == nil {
			continue
		}
		if dist.ID == dockerWebDistributorID && options.originOnly() {
			continue
		}
		targets = append(targets, PublishTarget{
			Distributor: *dist,
			Config:      configForDistributor(*dist, options),
		})
	}

	tasksF := sess.client.PublishRepository(ctx, r, targets)
	return futures.Map(tasksF, func(tasks []Task) ([]Task, error) {
		if err := checkTasks(tasks); err != nil {
			return nil, err
		}
		if err := sess.hooks.executePostPublish(ctx, r, options); err != nil {
			return nil, err
		}
		return tasks, nil
	}), nil
}

// configForDistributor derives the per-distributor publish configuration.
// Rsync-capable distributors accept delete, content_units_only and
// rsync_extra_args; every distributor accepts force_full.
func configForDistributor(dist Distributor, options PublishOptions) map[string]any {
	out := map[string]any{}

	if dist.IsRsync() {
		if options.Clean != nil {
			out["delete"] = *options.Clean
		}
		if options.OriginOnly != nil {
			out["content_units_only"] = *options.OriginOnly
		}
		if options.RsyncExtraArgs != nil {
			out["rsync_extra_args"] = options.RsyncExtraArgs
		}
	}

	if options.Force != nil {
		out["force_full"] = *options.Force
	}

	return out
}

// Sync synchronizes this repository from its feed. Options left unset are
// omitted from the outgoing payload so that server defaults apply.
func (r *Repository) Sync(ctx context.Context, options SyncOptions) (*futures.Future[[]Task], error) {
	sess, err := r.liveSession()
	if err != nil {
		return nil, err
	}

	tasksF := sess.client.SyncRepository(ctx, r.ID, options.payload())
	return futures.Map(tasksF, func(tasks []Task) ([]Task, error) {
		if err := checkTasks(tasks); err != nil {
			return nil, err
		}
		return tasks, nil
	}), nil
}

// SearchContent searches this repository for content matching criteria.
func (r *Repository) SearchContent(ctx context.Context, criteria *Criteria) (*futures.Future[*Page], error) {
	sess, err := r.liveSession()
	if err != nil {
		return nil, err
	}
	return sess.client.SearchRepoUnits(ctx, r.ID, criteria), nil
}

// FileContent returns the first page of file ("iso") units in this repository.
func (r *Repository) FileContent(ctx context.Context) (*futures.Future[*Page], error) {
	return r.SearchContent(ctx, WithField("content_type_id", "iso"))
}

// RpmContent returns the first page of rpm units in this repository.
func (r *Repository) RpmContent(ctx context.Context) (*futures.Future[*Page], error) {
	return r.SearchContent(ctx, WithField("content_type_id", "rpm"))
}

// RemoveContent removes content matching criteria from this repository.
//
// When criteria is nil, ALL content is removed: no filter means everything,
// not nothing. Callers restricting removal must include content type IDs in
// the criteria (see WithContentTypeIDs) for filters to be effective.
func (r *Repository) RemoveContent(ctx context.Context, criteria *Criteria) (*futures.Future[[]Task], error) {
	sess, err := r.liveSession()
	if err != nil {
		return nil, err
	}

	tasksF := sess.client.UnassociateContent(ctx, r.ID, criteria)
	return futures.Map(tasksF, func(tasks []Task) ([]Task, error) {
		if err := checkTasks(tasks); err != nil {
			return nil, err
		}
		return tasks, nil
	}), nil
}

// Update applies a partial update of this repository's mutable note fields.
// No other fields are ever sent.
func (r *Repository) Update(ctx context.Context) (*futures.Future[*Repository], error) {
	sess, err := r.liveSession()
	if err != nil {
		return nil, err
	}

	notes, err := r.MutableNotes()
	if err != nil {
		return nil, err
	}
	return sess.client.UpdateRepositoryNotes(ctx, r.ID, notes), nil
}

// Delete deletes this repository from the remote service.
func (r *Repository) Delete(ctx context.Context) (*futures.Future[[]Task], error) {
	sess, err := r.liveSession()
	if err != nil {
		return nil, err
	}

	tasksF := sess.client.DeleteRepository(ctx, r.ID)
	return futures.Map(tasksF, func(tasks []Task) ([]Task, error) {
		if err := checkTasks(tasks); err != nil {
			return nil, err
		}
		return tasks, nil
	}), nil
}

// Lock returns an advisory lock on this repository. The context string is a
// short description of the work being carried out; duration bounds how long
// other clients should consider the lock valid before superseding it. A zero
// duration means the lock never expires and relies entirely on an explicit
// release: if this process dies without releasing, the repository stays
// locked until another caller supersedes it by other means.
func (r *Repository) Lock(lockContext string, duration time.Duration) (*RepoLock, error) {
	sess, err := r.liveSession()
	if err != nil {
		return nil, err
	}
	return newRepoLock(r.ID, sess, lockContext, duration), nil
}

// unitKeyFunc derives the unit key for imported content from the upload
// descriptor. The descriptor is nil when the content kind has no payload.
type unitKeyFunc func(uploaded *UploadedFile) map[string]any

// unitMetadataFunc derives optional unit metadata from the upload descriptor.
type unitMetadataFunc func(uploaded *UploadedFile) map[string]any

// uploadThenImport chains the upload workflow: request an upload slot, stream
// bytes when source is non-nil, derive unit key and metadata from the upload
// descriptor, import, and finally release the slot best-effort. Each step
// starts only once its predecessor's result is available; the slot delete is
// fire-and-forget and its failure never fails the returned handle.
func (r *Repository) uploadThenImport(
	ctx context.Context,
	source io.Reader,
	name string,
	typeID string,
	unitKey unitKeyFunc,
	unitMetadata unitMetadataFunc,
) (*futures.Future[ImportResult], error) {
	sess, err := r.liveSession()
	if err != nil {
		return nil, err
	}

	if unitKey == nil {
		unitKey = func(*UploadedFile) map[string]any { return map[string]any{} }
	}
	if unitMetadata == nil {
		unitMetadata = func(*UploadedFile) map[string]any { return nil }
	}

	requestF := sess.client.RequestUpload(ctx, name)

	importF := futures.FlatMap(requestF, func(req UploadRequest) *futures.Future[ImportResult] {
		sess.logger.Info("uploading content",
			"name", name, "repository", r.ID, "upload_id", req.UploadID)

		var uploadedF *futures.Future[*UploadedFile]
		if source == nil {
			// Content kinds without a payload still go through the upload
			// and import APIs; the slot is complete as soon as its ID is
			// known and the descriptor stays nil.
			uploadedF = futures.Resolved[*UploadedFile](nil)
		} else {
			uploadedF = sess.client.UploadBytes(ctx, req.UploadID, source, name)
		}

		resultF := futures.FlatMap(uploadedF, func(uploaded *UploadedFile) *futures.Future[ImportResult] {
			return sess.client.ImportUnit(ctx, r.ID, req.UploadID, typeID, unitKey(uploaded), unitMetadata(uploaded))
		})

		futures.OnDone(resultF, func(ImportResult, error) {
			deleteF := sess.client.DeleteUpload(ctx, req.UploadID, name)
			futures.OnDone(deleteF, func(_ struct{}, err error) {
				if err != nil {
					sess.logger.Warn("failed to release upload slot",
						"name", name, "upload_id", req.UploadID, "error", err)
				}
			})
		})

		return resultF
	})

	return futures.Map(importF, func(result ImportResult) (ImportResult, error) {
		if err := checkTasks(result.Tasks); err != nil {
			return ImportResult{}, err
		}
		return result, nil
	}), nil
}
