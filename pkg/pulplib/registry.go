package pulplib

import "sync"

// Repo is implemented by every repository object, generic or typed. Concrete
// subtypes embed Repository, so Base gives uniform access to the shared
// fields and operations.
type Repo interface {
	Base() *Repository
}

// RepoDecodeFunc decodes raw remote data into a concrete repository type.
type RepoDecodeFunc func(data RemoteData) (Repo, error)

// repoTypeRegistry maps the notes._repo-type discriminator to a concrete
// decode function, enabling polymorphic decoding without subclass dispatch.
type repoTypeRegistry struct {
	mu    sync.RWMutex
	types map[string]RepoDecodeFunc
}

// register associates a discriminator with a decode function. The last
// registration for a discriminator wins, silently.
func (reg *repoTypeRegistry) register(discriminator string, decode RepoDecodeFunc) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.types[discriminator] = decode
}

func (reg *repoTypeRegistry) lookup(discriminator string) (RepoDecodeFunc, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	decode, ok := reg.types[discriminator]
	return decode, ok
}

// repoTypes holds the built-in repository types. Registration happens here,
// in one place, rather than relying on package-import side effects.
var repoTypes = func() *repoTypeRegistry {
	reg := &repoTypeRegistry{types: map[string]RepoDecodeFunc{}}
	reg.register(yumRepoType, decodeYumRepository)
	reg.register(fileRepoType, decodeFileRepository)
	return reg
}()

// RegisterRepoType registers decode for repositories whose notes._repo-type
// equals discriminator. Registering an already-known discriminator replaces
// the previous registration.
func RegisterRepoType(discriminator string, decode RepoDecodeFunc) {
	repoTypes.register(discriminator, decode)
}

// DecodeRepository decodes raw remote data into a repository object,
// delegating to the registered concrete type for the data's discriminator.
// Unknown or missing discriminators decode as the generic Repository. The
// returned object is detached until bound to a session.
func DecodeRepository(data RemoteData) (Repo, error) {
	if repoType, ok := lookup(data, "notes._repo-type").(string); ok {
		if decode, found := repoTypes.lookup(repoType); found {
			return decode(data)
		}
	}

	repo := &Repository{}
	if err := decodeRepositoryBase(data, repo); err != nil {
		return nil, err
	}
	return repo, nil
}
