package pulplib

import (
	"fmt"
	"strings"
)

// Field describes one attribute of an entity of type T: its local name, the
// dotted remote path it maps to, whether it may be included in partial-update
// payloads, and the converter pair between remote and local representations.
//
// Get reports the current local value and whether it is set at all; a field
// whose value is not set is skipped during Encode (never sent as null). Set
// assigns a decoded local value. ToLocal and ToRemote must round-trip for all
// valid values except where a field is documented as lossy.
type Field[T any] struct {
	Name    string
	Path    string
	Mutable bool

	// Default is assigned through Set when the remote path is absent during
	// decode. A nil Default leaves the field untouched.
	Default any

	ToLocal  func(raw any) (any, error)
	ToRemote func(value any) (any, error)

	Get func(*T) (value any, ok bool)
	Set func(*T, any) error
}

// FieldSet is the codec for one entity type, built from its field descriptors.
type FieldSet[T any] struct {
	fields []Field[T]
}

// NewFieldSet validates the descriptors and returns a codec. Two descriptors
// colliding on a remote path (identical paths, or one path passing through
// another's leaf) is a ConfigurationError.
func NewFieldSet[T any](fields ...Field[T]) (*FieldSet[T], error) {
	probe := RemoteData{}
	for _, f := range fields {
		if f.Path == "" {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("field %s has no remote path", f.Name)}
		}
		if err := put(probe, f.Path, true); err != nil {
			return nil, &ConfigurationError{
				Reason: fmt.Sprintf("field %s collides on remote path: %v", f.Name, err),
			}
		}
	}
	return &FieldSet[T]{fields: fields}, nil
}

// mustFieldSet is used for the package's own entity codecs, which are checked
// once at startup.
func mustFieldSet[T any](fields ...Field[T]) *FieldSet[T] {
	fs, err := NewFieldSet(fields...)
	if err != nil {
		panic(err)
	}
	return fs
}

// Decode populates entity from remote data. Absent paths keep the field unset
// (or apply its default); conversion failures surface as InvalidDataError.
func (fs *FieldSet[T]) Decode(data RemoteData, entity *T) error {
	for _, f := range fs.fields {
		raw := lookup(data, f.Path)
		if raw == Absent {
			if f.Default != nil {
				if err := f.Set(entity, f.Default); err != nil {
					return &InvalidDataError{Field: f.Name, Path: f.Path, Err: err}
				}
			}
			continue
		}
		value := raw
		if f.ToLocal != nil {
			var err error
			value, err = f.ToLocal(raw)
			if err != nil {
				return &InvalidDataError{Field: f.Name, Path: f.Path, Err: err}
			}
		}
		if err := f.Set(entity, value); err != nil {
			return &InvalidDataError{Field: f.Name, Path: f.Path, Err: err}
		}
	}
	return nil
}

// Encode serializes the set fields of entity back into remote form. Unset
// fields are omitted entirely.
func (fs *FieldSet[T]) Encode(entity *T) (RemoteData, error) {
	out := RemoteData{}
	for _, f := range fs.fields {
		value, ok := f.Get(entity)
		if !ok {
			continue
		}
		raw := value
		if f.ToRemote != nil {
			var err error
			raw, err = f.ToRemote(value)
			if err != nil {
				return nil, &InvalidDataError{Field: f.Name, Path: f.Path, Err: err}
			}
		}
		if err := put(out, f.Path, raw); err != nil {
			// NewFieldSet rules out collisions, so this indicates a converter
			// writing through an existing leaf.
			return nil, &ConfigurationError{Reason: err.Error()}
		}
	}
	return out, nil
}

// MutableNotes returns the "notes" subtree holding only the set values of
// mutable note fields. This is the exact payload for partial updates; no
// other field is ever included.
func (fs *FieldSet[T]) MutableNotes(entity *T) (map[string]any, error) {
	out := RemoteData{}
	for _, f := range fs.fields {
		if !f.Mutable || !strings.HasPrefix(f.Path, "notes.") {
			continue
		}
		value, ok := f.Get(entity)
		if !ok {
			continue
		}
		raw := value
		if f.ToRemote != nil {
			var err error
			raw, err = f.ToRemote(value)
			if err != nil {
				return nil, &InvalidDataError{Field: f.Name, Path: f.Path, Err: err}
			}
		}
		if err := put(out, f.Path, raw); err != nil {
			return nil, &ConfigurationError{Reason: err.Error()}
		}
	}
	notes, _ := out["notes"].(map[string]any)
	if notes == nil {
		notes = map[string]any{}
	}
	return notes, nil
}
