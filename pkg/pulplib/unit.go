package pulplib

import "github.com/jm-wk/pubtools-pulplib/pkg/pulplib/futures"

// Unit represents a single content unit stored in a repository.
type Unit struct {
	ContentTypeID string
	Name          string
	Version       string
	Checksum      string
	Size          int64
}

var unitFields = mustFieldSet(
	Field[Unit]{
		Name: "content_type_id", Path: "_content_type_id",
		ToLocal: asString,
		Get:     func(u *Unit) (any, bool) { return u.ContentTypeID, u.ContentTypeID != "" },
		Set:     func(u *Unit, v any) error { u.ContentTypeID = v.(string); return nil },
	},
	Field[Unit]{
		Name: "name", Path: "name",
		ToLocal: asString,
		Get:     func(u *Unit) (any, bool) { return u.Name, u.Name != "" },
		Set:     func(u *Unit, v any) error { u.Name = v.(string); return nil },
	},
	Field[Unit]{
		Name: "version", Path: "version",
		ToLocal: asString,
		Get:     func(u *Unit) (any, bool) { return u.Version, u.Version != "" },
		Set:     func(u *Unit, v any) error { u.Version = v.(string); return nil },
	},
	Field[Unit]{
		Name: "checksum", Path: "checksum",
		ToLocal: asString,
		Get:     func(u *Unit) (any, bool) { return u.Checksum, u.Checksum != "" },
		Set:     func(u *Unit, v any) error { u.Checksum = v.(string); return nil },
	},
	Field[Unit]{
		Name: "size", Path: "size",
		ToLocal: anyInt64,
		Get:     func(u *Unit) (any, bool) { return u.Size, u.Size != 0 },
		Set:     func(u *Unit, v any) error { u.Size = v.(int64); return nil },
	},
)

// DecodeUnit builds a Unit from raw remote data.
func DecodeUnit(data RemoteData) (Unit, error) {
	var u Unit
	if err := unitFields.Decode(data, &u); err != nil {
		return Unit{}, err
	}
	return u, nil
}

// Page is one page of search results. Next is nil on the final page.
type Page struct {
	Units []Unit
	Next  *futures.Future[*Page]
}
