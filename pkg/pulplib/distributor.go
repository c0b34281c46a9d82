package pulplib

import (
	"strings"
	"time"
)

// Distributor represents a named, typed publishing target attached to a
// repository. Distributors share their owning repository's session and
// lifetime.
type Distributor struct {
	ID                string
	DistributorTypeID string
	RepoID            string
	Config            map[string]any
	LastPublish       *time.Time

	session *Session
}

// IsRsync reports whether this distributor publishes via rsync. Rsync-capable
// distributors accept additional publish configuration (delete,
// content_units_only, rsync_extra_args).
func (d Distributor) IsRsync() bool {
	return strings.Contains(d.DistributorTypeID, "rsync")
}

var distributorFields = mustFieldSet(
	Field[Distributor]{
		Name: "id", Path: "id",
		ToLocal: asString,
		Get:     func(d *Distributor) (any, bool) { return d.ID, d.ID != "" },
		Set:     func(d *Distributor, v any) error { d.ID = v.(string); return nil },
	},
	Field[Distributor]{
		Name: "distributor_type_id", Path: "distributor_type_id",
		ToLocal: asString,
		Get:     func(d *Distributor) (any, bool) { return d.DistributorTypeID, d.DistributorTypeID != "" },
		Set:     func(d *Distributor, v any) error { d.DistributorTypeID = v.(string); return nil },
	},
	Field[Distributor]{
		Name: "repo_id", Path: "repo_id",
		ToLocal: asString,
		Get:     func(d *Distributor) (any, bool) { return d.RepoID, d.RepoID != "" },
		Set:     func(d *Distributor, v any) error { d.RepoID = v.(string); return nil },
	},
	Field[Distributor]{
		Name: "config", Path: "config",
		ToLocal: asConfigMap,
		Get:     func(d *Distributor) (any, bool) { return d.Config, d.Config != nil },
		Set:     func(d *Distributor, v any) error { d.Config = v.(map[string]any); return nil },
	},
	Field[Distributor]{
		Name: "last_publish", Path: "last_publish",
		ToLocal:  timeRFC3339,
		ToRemote: rfc3339Time,
		Get: func(d *Distributor) (any, bool) {
			if d.LastPublish == nil {
				return nil, false
			}
			return *d.LastPublish, true
		},
		Set: func(d *Distributor, v any) error {
			t := v.(time.Time)
			d.LastPublish = &t
			return nil
		},
	},
)

// DecodeDistributor builds a Distributor from raw remote data.
func DecodeDistributor(data RemoteData) (Distributor, error) {
	var d Distributor
	if err := distributorFields.Decode(data, &d); err != nil {
		return Distributor{}, err
	}
	return d, nil
}

// EncodeDistributor serializes a Distributor back into remote form.
func EncodeDistributor(d Distributor) (RemoteData, error) {
	return distributorFields.Encode(&d)
}
