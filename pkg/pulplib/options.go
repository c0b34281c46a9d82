package pulplib

// PublishOptions controls a repository publish. All fields are optional;
// a nil pointer means "unspecified", letting the remote server's defaults
// apply, and is distinct from an explicit false.
type PublishOptions struct {
	// Force requests publishing all data within a repository rather than
	// only changed data.
	Force *bool

	// Clean requests that formerly published content no longer present in
	// the repo is erased. Generally implies Force.
	Clean *bool

	// OriginOnly requests updating only content units / origin path on
	// remote hosts. Only relevant for rsync-capable distributors.
	OriginOnly *bool

	// RsyncExtraArgs are additional arguments for any rsync commands run
	// during publish. Ignored when rsync is not used.
	RsyncExtraArgs []string
}

func (o PublishOptions) originOnly() bool {
	return o.OriginOnly != nil && *o.OriginOnly
}

// SyncOptions controls a repository sync.
type SyncOptions struct {
	// Feed is the URL the repository's content is synchronized from.
	// Required whenever sync should not rely on server-side defaults.
	Feed string

	// SSLValidation indicates whether the feed's SSL certificate is verified
	// against the uploaded CA certificate.
	SSLValidation *bool

	// SSLCACert is the CA certificate used to validate the feed source.
	SSLCACert *string

	// SSLClientCert is the client certificate used while synchronizing.
	SSLClientCert *string

	// SSLClientKey is the private key for SSLClientCert.
	SSLClientKey *string

	// MaxSpeed is the maximum download speed in bytes/sec for the sync task.
	MaxSpeed *int64

	// Proxy settings used while synchronizing.
	ProxyHost     *string
	ProxyPort     *int
	ProxyUsername *string
	ProxyPassword *string

	// Basic auth against feed sources which support it.
	BasicAuthUsername *string
	BasicAuthPassword *string
}

// payload renders only the set options into the outgoing sync payload.
// Unset options are omitted entirely, never sent as null.
func (o SyncOptions) payload() map[string]any {
	out := map[string]any{"feed": o.Feed}
	setBool := func(key string, v *bool) {
		if v != nil {
			out[key] = *v
		}
	}
	setString := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	setBool("ssl_validation", o.SSLValidation)
	setString("ssl_ca_cert", o.SSLCACert)
	setString("ssl_client_cert", o.SSLClientCert)
	setString("ssl_client_key", o.SSLClientKey)
	if o.MaxSpeed != nil {
		out["max_speed"] = *o.MaxSpeed
	}
	setString("proxy_host", o.ProxyHost)
	if o.ProxyPort != nil {
		out["proxy_port"] = *o.ProxyPort
	}
	setString("proxy_username", o.ProxyUsername)
	setString("proxy_password", o.ProxyPassword)
	setString("basic_auth_username", o.BasicAuthUsername)
	setString("basic_auth_password", o.BasicAuthPassword)
	return out
}

// Bool returns a pointer to v, for populating optional option fields.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v, for populating optional option fields.
func String(v string) *string { return &v }

// Int returns a pointer to v, for populating optional option fields.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v, for populating optional option fields.
func Int64(v int64) *int64 { return &v }
