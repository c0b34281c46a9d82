// Package pulplib provides a typed client-side model for a Pulp-style
// content-repository service, together with the orchestration of multi-step
// remote workflows (publish, sync, upload-then-import, content removal).
//
// It exposes immutable entity values (Repository, Distributor, Task, Unit)
// decoded from the service's flat dotted-path representation, a Criteria
// builder for remote searches, a cooperative repository lock, and hook points
// for extending publish behavior. The network transport itself is not part of
// this package: callers supply an implementation of the Client interface, and
// every remote operation is routed through it.
//
// Entity Attachment
//
// Entities decoded directly from raw data are detached. Operations that need
// the remote service (publish, sync, search, upload) fail with ErrDetached
// until the entity is bound to a Session via Attach. Attachment is a relation
// only; it never extends the session's lifetime.
package pulplib
