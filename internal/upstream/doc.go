// Package upstream retrieves and decodes the StudioRack plugin registry.
//
// A run reads either the unified document, where plugin kinds are inferred
// from tags, or the legacy pair of effects/instruments documents, where the
// endpoint decides the kind. Documents come from an http(s) base URL or from a
// local directory. Every document is checked against the embedded upstream
// schema before it is decoded; any failure is reported as a *FetchError and
// is fatal to the run.
package upstream
