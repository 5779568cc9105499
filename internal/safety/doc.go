// Package safety defines the wire types of the safety classifier protocol
// and the worker-side HTTP client for it. The verdict derivation
// (suggestive + explicit mass against a configured threshold) lives here so
// the classifier service and its callers agree on the semantics.
package safety
