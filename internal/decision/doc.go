// Package decision holds the pure aggregation step of the moderation
// pipeline: it combines caption, metadata, thumbnail, and safety signals
// into one moderation decision without any I/O, so the full policy is unit
// testable.
package decision
