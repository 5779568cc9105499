// Package catalog implements the client for the external media vault catalog
// API: listing items that await analysis and writing moderation decisions
// back. Failures are classified as transient (retry on a later poll cycle)
// or permanent (the item is gone or the request was invalid).
package catalog
