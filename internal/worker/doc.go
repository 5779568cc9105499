// Package worker implements the analysis poll loop: fetch pending catalog
// items, run the analysis stages on each, and commit moderation decisions.
package worker
