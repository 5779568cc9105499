// Package analysis implements the local analysis stages the worker runs per
// media item: metadata extraction, thumbnail rendering, and caption
// generation. Every stage is a pure function of the stored file with a
// documented fallback value, so a stage failure degrades the result for one
// item without ever aborting it.
package analysis
