// Package startup handles process boot: configuration loading from the
// environment, directory checks, the startup banner, and build metadata.
package startup
