// Package middleware provides the HTTP middleware used by the safety
// classifier service and the worker's observability endpoints: request
// logging, Prometheus metrics, and request-id propagation.
package middleware
