// Package metrics defines the Prometheus collectors used by the analyzer
// worker and the safety classifier service.
//
// All collectors are registered with the default registry via promauto at
// package init time and are exposed on the /metrics endpoint of each process.
package metrics
