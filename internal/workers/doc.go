/*
Package workers provides utilities for determining optimal worker pool sizes
in containerized environments.

When running in containers, the number of available CPUs may be limited by
cgroup constraints. While Go 1.19+ automatically sets GOMAXPROCS based on
container CPU limits, runtime.NumCPU() still returns the host machine's CPU
count. The helpers here size pools from GOMAXPROCS instead, with an
ANALYZER_WORKERS environment override for manual tuning.
*/
package workers
