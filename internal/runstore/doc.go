// Package runstore persists per-scene render state in a SQLite database
// under the project log directory. The status command reads it to show
// where a run stands without re-inspecting artifacts.
package runstore
