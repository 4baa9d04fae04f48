// Command storyreel is the CLI for the script-to-video pipeline. Each
// pipeline stage is exposed as its own subcommand; run executes them all
// under a project lock.
package main
