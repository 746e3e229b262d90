// Package version exposes build metadata (semantic version, commit, build
// time) injected via ldflags, and a helper to attach a cobra `version`
// subcommand to any binary.
package version
