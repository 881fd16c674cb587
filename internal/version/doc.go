// Package version exposes appdock build metadata.
//
// Variables Version, Commit, and BuildTime are injected via Go ldflags on
// release builds and default to sensible values for local ones. Short and
// Full render version strings for CLI output, and AttachCobraVersionCommand
// wires the `version` subcommand onto a root command.
package version
