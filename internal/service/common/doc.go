// Package common holds capabilities shared by several services.
//
// It provides external command execution with optional privilege elevation,
// operator confirmation prompts, process termination and filesystem
// preflight checks.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
