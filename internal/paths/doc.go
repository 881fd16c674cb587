// Package paths resolves the filesystem locations used by installation
// steps: the bundle directory, the hicolor icon theme, desktop entry and
// wrapper locations, and the tool's own state and cache trees.
package paths
