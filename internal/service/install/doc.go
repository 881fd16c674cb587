// Package install integrates a downloaded application bundle into the
// desktop: it relocates the bundle, installs an icon and a desktop entry,
// puts a stable command on the system path and records what it did.
package install
