// Package uninstall removes an installed application and its desktop
// integration, driven by the installation record.
package uninstall
