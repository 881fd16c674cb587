// Package status reports the health of installed applications: whether
// every recorded artifact is still in place and whether the bundle still
// matches its recorded digest.
package status
