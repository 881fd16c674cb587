// Package record persists installation records: one entry per installed
// application, capturing every artifact the installer created so later
// runs can report, replace or remove it.
package record
