// Package desktop produces the launcher-facing artifacts of an
// installation: the desktop entry, the installed icon and the hicolor
// theme descriptor required for icon lookup.
package desktop
