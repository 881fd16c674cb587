package desktop

import (
	"fmt"
	"os"
	"path/filepath"
)

// entryTemplate is the launcher descriptor layout. Field order is fixed so
// repeated installs produce byte-identical files.
const entryTemplate = `[Desktop Entry]
Type=Application
Name=%s
Comment=%s
Exec=%s
Icon=%s
Categories=%s
Terminal=%t
`

// entryPermissions lets the desktop environment read the descriptor.
const entryPermissions = 0o644

// Entry is a launcher descriptor for an installed application.
type Entry struct {
	// Name is the caption shown in menus and launchers.
	Name string
	// Comment is the tooltip line.
	Comment string
	// Exec is the command the launcher runs, normally the wrapper path.
	Exec string
	// Icon is the theme icon name, normally the application slug.
	Icon string
	// Categories places the application in menu sections. Must be
	// semicolon-terminated.
	Categories string
	// Terminal reports whether the application needs a terminal.
	Terminal bool
}

// Render returns the descriptor file contents.
func (e Entry) Render() string {
	return fmt.Sprintf(entryTemplate,
		e.Name, e.Comment, e.Exec, e.Icon, e.Categories, e.Terminal)
}

// WriteEntry writes the descriptor to path, creating parent directories.
func WriteEntry(path string, entry Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create applications directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(entry.Render()), entryPermissions); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}

	return nil
}
