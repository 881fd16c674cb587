package install

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/appdock/appdock/internal/config"
	"github.com/appdock/appdock/internal/desktop"
	"github.com/appdock/appdock/internal/logger"
)

const (
	// installTool copies a file into place with an explicit mode.
	installTool = "install"
	// symlinkTool creates the symlink form of the wrapper.
	symlinkTool = "ln"
)

// installWrapper puts a stable command for the application on the system
// path. The wrapper directory is root-owned, so the write goes through the
// privileged runner.
func (i *installer) installWrapper(ctx context.Context) error {
	wrapperPath := i.resolver.WrapperPath(i.info.Slug)

	i.warnForeignWrapper(ctx, wrapperPath)

	logger.InfoKV(ctx, "Installing command", "path", wrapperPath, "style", i.cfg.WrapperStyle)

	switch i.cfg.WrapperStyle {
	case config.WrapperStyleSymlink:
		if err := i.runner.RunPrivileged(ctx, symlinkTool, "-sfn", i.installedPath, wrapperPath); err != nil {
			return err
		}
	default:
		script, err := writeTempScript(renderWrapper(i.installedPath, i.cfg.WrapperArgs))
		if err != nil {
			return err
		}

		defer os.Remove(script)

		mode := fmt.Sprintf("0%o", config.ExecutablePermissions)
		if err = i.runner.RunPrivileged(ctx, installTool, "-m", mode, script, wrapperPath); err != nil {
			return err
		}
	}

	i.wrapperPath = wrapperPath

	return nil
}

// warnForeignWrapper flags an existing command at the wrapper path that
// does not point at this application. It is overwritten either way.
func (i *installer) warnForeignWrapper(ctx context.Context, wrapperPath string) {
	fileInfo, err := os.Lstat(wrapperPath)
	if err != nil {
		return
	}

	if fileInfo.Mode()&os.ModeSymlink != 0 {
		if dest, err := os.Readlink(wrapperPath); err == nil && dest == i.installedPath {
			return
		}
	} else {
		if content, err := os.ReadFile(wrapperPath); err == nil &&
			strings.Contains(string(content), i.installedPath) {
			return
		}
	}

	logger.Warnf(ctx, "Replacing existing command %q that does not belong to %s",
		wrapperPath, i.info.Name)
}

// renderWrapper produces a shell script that launches the bundle with the
// configured default arguments, passing operator arguments through.
func renderWrapper(bundlePath string, args []string) string {
	var builder strings.Builder

	builder.WriteString("#!/bin/sh\n")
	builder.WriteString("exec ")
	builder.WriteString(shellQuote(bundlePath))

	for _, arg := range args {
		builder.WriteString(" ")
		builder.WriteString(shellQuote(arg))
	}

	builder.WriteString(" \"$@\"\n")

	return builder.String()
}

// shellQuote wraps a value in single quotes when it contains characters
// the shell would interpret.
func shellQuote(value string) string {
	if value != "" && !strings.ContainsAny(value, " \t\n'\"\\$`&;()<>|*?[]{}~#") {
		return value
	}

	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// writeTempScript stages wrapper contents in a temporary file the
// privileged copy reads from.
func writeTempScript(content string) (string, error) {
	file, err := os.CreateTemp("", "wrapper-*.sh")
	if err != nil {
		return "", fmt.Errorf("stage wrapper script: %w", err)
	}

	if _, err = file.WriteString(content); err != nil {
		file.Close()
		os.Remove(file.Name())

		return "", fmt.Errorf("stage wrapper script: %w", err)
	}

	if err = file.Close(); err != nil {
		os.Remove(file.Name())

		return "", fmt.Errorf("stage wrapper script: %w", err)
	}

	return file.Name(), nil
}

// installDesktopEntry writes the launcher descriptor pointing at the
// wrapper, so the launcher and the terminal run the application the same
// way.
func (i *installer) installDesktopEntry(ctx context.Context) error {
	entryPath := i.resolver.DesktopEntryPath(i.info.Slug)

	comment := i.cfg.Comment
	if comment == "" {
		comment = i.info.Name
		if i.info.Version != "" {
			comment += " " + i.info.Version
		}

		comment += " (portable bundle)"
	}

	entry := desktop.Entry{
		Name:       i.info.Name,
		Comment:    comment,
		Exec:       i.wrapperPath,
		Icon:       i.info.Slug,
		Categories: i.cfg.Categories,
		Terminal:   i.cfg.Terminal,
	}

	logger.InfoKV(ctx, "Writing desktop entry", "path", entryPath)

	if err := desktop.WriteEntry(entryPath, entry); err != nil {
		return err
	}

	i.entryPath = entryPath

	return nil
}
