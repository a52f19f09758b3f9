// Package script implements the Script Emitter of spec §4.4: it writes the
// command file that drives a single external-tool invocation.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Filename is the name of the generated script, relative to the instance's
// temp area.
const Filename = "script.txt"

// Write renders a login/force_install_dir/workshop_download_item*/quit
// script for ids into <instanceTemp>/script.txt, using LF line endings
// regardless of host platform (spec §4.4). It returns the path written.
func Write(instanceTemp, instanceDir, appID string, ids []string) (string, error) {
	var b strings.Builder
	b.WriteString("login anonymous\n")
	fmt.Fprintf(&b, "force_install_dir ./%s\n", forwardSlash(instanceDir))
	for _, id := range ids {
		fmt.Fprintf(&b, "workshop_download_item %s %s\n", appID, id)
	}
	b.WriteString("quit\n")

	path := filepath.Join(instanceTemp, Filename)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Remove deletes path, ignoring errors — the script is ephemeral and its
// absence is never a failure (spec §4.6 step 6).
func Remove(path string) {
	_ = os.Remove(path)
}

func forwardSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
