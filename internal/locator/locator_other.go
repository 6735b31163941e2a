//go:build !windows

package locator

import "os/exec"

// Console tools that understand WinRAR's "x" and "-p" syntax.
var toolNames = []string{"rar", "unrar", "WinRAR"}

// PlatformSources returns PATH lookups for the rar console tools.
func PlatformSources() []Source {
	sources := make([]Source, 0, len(toolNames))
	for _, name := range toolNames {
		sources = append(sources, OnPath(name))
	}
	return sources
}

// OnPath returns a Source resolving name against PATH.
func OnPath(name string) Source {
	return Source{
		Name:   "PATH:" + name,
		Lookup: func() (string, error) { return exec.LookPath(name) },
	}
}
