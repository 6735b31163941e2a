// Package locator finds the installed archive-extraction tool.
//
// On Windows the tool is WinRAR, found through its App Paths registration
// in the registry. Elsewhere the rar family of console tools is looked up
// on PATH. A configured path, when given, is always tried first.
package locator

import (
	"errors"
	"fmt"
	"os"
)

// ErrToolNotFound is returned when no candidate points at an existing file.
var ErrToolNotFound = errors.New("extraction tool not found")

// Source yields one candidate tool path. A Source that has nothing to
// offer returns an error; Find moves on to the next one.
type Source struct {
	// Name describes the source in diagnostics, e.g. a registry key.
	Name string

	// Lookup returns the candidate path.
	Lookup func() (string, error)
}

// Locator searches a fixed, ordered list of sources.
type Locator struct {
	sources []Source
	stat    func(string) (os.FileInfo, error)
}

// New creates a Locator for the current platform.
//
// If override is non-empty it is checked before the platform sources.
func New(override string) *Locator {
	var sources []Source
	if override != "" {
		sources = append(sources, Fixed(override))
	}
	return NewWithSources(append(sources, PlatformSources()...)...)
}

// NewWithSources creates a Locator over explicit sources.
func NewWithSources(sources ...Source) *Locator {
	return &Locator{sources: sources, stat: os.Stat}
}

// Fixed returns a Source that always yields path.
func Fixed(path string) Source {
	return Source{
		Name:   "configured path",
		Lookup: func() (string, error) { return path, nil },
	}
}

// Sources returns the sources searched, in order.
func (l *Locator) Sources() []Source {
	return l.sources
}

// Find returns the first candidate that exists as a regular file.
//
// Find only reads; it never changes the system. It returns
// ErrToolNotFound when every source comes up empty.
func (l *Locator) Find() (string, error) {
	var errs []error
	for _, src := range l.sources {
		path, err := src.Lookup()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
			continue
		}
		info, err := l.stat(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
			continue
		}
		if info.IsDir() {
			errs = append(errs, fmt.Errorf("%s: %s is a directory", src.Name, path))
			continue
		}
		return path, nil
	}
	if len(errs) == 0 {
		return "", ErrToolNotFound
	}
	return "", fmt.Errorf("%w: %w", ErrToolNotFound, errors.Join(errs...))
}
