//go:build windows

package locator

import (
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// App Paths registrations written by the WinRAR installer. The second
// one is used by 32-bit installs on 64-bit Windows.
var registryPaths = []string{
	`SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\WinRAR.exe`,
	`SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\App Paths\WinRAR.exe`,
}

// PlatformSources returns the registry lookups for WinRAR.
func PlatformSources() []Source {
	sources := make([]Source, 0, len(registryPaths))
	for _, key := range registryPaths {
		sources = append(sources, Registry(key))
	}
	return sources
}

// Registry returns a Source reading the default value of an
// HKEY_LOCAL_MACHINE key.
func Registry(key string) Source {
	return Source{
		Name: `HKLM\` + key,
		Lookup: func() (string, error) {
			k, err := registry.OpenKey(registry.LOCAL_MACHINE, key, registry.QUERY_VALUE)
			if err != nil {
				return "", err
			}
			defer k.Close()

			value, valType, err := k.GetStringValue("")
			if err != nil {
				return "", err
			}
			if valType == registry.EXPAND_SZ {
				if value, err = registry.ExpandString(value); err != nil {
					return "", err
				}
			}
			return filepath.Clean(value), nil
		},
	}
}
