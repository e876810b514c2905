package local

import "fmt"

// Theme values accepted by SetTheme.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// Theme returns the stored preference, ThemeSystem when unset or invalid.
func (s *Store) Theme() string {
	var mode string
	if ok, err := s.Get(ThemeKey, &mode); !ok || err != nil || !validTheme(mode) {
		return ThemeSystem
	}
	return mode
}

// SetTheme stores mode.
func (s *Store) SetTheme(mode string) error {
	if !validTheme(mode) {
		return fmt.Errorf("invalid theme %q, expected system, light or dark", mode)
	}
	return s.Put(ThemeKey, mode)
}

func validTheme(mode string) bool {
	switch mode {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	}
	return false
}
