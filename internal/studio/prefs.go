package studio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"jewelshot/internal/domain"
)

// Prefs are the studio settings kept between runs.
type Prefs struct {
	Email     string `yaml:"email,omitempty"`
	Placement string `yaml:"placement,omitempty"`
	Style     string `yaml:"style,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty"`
	LogFile   string `yaml:"log_file,omitempty"`
}

// DefaultPrefsPath is ~/.config/jewelshot/studio.yaml or the platform
// equivalent.
func DefaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "studio.yaml"
	}
	return filepath.Join(dir, "jewelshot", "studio.yaml")
}

// LoadPrefs reads path. A missing file yields the defaults; unknown
// placement or style tags are reset to the defaults.
func LoadPrefs(path string) (Prefs, error) {
	var p Prefs
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return p.normalized(), fmt.Errorf("studio: read prefs: %w", err)
	default:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Prefs{}.normalized(), fmt.Errorf("studio: parse prefs %s: %w", path, err)
		}
	}
	return p.normalized(), nil
}

// SavePrefs writes p to path, creating the directory.
func SavePrefs(path string, p Prefs) error {
	data, err := yaml.Marshal(p.normalized())
	if err != nil {
		return fmt.Errorf("studio: encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("studio: ensure prefs dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("studio: write prefs: %w", err)
	}
	return nil
}

func (p Prefs) normalized() Prefs {
	p.Email = strings.TrimSpace(p.Email)
	if placement, err := domain.ParsePlacement(p.Placement); err == nil {
		p.Placement = string(placement)
	} else {
		p.Placement = string(domain.DefaultPlacement)
	}
	if style, err := domain.ParseStyle(p.Style); err == nil {
		p.Style = string(style)
	} else {
		p.Style = string(domain.DefaultStyle)
	}
	return p
}
