package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader resolves panel themes by name or path.
type Loader struct {
	ConfigDir string
	SystemDir string
	// Inline holds themes defined in the config file.
	Inline map[string]*Theme
}

// NewLoader creates a new Loader with standard paths.
func NewLoader(inline map[string]*Theme) *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "orthy", "themes"),
		SystemDir: "/usr/share/orthy/themes",
		Inline:    inline,
	}
}

// Load finds a theme. Order: config sections, a file path, embedded
// themes, ConfigDir, SystemDir. An empty name gives the default.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if t, ok := l.Inline[name]; ok {
		return t, nil
	}
	if _, err := os.Stat(name); err == nil {
		return parseFile(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	}

	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}
	sources := []struct {
		fsys fs.FS
		path string
	}{
		{EmbeddedThemes, "defaults/" + strings.ToLower(filename)},
		{os.DirFS(l.ConfigDir), filename},
		{os.DirFS(l.SystemDir), filename},
	}
	for _, s := range sources {
		t, err := parseFile(s.fsys, s.path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return t, err
	}
	return nil, fmt.Errorf("theme '%s' not found", name)
}

func parseFile(fsys fs.FS, name string) (*Theme, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
