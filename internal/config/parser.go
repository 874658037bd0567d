package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/orthybt/orthy/internal/theme"
)

// Parse reads RC-format configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	// Context for parsing
	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if strings.HasPrefix(currentSection, "theme.") {
				currentTheme = cfg.theme(strings.TrimPrefix(currentSection, "theme."))
			}
			continue
		}

		// Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}

		switch {
		case currentTheme != nil:
			if err := theme.SetField(currentTheme, key, value); err != nil {
				return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
			}
		case currentSection == "notify":
			if err := setNotifyField(&cfg.Notify, key, value); err != nil {
				return nil, fmt.Errorf("error in section [notify]: %w", err)
			}
		case currentSection == "":
			if err := setRootField(cfg, key, value); err != nil {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
		}
	}

	return cfg, scanner.Err()
}

func (c *Config) theme(name string) *theme.Theme {
	// Start with defaults so missing keys are fine
	t := theme.Default()
	t.Name = name
	c.Themes[name] = t
	return t
}

func setRootField(cfg *Config, key, value string) error {
	float := func(dst *float64) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
		*dst = v
		return nil
	}
	integer := func(dst *int) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
		*dst = v
		return nil
	}
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "default_transparency":
		return float(&cfg.DefaultTransparency)
	case "min_transparency":
		return float(&cfg.MinTransparency)
	case "zoom_step":
		return float(&cfg.ZoomStep)
	case "fine_zoom_step":
		return float(&cfg.FineZoomStep)
	case "wheel_step":
		return float(&cfg.WheelStep)
	case "rotate_sensitivity":
		return float(&cfg.RotateSensitivity)
	case "fine_rotate_step":
		return float(&cfg.RotateStep)
	case "nudge_step":
		return float(&cfg.NudgeStep)
	case "reference_dx":
		return float(&cfg.ReferenceDX)
	case "reference_dy":
		return float(&cfg.ReferenceDY)
	case "svg_width":
		return integer(&cfg.SVGWidth)
	case "max_dimension":
		return integer(&cfg.MaxDimension)
	case "rotate_modifier":
		cfg.RotateModifier = value
	case "undo":
		cfg.Undo = value
	case "duplicates":
		cfg.Duplicates = value
	case "click_select":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for key %s: %w", key, err)
		}
		cfg.ClickSelect = b
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "warnings":
		n.Warnings = b
	case "errors":
		n.Errors = b
	case "load":
		n.Load = b
	case "copy":
		n.Copy = b
	}
	return nil
}

// tomlFile mirrors Config with theme tables as plain strings so colours can
// go through the same field setter as the RC format.
type tomlFile struct {
	Config
	Themes map[string]map[string]string `toml:"themes"`
}

// ParseTOML reads TOML configuration. Themes live under [themes.<name>].
func ParseTOML(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	file := tomlFile{Config: *New()}
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	cfg := file.Config
	cfg.Themes = make(map[string]*theme.Theme)
	for name, fields := range file.Themes {
		t := cfg.theme(name)
		for k, v := range fields {
			if err := theme.SetField(t, k, v); err != nil {
				return nil, fmt.Errorf("error in [themes.%s]: %w", name, err)
			}
		}
	}
	return &cfg, nil
}
