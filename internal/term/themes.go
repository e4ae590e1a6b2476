package term

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// STACKAREA_THEME_DIR can point to one or more additional theme directories
// (path-list separated, e.g. ":" on unix, ";" on Windows).
const themeDirEnvVar = "STACKAREA_THEME_DIR"

// Theme is the color token set used to draw the chart chrome. Band colors
// come from the chart's palette, not from the theme.
//
// External themes are JSON files with matching snake_case fields,
// for example: {"name":"Paper","text":"#111111",...}.
type Theme struct {
	Name string `json:"name"`

	Text    lipgloss.Color `json:"text"`
	Subtext lipgloss.Color `json:"subtext"`
	Dim     lipgloss.Color `json:"dim"`
	Accent  lipgloss.Color `json:"accent"`
	Axis    lipgloss.Color `json:"axis"`
	Outline lipgloss.Color `json:"outline"`
	Scanner lipgloss.Color `json:"scanner"`
	Fill    lipgloss.Color `json:"fill"` // used when the palette has no color for a band
}

var (
	themeMu        sync.RWMutex
	themes         = builtinThemes()
	activeThemeIdx int
)

func builtinThemes() []Theme {
	return []Theme{
		{
			Name: "Gruvbox",
			Text: "#EBDBB2", Subtext: "#D5C4A1", Dim: "#665C54", Accent: "#D3869B",
			Axis: "#FABD2F", Outline: "#808080", Scanner: "#FB4934", Fill: "#83A598",
		},
		{
			Name: "Catppuccin Mocha",
			Text: "#CDD6F4", Subtext: "#A6ADC8", Dim: "#585B70", Accent: "#CBA6F7",
			Axis: "#F9E2AF", Outline: "#808080", Scanner: "#F38BA8", Fill: "#89B4FA",
		},
		{
			Name: "Nord",
			Text: "#ECEFF4", Subtext: "#D8DEE9", Dim: "#4C566A", Accent: "#B48EAD",
			Axis: "#EBCB8B", Outline: "#808080", Scanner: "#BF616A", Fill: "#81A1C1",
		},
		{
			Name: "Tokyo Night",
			Text: "#C0CAF5", Subtext: "#A9B1D6", Dim: "#565F89", Accent: "#BB9AF7",
			Axis: "#E0AF68", Outline: "#808080", Scanner: "#F7768E", Fill: "#7AA2F7",
		},
	}
}

func trimColor(c lipgloss.Color) lipgloss.Color {
	return lipgloss.Color(strings.TrimSpace(string(c)))
}

func normalizeTheme(in Theme) Theme {
	in.Name = strings.TrimSpace(in.Name)
	in.Text = trimColor(in.Text)
	in.Subtext = trimColor(in.Subtext)
	in.Dim = trimColor(in.Dim)
	in.Accent = trimColor(in.Accent)
	in.Axis = trimColor(in.Axis)
	in.Outline = trimColor(in.Outline)
	in.Scanner = trimColor(in.Scanner)
	in.Fill = trimColor(in.Fill)
	return in
}

func (t Theme) validate() error {
	if t.Name == "" {
		return fmt.Errorf("missing required field: name")
	}
	fields := []struct {
		name  string
		value lipgloss.Color
	}{
		{"text", t.Text}, {"subtext", t.Subtext}, {"dim", t.Dim}, {"accent", t.Accent},
		{"axis", t.Axis}, {"outline", t.Outline}, {"scanner", t.Scanner}, {"fill", t.Fill},
	}
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required color fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func themeSearchDirs(configDir string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}

	if strings.TrimSpace(configDir) != "" {
		add(filepath.Join(configDir, "themes"))
	}
	if env := os.Getenv(themeDirEnvVar); env != "" {
		for _, part := range strings.Split(env, string(os.PathListSeparator)) {
			add(part)
		}
	}
	return out
}

func loadThemesFromDir(dir string) ([]Theme, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read theme dir %s: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	var loaded []Theme
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", path, readErr))
			continue
		}

		var t Theme
		if unmarshalErr := json.Unmarshal(data, &t); unmarshalErr != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", path, unmarshalErr))
			continue
		}

		t = normalizeTheme(t)
		if validateErr := t.validate(); validateErr != nil {
			errs = append(errs, fmt.Errorf("validate %s: %w", path, validateErr))
			continue
		}
		loaded = append(loaded, t)
	}

	return loaded, errors.Join(errs...)
}

// mergeThemes overlays extra onto base; a theme with a known name replaces it.
func mergeThemes(base, extra []Theme) []Theme {
	if len(extra) == 0 {
		return base
	}
	merged := append([]Theme(nil), base...)
	indexByName := make(map[string]int, len(merged))
	for i, t := range merged {
		indexByName[strings.ToLower(t.Name)] = i
	}
	for _, t := range extra {
		k := strings.ToLower(t.Name)
		if i, ok := indexByName[k]; ok {
			merged[i] = t
			continue
		}
		indexByName[k] = len(merged)
		merged = append(merged, t)
	}
	return merged
}

func setActiveThemeByNameLocked(name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return false
	}
	for i, t := range themes {
		if strings.ToLower(t.Name) == needle {
			activeThemeIdx = i
			return true
		}
	}
	return false
}

// LoadThemes reloads the catalog from built-ins plus JSON files found in
// <configDir>/themes and in every STACKAREA_THEME_DIR entry. Invalid files are
// skipped and reported in the aggregated error.
func LoadThemes(configDir string) error {
	themeMu.Lock()
	defer themeMu.Unlock()

	currentName := themes[activeThemeIdx].Name

	next := builtinThemes()
	var errs []error
	for _, dir := range themeSearchDirs(configDir) {
		loaded, err := loadThemesFromDir(dir)
		if err != nil {
			errs = append(errs, err)
		}
		next = mergeThemes(next, loaded)
	}

	themes = next
	if !setActiveThemeByNameLocked(currentName) {
		activeThemeIdx = 0
	}
	return errors.Join(errs...)
}

func ActiveTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return themes[activeThemeIdx]
}

// CycleTheme activates the next theme and returns its name.
func CycleTheme() string {
	themeMu.Lock()
	defer themeMu.Unlock()
	activeThemeIdx = (activeThemeIdx + 1) % len(themes)
	return themes[activeThemeIdx].Name
}

func SetThemeByName(name string) bool {
	themeMu.Lock()
	defer themeMu.Unlock()
	return setActiveThemeByNameLocked(name)
}
