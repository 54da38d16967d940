package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// SettingsEnvPrefix selects env vars overlaid on the preset settings:
// UNIFOLD_SETTINGS__MARKER__TEXT=x sets settings.marker.text.
const SettingsEnvPrefix = "UNIFOLD_SETTINGS__"

// LoadSettings reads the settings block of a preset file (if present) and
// overlays matching env vars.
func LoadSettings(path string) (map[string]any, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(SettingsEnvPrefix, "__", settingsKey), nil); err != nil {
		return nil, err
	}

	return k.Cut("settings").Raw(), nil
}

func settingsKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, SettingsEnvPrefix))
	if key == "" {
		return ""
	}
	return "settings__" + key
}
