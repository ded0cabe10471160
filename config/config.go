package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const fileName = "ledbridge.toml"

// Settings are the persisted user preferences. Command line flags override
// them for a run and update the saved file.
type Settings struct {
	Game string `toml:"game"`
	Port int    `toml:"port"`
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "unable to determine user config dir")
	}
	return filepath.Join(dir, "ledbridge", fileName), nil
}

// Load reads settings from path. A missing file is not an error; zero
// settings are returned and the defaults apply.
func Load(path string) (Settings, error) {
	s := Settings{}
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, errors.Wrapf(err, "unable to load settings from %s", path)
	}
	return s, nil
}

func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "unable to create settings dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create settings file %s", path)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return errors.Wrapf(err, "unable to write settings to %s", path)
	}
	return nil
}
