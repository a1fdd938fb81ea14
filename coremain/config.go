package coremain

import "github.com/pmkol/fwdlist/mlog"

type Config struct {
	Log     mlog.LogConfig `yaml:"log"`
	Include []string       `yaml:"include"`
	API     APIConfig      `yaml:"api"`

	// Scripts are paths of script files to run.
	Scripts []string `yaml:"scripts"`

	// Watch keeps running and re-runs a script whenever its file changes.
	Watch bool `yaml:"watch"`
}

type APIConfig struct {
	HTTP string `yaml:"http"`
}
