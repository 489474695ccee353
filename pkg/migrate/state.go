package migrate

import (
	"time"

	"github.com/openInula/inula-sub000/pkg/persist"
)

// BuildState is persisted between runs to skip unchanged components.
// The state file is JSON unless its name ends in .yaml or .yml.
type BuildState struct {
	// LastBuild is the start time of the last run that converted every
	// file without a fatal error.
	LastBuild time.Time `json:"last_build"        yaml:"last_build"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	Files     int       `json:"files"             yaml:"files"`
}

var statePersister = persist.NewPersister[BuildState]()

// LoadState reads the build state at path. A missing file yields the
// zero state, which converts everything.
func LoadState(path string) (BuildState, error) {
	return statePersister.Load(path)
}

// SaveState writes the build state atomically.
func SaveState(path string, state BuildState) error {
	return statePersister.Save(path, &state)
}
