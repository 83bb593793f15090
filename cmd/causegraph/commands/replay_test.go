package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	sc, err := loadScenario(filepath.Join("testdata", "memory-cascade.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "memory pressure cascade", sc.Name)
	require.Len(t, sc.Events, 4)
	assert.Equal(t, "memory", sc.Events[0].Subsystem)
	assert.Equal(t, int64(10000), sc.Events[1].OffsetMs)
	assert.Equal(t, "recovery", sc.Events[3].Type)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := loadScenario(filepath.Join("testdata", "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarioRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: empty\nevents: []\n"), 0o644))

	_, err := loadScenario(path)
	assert.Error(t, err)
}
