package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"Warn", WARN, false},
		{"error", ERROR, false},
		{"fatal", FATAL, false},
		{"verbose", -1, true},
		{"", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestInitializeFallsBackToInfo(t *testing.T) {
	Initialize("nonsense")
	assert.Equal(t, INFO, currentLevel())
}

func TestWithFieldReturnsCopy(t *testing.T) {
	base := GetLogger("test")
	child := base.WithField("subsystem", "execution")

	assert.Empty(t, base.fields)
	assert.Equal(t, "execution", child.fields["subsystem"])

	grandchild := child.WithFields(Field("severity", 4), Field("subsystem", "memory"))
	assert.Equal(t, "execution", child.fields["subsystem"], "parent must not be mutated")
	assert.Equal(t, "memory", grandchild.fields["subsystem"])
	assert.Equal(t, 4, grandchild.fields["severity"])
}

func TestShouldLogRespectsLevel(t *testing.T) {
	Initialize("warn")
	defer Initialize("info")

	logger := GetLogger("test")
	assert.False(t, logger.shouldLog(DEBUG))
	assert.False(t, logger.shouldLog(INFO))
	assert.True(t, logger.shouldLog(WARN))
	assert.True(t, logger.shouldLog(ERROR))
}
