package setup

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/bgpack/internal/config"
)

func TestInitializeOnce(t *testing.T) {
	reset()
	defer reset()

	l1, err := Initialize(config.Log{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l1.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l1.Formatter)
	reg := Registry()
	require.NotNil(t, reg)

	l2, err := Initialize(config.Log{Level: "error"})
	require.NoError(t, err)
	assert.Same(t, l1, l2)
	assert.Same(t, reg, Registry())
	assert.Equal(t, logrus.DebugLevel, l2.GetLevel())

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "go_goroutines")
}

func TestInitializeError(t *testing.T) {
	reset()
	defer reset()

	_, err := Initialize(config.Log{Level: "loud"})
	assert.Error(t, err)
	_, err = Initialize(config.Log{Level: "info"})
	assert.Error(t, err, "the first outcome sticks")
	assert.Nil(t, Registry())
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(config.Log{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}
