package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-boids/engine/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Decode(&out)
	require.NoError(t, err, out.String())
	return cfg, nil
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	cfg, err := execute(t, "config")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg, err := execute(t, "config", "--fish", "7", "--msaa", "8", "--log-level", "debug")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Scene.FishCount)
	assert.Equal(t, uint32(8), cfg.Renderer.MSAA)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfigFileIsLoaded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aquarium.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scene]\nfish_count = 12\n\n[ui]\noverlay = \"none\"\n"), 0o600))

	cfg, err := execute(t, "--config", path, "config", "--fish", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scene.FishCount, "flags win over the file")
	assert.Equal(t, config.OverlayNone, cfg.UI.Overlay)
}

func TestInvalidOverridesAreRejected(t *testing.T) {
	_, err := execute(t, "config", "--msaa", "3")
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = execute(t, "config", "--fish", "0")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestUnknownConfigKeyIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aquarium.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scene]\nsharks = 2\n"), 0o600))

	_, err := execute(t, "--config", path, "config")
	assert.ErrorIs(t, err, config.ErrInvalid)
}
