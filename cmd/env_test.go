//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppEnv_Close_Nil(t *testing.T) {
	env := &appEnv{}
	assert.NotPanics(t, func() {
		env.Close()
	})
}

func TestInitEnv_SQLite(t *testing.T) {
	cfg = sqliteConfig(t)

	env, err := initEnv(context.Background(), "ingest")
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Store)
	assert.NotNil(t, env.Pipeline)
	assert.NotNil(t, env.Reconciler)
	assert.NotNil(t, env.Normalizer)
	assert.NotNil(t, env.Loader)
}

func TestInitEnv_MissingKey(t *testing.T) {
	cfg = sqliteConfig(t)
	cfg.Anthropic.Key = ""

	env, err := initEnv(context.Background(), "ingest")
	assert.Nil(t, env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
}

func TestInitEnv_UnknownDriver(t *testing.T) {
	cfg = sqliteConfig(t)
	cfg.Store.Driver = "mysql"

	env, err := initEnv(context.Background(), "serve")
	assert.Nil(t, env)
	assert.Error(t, err)
}

func TestLoadGazetteer_FallsBackToEmbedded(t *testing.T) {
	cfg = sqliteConfig(t)
	cfg.Location.GazetteerFile = filepath.Join(t.TempDir(), "missing.yaml")

	g := loadGazetteer()
	require.NoError(t, g.Err())
	_, ok := g.Province("Heredia")
	assert.True(t, ok)
}

func TestLoadGazetteer_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gazetteer.yaml")
	data := `
provinces:
  - code: "9"
    name: Isla del Coco
    cantons: []
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg = sqliteConfig(t)
	cfg.Location.GazetteerFile = path

	g := loadGazetteer()
	require.NoError(t, g.Err())
	_, ok := g.Province("Isla del Coco")
	assert.True(t, ok)
	_, ok = g.Province("Heredia")
	assert.False(t, ok)
}
