package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0o644))
}

func TestRegistryLoadsAndCaches(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "default", `{"name":"default","version":"1","base_prompt":"Hello","instructions":{"enrich":"Do it"}}`)

	registry := NewRegistry(dir)

	template, err := registry.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "Hello", template.BasePrompt)

	// A rewrite on disk is invisible until invalidated.
	writeTemplate(t, dir, "default", `{"name":"default","version":"2","base_prompt":"Changed","instructions":{"enrich":"Do it"}}`)

	cached, err := registry.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "Hello", cached.BasePrompt)

	registry.Invalidate("default")

	reloaded, err := registry.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "Changed", reloaded.BasePrompt)
}

func TestRegistryMissingTemplate(t *testing.T) {
	registry := NewRegistry(t.TempDir())
	_, err := registry.Load("nope")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestRegistryRejectsMalformedTemplate(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "broken", `{"name":`)

	registry := NewRegistry(dir)
	_, err := registry.Load("broken")
	assert.Error(t, err)
}
