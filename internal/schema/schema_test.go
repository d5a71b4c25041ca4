package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"archive", "grand", "last-processed", "provisional", "shadow"}, names)
}

func TestForUnknown(t *testing.T) {
	_, err := For("nonsense")
	require.Error(t, err)
}

func TestMarshalIndentArchive(t *testing.T) {
	b, err := MarshalIndent("archive")
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	props, ok := m["properties"].(map[string]any)
	require.True(t, ok, "archive schema must describe its properties")
	assert.Contains(t, props, "metadata")
	assert.Contains(t, props, "overall_digest")
	assert.Contains(t, props, "individual_digests")
}

func TestMarshalIndentGrand(t *testing.T) {
	b, err := MarshalIndent("grand")
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	props, ok := m["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "major_digests")
}
