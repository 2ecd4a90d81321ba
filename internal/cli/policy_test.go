package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPolicy_Valid(t *testing.T) {
	path := writePolicy(t, `policy: {
	clamp: 0.03
	warn:  0.06
	stop:  0.10
}`)

	got, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 0.03, got.Clamp)
	assert.Equal(t, 0.06, got.Warn)
	assert.Equal(t, 0.10, got.Stop)
}

func TestLoadPolicy_RejectsUnorderedBounds(t *testing.T) {
	// warn below clamp violates the schema ordering constraint.
	path := writePolicy(t, `policy: {
	clamp: 0.05
	warn:  0.01
	stop:  0.12
}`)

	_, err := LoadPolicy(path)
	require.Error(t, err)
}

func TestLoadPolicy_RejectsNonPositiveClamp(t *testing.T) {
	path := writePolicy(t, `policy: {
	clamp: 0
	warn:  0.08
	stop:  0.12
}`)

	_, err := LoadPolicy(path)
	require.Error(t, err)
}

func TestLoadPolicy_RejectsIncompletePolicy(t *testing.T) {
	path := writePolicy(t, `policy: {
	clamp: 0.05
}`)

	_, err := LoadPolicy(path)
	require.Error(t, err)
}

func TestLoadPolicy_SyntaxErrorCarriesPosition(t *testing.T) {
	path := writePolicy(t, "policy: {\n\tclamp: ???\n}")

	_, err := LoadPolicy(path)
	require.Error(t, err)

	var perr *PolicyError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "policy.cue")
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
}
