package patch_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/affected/internal/adapters/patch"
	"go.trai.ch/affected/internal/core/domain"
)

func TestReader_GitPatch(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "rename.patch"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	changes, err := patch.NewReader().ChangedFiles(f)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"libs/core/a.go",
		"services/api/old.go",
		"services/api/new.go",
		"docs/added.md",
		"tools/gone.sh",
	}, changes.Files())
}

func TestReader_PlainUnifiedDiff(t *testing.T) {
	input := strings.Join([]string{
		"--- web/index.html",
		"+++ web/index.html",
		"@@ -1 +1 @@",
		"-<p>old</p>",
		"+<p>new</p>",
		"",
	}, "\n")

	changes, err := patch.NewReader().ChangedFiles(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"web/index.html"}, changes.Files())
}

func TestReader_Empty(t *testing.T) {
	changes, err := patch.NewReader().ChangedFiles(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, changes.IsEmpty())
}

func TestReader_Malformed(t *testing.T) {
	input := "--- a/x\n+++ b/x\n@@ -x +y @@\n-a\n"

	_, err := patch.NewReader().ChangedFiles(strings.NewReader(input))
	require.ErrorIs(t, err, domain.ErrChangeResolution)
}
