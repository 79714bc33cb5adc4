package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitExtension(t *testing.T) {
	base, ext, err := SplitExtension("testing.txt")
	require.NoError(t, err)
	assert.Equal(t, "testing", base)
	assert.Equal(t, "txt", ext)
}

func TestSplitExtension_MultipleDots(t *testing.T) {
	// Only the final segment is the extension.
	base, ext, err := SplitExtension("a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "a.b", base)
	assert.Equal(t, "c", ext)

	base, ext, err = SplitExtension("testing.txt.zip")
	require.NoError(t, err)
	assert.Equal(t, "testing.txt", base)
	assert.Equal(t, "zip", ext)
}

func TestSplitExtension_NoExtension(t *testing.T) {
	_, _, err := SplitExtension("noext")
	assert.ErrorIs(t, err, ErrNoExtension)
}

func TestSplitExtension_EmptyName(t *testing.T) {
	_, _, err := SplitExtension("")
	assert.ErrorIs(t, err, ErrNoFileName)
}

func TestSplitExtension_TrailingDot(t *testing.T) {
	_, _, err := SplitExtension("name.")
	assert.ErrorIs(t, err, ErrNoExtension)
}

func TestSplitExtension_Dotfile(t *testing.T) {
	// A leading dot is a valid name with an empty base.
	base, ext, err := SplitExtension(".txt")
	require.NoError(t, err)
	assert.Equal(t, "", base)
	assert.Equal(t, "txt", ext)
}

func TestHashFileName(t *testing.T) {
	// sha1("testing"), extension excluded from the digest.
	id, err := HashFileName("testing.txt")
	require.NoError(t, err)
	assert.Equal(t, "dc724af18fbdd4e59189f5fe768a5f8311527050", id)

	id, err = HashFileName("test.txt")
	require.NoError(t, err)
	assert.Equal(t, "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3", id)
}

func TestHashFileName_Dotfile(t *testing.T) {
	// Dotfiles hash their empty base: sha1("").
	id, err := HashFileName(".txt")
	require.NoError(t, err)
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", id)
}

func TestHashFileName_Deterministic(t *testing.T) {
	first, err := HashFileName("report.pdf")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := HashFileName("report.pdf")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestHashFileName_ExtensionIgnored(t *testing.T) {
	// Same base with different extensions hashes identically.
	txt, err := HashFileName("test.txt")
	require.NoError(t, err)
	pdf, err := HashFileName("test.pdf")
	require.NoError(t, err)
	assert.Equal(t, txt, pdf)
}

func TestHashFileName_NoExtension(t *testing.T) {
	_, err := HashFileName("testing")
	assert.ErrorIs(t, err, ErrNoExtension)

	_, err = HashFileName("")
	assert.ErrorIs(t, err, ErrNoFileName)
}
