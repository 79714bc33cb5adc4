package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDomain = "http://localhost:8080"

func newDownloadFixture(t *testing.T) (*testEnv, *DownloadService, string) {
	t.Helper()
	env := newTestEnv(t)
	env.addUser(t, "tester")
	env.addUser(t, "alpha")
	env.addUser(t, "badPerson")

	upload := NewUploadService(env.users, env.files, env.content)
	hashID, err := upload.Upload(env.writeSource(t, "test file"), "test.txt", "tester", "alpha")
	require.NoError(t, err)

	return env, NewDownloadService(env.files, env.content, testDomain, testRetentionMinutes), hashID
}

func TestAuthorize(t *testing.T) {
	_, svc, hashID := newDownloadFixture(t)

	assert.True(t, svc.Authorize(hashID, "tester", "alpha"))

	// Only the named target may read; the owner included.
	assert.False(t, svc.Authorize(hashID, "tester", "badPerson"))
	assert.False(t, svc.Authorize(hashID, "tester", "tester"))

	// Unknown record and missing arguments degrade to a plain denial.
	assert.False(t, svc.Authorize("deadbeef", "tester", "alpha"))
	assert.False(t, svc.Authorize("", "tester", "alpha"))
	assert.False(t, svc.Authorize(hashID, "", "alpha"))
	assert.False(t, svc.Authorize(hashID, "tester", ""))
}

func TestResolvePath(t *testing.T) {
	env, svc, hashID := newDownloadFixture(t)

	path, err := svc.ResolvePath("alpha", "tester", hashID)
	require.NoError(t, err)
	assert.Equal(t, env.content.BlobPath("tester", hashID, "txt"), path)
	assert.FileExists(t, path)
}

func TestResolvePath_DenialIsUniform(t *testing.T) {
	_, svc, hashID := newDownloadFixture(t)

	// A wrong requester and a nonexistent file are indistinguishable, so the
	// endpoint cannot be used to probe which hashes exist.
	_, errWrongUser := svc.ResolvePath("badPerson", "tester", hashID)
	_, errNoSuchFile := svc.ResolvePath("alpha", "tester", "deadbeef")
	assert.ErrorIs(t, errWrongUser, ErrAccessDenied)
	assert.ErrorIs(t, errNoSuchFile, ErrAccessDenied)
	assert.Equal(t, errWrongUser.Error(), errNoSuchFile.Error())
}

func TestResolvePath_NotLoggedIn(t *testing.T) {
	_, svc, hashID := newDownloadFixture(t)

	_, err := svc.ResolvePath("", "tester", hashID)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestListAvailable(t *testing.T) {
	_, svc, hashID := newDownloadFixture(t)

	views, err := svc.ListAvailable("alpha")
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, hashID, v.HashID)
	assert.Equal(t, "test.txt", v.FileName)
	assert.Equal(t, "txt", v.FileType)
	assert.Equal(t, "write", v.FileCat)
	assert.Equal(t, "9 bytes", v.FileSize)
	assert.Equal(t, "tester", v.Owner)
	assert.Equal(t, fmt.Sprintf("%s/file?h=%s&u=tester", testDomain, hashID), v.ShareURL)
	// Freshly uploaded, so nearly the whole retention window remains.
	assert.InDelta(t, testRetentionMinutes, v.MinutesLeft, 2)
}

func TestListAvailable_MissingBlobRendersNA(t *testing.T) {
	env, svc, hashID := newDownloadFixture(t)

	_, err := env.content.Remove("tester", hashID, "txt")
	require.NoError(t, err)

	views, err := svc.ListAvailable("alpha")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "N/A", views[0].FileSize)
}

func TestListAvailable_EmptyForOtherUsers(t *testing.T) {
	_, svc, _ := newDownloadFixture(t)

	views, err := svc.ListAvailable("badPerson")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestListAvailable_NotLoggedIn(t *testing.T) {
	_, svc, _ := newDownloadFixture(t)

	_, err := svc.ListAvailable("")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestHumanSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{-1, "N/A"},
		{0, "0 bytes"},
		{512, "512 bytes"},
		{1023, "1023 bytes"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{1536 * 1024 * 1024, "1536.0 MB"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HumanSize(tc.bytes), "HumanSize(%d)", tc.bytes)
	}
}
