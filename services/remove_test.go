package services

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/sharedrop/models"
)

func newRemoveFixture(t *testing.T) (*testEnv, *RemoveService) {
	t.Helper()
	env := newTestEnv(t)
	return env, NewRemoveService(env.files, env.content, testRetentionMinutes)
}

// seedFile plants a metadata row and a blob directly, at a chosen upload
// minute, bypassing the upload pipeline.
func seedFile(t *testing.T, env *testEnv, owner, hashID string, uploadMinute int64) {
	t.Helper()
	require.NoError(t, env.files.Insert(&models.FileRecord{
		HashID:     hashID,
		FileName:   "seed",
		Extension:  "txt",
		UserUpload: owner,
		UploadTime: uploadMinute,
		TargetUser: "alpha",
	}))
	require.NoError(t, env.content.Write(owner, hashID, "txt", bytes.NewReader([]byte("seed"))))
}

func TestRemoveOne_BothHalvesPresent(t *testing.T) {
	env, svc := newRemoveFixture(t)
	seedFile(t, env, "tester", "hash1", nowMinutes())

	assert.Equal(t, StatusRemoved, svc.RemoveOne("tester", "hash1", "txt"))

	assert.False(t, env.content.Exists("tester", "hash1", "txt"))
	rec, err := env.files.FindByOwnerAndID("tester", "hash1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRemoveOne_BlobAlreadyGone(t *testing.T) {
	// An out-of-sync pair with only the metadata half left still converges to
	// fully absent, and the attempt still counts as a success.
	env, svc := newRemoveFixture(t)
	seedFile(t, env, "tester", "hash1", nowMinutes())
	_, err := env.content.Remove("tester", "hash1", "txt")
	require.NoError(t, err)

	assert.Equal(t, StatusRemoved, svc.RemoveOne("tester", "hash1", "txt"))

	rec, err := env.files.FindByOwnerAndID("tester", "hash1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRemoveOne_RecordAlreadyGone(t *testing.T) {
	// The opposite skew: blob on disk with no row. The blob still gets
	// deleted; the status reports the missing row.
	env, svc := newRemoveFixture(t)
	require.NoError(t, env.content.Write("tester", "hash1", "txt", bytes.NewReader([]byte("orphan"))))

	assert.Equal(t, StatusRecordNotFound, svc.RemoveOne("tester", "hash1", "txt"))
	assert.False(t, env.content.Exists("tester", "hash1", "txt"))
}

func TestRemoveOne_Idempotent(t *testing.T) {
	env, svc := newRemoveFixture(t)
	seedFile(t, env, "tester", "hash1", nowMinutes())

	assert.Equal(t, StatusRemoved, svc.RemoveOne("tester", "hash1", "txt"))
	assert.Equal(t, StatusRecordNotFound, svc.RemoveOne("tester", "hash1", "txt"))
}

func TestRemoveOne_MissingArgs(t *testing.T) {
	_, svc := newRemoveFixture(t)

	assert.Equal(t, StatusMissingArgs, svc.RemoveOne("", "hash1", "txt"))
	assert.Equal(t, StatusMissingArgs, svc.RemoveOne("tester", "", "txt"))
}

func TestRemoveOne_ExtensionFromRecord(t *testing.T) {
	// No extension supplied: it is read back from the metadata row.
	env, svc := newRemoveFixture(t)
	seedFile(t, env, "tester", "hash1", nowMinutes())

	assert.Equal(t, StatusRemoved, svc.RemoveOne("tester", "hash1", ""))
	assert.False(t, env.content.Exists("tester", "hash1", "txt"))
}

func TestRemoveOne_ExtensionUnknown(t *testing.T) {
	_, svc := newRemoveFixture(t)

	// No extension and no record: the blob path cannot be formed at all.
	assert.Equal(t, StatusExtensionUnknown, svc.RemoveOne("tester", "hash1", ""))
}

func TestFindExpired(t *testing.T) {
	env, svc := newRemoveFixture(t)
	seedFile(t, env, "tester", "expired", nowMinutes()-testRetentionMinutes-10)
	seedFile(t, env, "tester", "fresh", nowMinutes())

	expired, err := svc.FindExpired()
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, ExpiredFile{Owner: "tester", HashID: "expired", Extension: "txt"}, expired[0])
}

func TestSweep_NoWorkFound(t *testing.T) {
	env, svc := newRemoveFixture(t)
	seedFile(t, env, "tester", "fresh", nowMinutes())

	res, err := svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, SweepNoWorkFound, res.Outcome)
	assert.Zero(t, res.Removed)

	// Sweeping an empty set leaves live files alone.
	assert.True(t, env.content.Exists("tester", "fresh", "txt"))
}

func TestSweep_RemovesExpired(t *testing.T) {
	env, svc := newRemoveFixture(t)
	seedFile(t, env, "tester", "old1", nowMinutes()-testRetentionMinutes-10)
	seedFile(t, env, "other", "old2", nowMinutes()-testRetentionMinutes-20)
	seedFile(t, env, "tester", "fresh", nowMinutes())

	res, err := svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, SweepCompleted, res.Outcome)
	assert.Equal(t, 2, res.Removed)
	assert.Zero(t, res.Failed)

	assert.False(t, env.content.Exists("tester", "old1", "txt"))
	assert.False(t, env.content.Exists("other", "old2", "txt"))
	assert.True(t, env.content.Exists("tester", "fresh", "txt"))

	rec, err := env.files.FindByOwnerAndID("tester", "fresh")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestSweep_ToleratesMissingBlobs(t *testing.T) {
	// Expired rows whose blobs vanished earlier must not fail the pass.
	env, svc := newRemoveFixture(t)
	seedFile(t, env, "tester", "old1", nowMinutes()-testRetentionMinutes-10)
	_, err := env.content.Remove("tester", "old1", "txt")
	require.NoError(t, err)

	res, err := svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, SweepCompleted, res.Outcome)
	assert.Equal(t, 1, res.Removed)
	assert.Zero(t, res.Failed)
}

func TestIsScanFailure(t *testing.T) {
	assert.True(t, IsScanFailure(ErrScanFailed))
	assert.True(t, IsScanFailure(fmt.Errorf("%w: disk gone", ErrScanFailed)))
	assert.False(t, IsScanFailure(ErrPersistence))
	assert.False(t, IsScanFailure(nil))
}

func TestRemoveStatusString(t *testing.T) {
	assert.Equal(t, "removed", StatusRemoved.String())
	assert.Equal(t, "record not found", StatusRecordNotFound.String())
	assert.Equal(t, "status(99)", RemoveStatus(99).String())
}
