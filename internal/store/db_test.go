package store

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pornin/go-tiny-dsa/tinydsa"
)

var testParams = tinydsa.Parameters{P: 153151, Q: 1021, G: 45535}

func TestDB_OpenModes(t *testing.T) {
	t.Run("in-memory", func(t *testing.T) {
		db, err := OpenInMemoryDB()
		require.NoError(t, err)
		require.NotNil(t, db)

		runSampleInsertSelectTest(t, db)
		assert.NoError(t, db.Close())
	})

	t.Run("file-based DB", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sub", "test.db")

		db, err := OpenFileDB(path)
		require.NoError(t, err)
		require.NotNil(t, db)
		assert.FileExists(t, path)

		runSampleInsertSelectTest(t, db)
		require.NoError(t, db.Close())

		// Records survive a reopen.
		db, err = OpenFileDB(path)
		require.NoError(t, err)
		ps, err := db.ParamSet("sample")
		require.NoError(t, err)
		assert.Equal(t, testParams, ps.Parameters())
		assert.NoError(t, db.Close())
	})
}

func runSampleInsertSelectTest(t *testing.T, db *DB) {
	_, err := db.SaveParameters("sample", testParams)
	require.NoError(t, err)

	var result ParamSet
	err = db.Client().First(&result).Error
	require.NoError(t, err)
	assert.Equal(t, "sample", result.Name)
	assert.Equal(t, uint64(153151), result.P)
}

func newTestDB(t *testing.T) *DB {
	db, err := OpenInMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestParamSets(t *testing.T) {
	db := newTestDB(t)

	ps, err := db.SaveParameters("demo", testParams)
	require.NoError(t, err)
	assert.NotZero(t, ps.ID)

	_, err = db.SaveParameters("demo", testParams)
	assert.True(t, errors.Is(err, ErrExists))

	_, err = db.SaveParameters("broken", tinydsa.Parameters{P: 153151, Q: 1021, G: 2})
	assert.True(t, errors.Is(err, tinydsa.ErrInvalidParameters))

	_, err = db.ParamSet("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	other := tinydsa.Parameters{P: 1874491, Q: 62483, G: 1532972}
	_, err = db.SaveParameters("other", other)
	require.NoError(t, err)

	sets, err := db.ParamSets()
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "demo", sets[0].Name)
	assert.Equal(t, other, sets[1].Parameters())
}

func TestKeysAndSignatures(t *testing.T) {
	db := newTestDB(t)
	ps, err := db.SaveParameters("demo", testParams)
	require.NoError(t, err)

	kp := tinydsa.KeyPair{Private: 589, Public: 33741}
	kr, err := db.SaveKey("alice", ps, kp)
	require.NoError(t, err)
	assert.Equal(t, ps.ID, kr.ParamSetID)

	_, err = db.SaveKey("alice", ps, kp)
	assert.True(t, errors.Is(err, ErrExists))

	_, err = db.SaveKey("bob", ps, tinydsa.KeyPair{Private: 589, Public: 33742})
	assert.True(t, errors.Is(err, tinydsa.ErrInvalidKey))

	loaded, err := db.Key("alice")
	require.NoError(t, err)
	assert.Equal(t, kp, loaded.KeyPair())
	assert.Equal(t, testParams, loaded.ParamSet.Parameters())

	_, err = db.Key("carol")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = db.SaveSignature(loaded, "ABC", "chunks", "6I7Z")
	require.NoError(t, err)
	_, err = db.SaveSignature(loaded, "ABD", "shake", "0A0B")
	require.NoError(t, err)

	sigs, err := db.Signatures(loaded)
	require.NoError(t, err)
	require.Len(t, sigs, 2)
	assert.Equal(t, "6I7Z", sigs[0].Encoded)
	assert.Equal(t, "shake", sigs[1].HashMode)
}
