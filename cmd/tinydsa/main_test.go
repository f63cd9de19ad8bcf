package main

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pornin/go-tiny-dsa/tinydsa"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPrimesCmd(t *testing.T) {
	out, err := execute(t, "primes", "--max", "100")
	require.NoError(t, err)
	assert.Equal(t, "primes: 25\nlargest: 97\n", out)
}

func TestHashCmd(t *testing.T) {
	out, err := execute(t, "hash", "65FLQJTN66SYC78G4")
	require.NoError(t, err)
	assert.Equal(t, "12079263 22099 38081 32\n", out)

	out, err = execute(t, "hash", "--mode", "collapsed", "65FLQJTN66SYC78G4")
	require.NoError(t, err)
	assert.Equal(t, "12096045\n", out)

	out, err = execute(t, "hash", "--mode", "shake", "ABC")
	require.NoError(t, err)
	assert.Equal(t, "3975220461\n", out)

	_, err = execute(t, "hash", "--mode", "bogus", "ABC")
	require.ErrorContains(t, err, "unknown hash mode")
}

func TestSignVerifyFlow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "flow.db")

	out, err := execute(t, "--db", db, "params", "--name", "ref", "--set", "153151:1021:45535")
	require.NoError(t, err)
	assert.Equal(t, "153151:1021:45535\n", out)

	_, err = execute(t, "--db", db, "params", "--name", "ref", "--set", "153151:1021:45535")
	require.Error(t, err)

	out, err = execute(t, "--db", db, "params")
	require.NoError(t, err)
	assert.Equal(t, "ref 153151:1021:45535\n", out)

	out, err = execute(t, "--db", db, "keygen", "--params", "ref", "--name", "alice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "public: "), out)

	_, err = execute(t, "--db", db, "keygen", "--params", "missing", "--name", "bob")
	require.Error(t, err)

	out, err = execute(t, "--db", db, "sign", "--key", "alice", "0123-ZTE")
	require.NoError(t, err)
	enc := strings.TrimSpace(out)
	require.Len(t, enc, 8)

	out, err = execute(t, "--db", db, "verify", "--key", "alice", "--sig", enc, "0123ZTE")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	// Three chunks against two pairs.
	out, err = execute(t, "--db", db, "verify", "--key", "alice", "--sig", enc, "0123ZTE12345")
	assert.True(t, errors.Is(err, errInvalidSignature))
	assert.Equal(t, "false\n", out)

	// Components out of range.
	out, err = execute(t, "--db", db, "verify", "--key", "alice", "--sig", "ZZZZZZZZ", "0123ZTE")
	assert.True(t, errors.Is(err, errInvalidSignature))
	assert.Equal(t, "false\n", out)

	out, err = execute(t, "--db", db, "verify", "--key", "alice", "--sig", "6I7", "0123ZTE")
	assert.True(t, errors.Is(err, errInvalidSignature))
	assert.Equal(t, "false\n", out)
}

func TestParamsGenerate(t *testing.T) {
	t.Setenv("TINYDSA_SEED", "cli")
	db := filepath.Join(t.TempDir(), "gen.db")

	out, err := execute(t, "--db", db, "params", "--name", "gen")
	require.NoError(t, err)
	pp, err := tinydsa.ParseParameters(out)
	require.NoError(t, err)
	require.NoError(t, pp.Validate())

	// Same seed, same parameters.
	db2 := filepath.Join(t.TempDir(), "gen2.db")
	out2, err := execute(t, "--db", db2, "params", "--name", "gen")
	require.NoError(t, err)
	assert.Equal(t, out, out2)
}

func TestStressCmd(t *testing.T) {
	out, err := execute(t, "stress", "--keys", "2", "--messages", "3", "--lengths", "1", "--workers", "2")
	require.NoError(t, err)

	var res struct {
		Trials        int `json:"trials"`
		Failures      int `json:"failures"`
		Keys          int `json:"keys"`
		DuplicateKeys int `json:"duplicate_keys"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 6, res.Trials)
	assert.Equal(t, 2, res.Keys)
	assert.Zero(t, res.Failures)
}

func TestConfigErrors(t *testing.T) {
	_, err := execute(t, "--log-format", "xml", "primes", "--max", "100")
	require.Error(t, err)

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "none.json"), "primes")
	require.ErrorContains(t, err, "failed to read config file")
}
