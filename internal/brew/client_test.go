package brew

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBrew writes an executable shell script standing in for brew and
// returns its path.
func fakeBrew(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brew")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

const mockOutdatedV2 = `{
  "formulae": [
    {
      "name": "foo",
      "installed_versions": ["1.0"],
      "current_version": "2.0",
      "pinned": false,
      "pinned_version": null
    },
    {
      "name": "node",
      "installed_versions": ["20.9.0", "20.10.0"],
      "current_version": "21.5.0",
      "pinned": true,
      "pinned_version": "20.10.0"
    }
  ],
  "casks": []
}`

const mockOutdatedV1 = `[
  {"name": "git", "installed_versions": ["2.42.0"], "current_version": "2.43.0", "pinned": false}
]`

func TestDecodeOutdated(t *testing.T) {
	t.Run("wrapped formulae list", func(t *testing.T) {
		pkgs, err := DecodeOutdated([]byte(mockOutdatedV2))
		require.NoError(t, err)
		require.Len(t, pkgs, 2)

		assert.Equal(t, OutdatedPackage{
			Name:              "foo",
			InstalledVersions: []string{"1.0"},
			CurrentVersion:    "2.0",
		}, pkgs[0])
		assert.Equal(t, "20.10.0", pkgs[1].Installed())
		assert.True(t, pkgs[1].Pinned)
	})

	t.Run("bare list", func(t *testing.T) {
		pkgs, err := DecodeOutdated([]byte("\n" + mockOutdatedV1))
		require.NoError(t, err)
		require.Len(t, pkgs, 1)
		assert.Equal(t, "git", pkgs[0].Name)
		assert.Equal(t, "2.43.0", pkgs[0].CurrentVersion)
	})

	t.Run("nothing outdated", func(t *testing.T) {
		pkgs, err := DecodeOutdated([]byte(`{"formulae": [], "casks": []}`))
		require.NoError(t, err)
		assert.Empty(t, pkgs)
	})

	for _, bad := range []string{"", "   ", "{not json", "[1, 2", "Error: brew is broken"} {
		_, err := DecodeOutdated([]byte(bad))
		assert.ErrorIs(t, err, ErrDecode, "input %q", bad)
	}
}

func TestInstalled(t *testing.T) {
	assert.Equal(t, "", OutdatedPackage{Name: "x"}.Installed())
	assert.Equal(t, "3", OutdatedPackage{InstalledVersions: []string{"1", "2", "3"}}.Installed())
}

func TestClientOutdated(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	bin := fakeBrew(t, `echo "$@" > `+argsFile+`
cat <<'JSON'
`+mockOutdatedV2+`
JSON
`)

	c := NewClient(bin, time.Minute)
	pkgs, err := c.Outdated(context.Background())
	require.NoError(t, err)
	assert.Len(t, pkgs, 2)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "outdated --json=v2 --formula", strings.TrimSpace(string(args)))
}

func TestClientOutdated_Failures(t *testing.T) {
	t.Run("non-zero exit carries stderr", func(t *testing.T) {
		bin := fakeBrew(t, "echo 'Error: no network' >&2\nexit 1\n")
		_, err := NewClient(bin, time.Minute).Outdated(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "brew outdated failed")
		assert.Contains(t, err.Error(), "Error: no network")
	})

	t.Run("missing executable", func(t *testing.T) {
		_, err := NewClient(filepath.Join(t.TempDir(), "nope"), time.Minute).Outdated(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDecode)
	})

	t.Run("bad json", func(t *testing.T) {
		bin := fakeBrew(t, "echo 'not json'\n")
		_, err := NewClient(bin, time.Minute).Outdated(context.Background())
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("timeout", func(t *testing.T) {
		bin := fakeBrew(t, "sleep 5\n")
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, err := NewClient(bin, time.Minute).Outdated(ctx)
		assert.Error(t, err)
	})
}

func TestClientPrefix_QueriedOnce(t *testing.T) {
	countFile := filepath.Join(t.TempDir(), "count")
	bin := fakeBrew(t, `echo call >> `+countFile+`
echo /opt/fakebrew
`)
	c := NewClient(bin, time.Minute)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prefix, err := c.Prefix()
			assert.NoError(t, err)
			results[i] = prefix
		}(i)
	}
	wg.Wait()

	for _, prefix := range results {
		assert.Equal(t, "/opt/fakebrew", prefix)
	}

	calls, err := os.ReadFile(countFile)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(calls), "call"))
}

func TestClientPrefix_Empty(t *testing.T) {
	bin := fakeBrew(t, "echo\n")
	_, err := NewClient(bin, time.Minute).Prefix()
	assert.Error(t, err)
}

func TestClientUpdate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		bin := fakeBrew(t, "echo 'Already up-to-date.'\n")
		assert.NoError(t, NewClient(bin, time.Minute).Update(context.Background()))
	})

	t.Run("failure keeps stderr", func(t *testing.T) {
		bin := fakeBrew(t, "echo 'fatal: unable to access github.com' >&2\nexit 1\n")
		err := NewClient(bin, time.Minute).Update(context.Background())

		var updateErr *UpdateError
		require.True(t, errors.As(err, &updateErr))
		assert.Equal(t, "fatal: unable to access github.com", updateErr.Output)
		assert.Contains(t, err.Error(), "brew update failed")
	})

	t.Run("spawn failure keeps the spawn error", func(t *testing.T) {
		err := NewClient(filepath.Join(t.TempDir(), "missing-brew"), time.Minute).Update(context.Background())

		var updateErr *UpdateError
		require.True(t, errors.As(err, &updateErr))
		assert.Contains(t, updateErr.Output, "missing-brew")
	})
}
