package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/brewfresh/internal/brew"
	"github.com/blackwell-systems/brewfresh/internal/logger"
)

type memCache struct {
	mu    sync.Mutex
	kegs  map[string][]string
	puts  int
	fails bool
}

func newMemCache() *memCache {
	return &memCache{kegs: make(map[string][]string)}
}

func (c *memCache) GetKegExecutables(pkg, version string) ([]string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fails {
		return nil, false, errors.New("cache down")
	}
	exes, ok := c.kegs[pkg+"@"+version]
	return exes, ok, nil
}

func (c *memCache) PutKegExecutables(pkg, version string, executables []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fails {
		return errors.New("cache down")
	}
	c.puts++
	c.kegs[pkg+"@"+version] = executables
	return nil
}

// makeKeg creates <prefix>/Cellar/<name>/<version>/bin with the given files.
func makeKeg(t *testing.T, prefix, name, version string, bins ...string) {
	t.Helper()
	binDir := filepath.Join(prefix, "Cellar", name, version, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0755))
	for _, bin := range bins {
		require.NoError(t, os.WriteFile(filepath.Join(binDir, bin), []byte("#!/bin/sh\n"), 0755))
	}
}

func outdated(name string, versions ...string) brew.OutdatedPackage {
	return brew.OutdatedPackage{Name: name, InstalledVersions: versions, CurrentVersion: "99"}
}

func newTestResolver(prefix string, cache KegCache) (*Resolver, *bytes.Buffer) {
	var logs bytes.Buffer
	r := New(func() (string, error) { return prefix, nil }, cache, time.Second)
	r.Log = logger.New(&logs, logger.LevelWarn)
	return r, &logs
}

func TestExecutables(t *testing.T) {
	prefix := t.TempDir()
	makeKeg(t, prefix, "node", "21.5.0", "node", "npm", "npx")
	// Older keg of the same formula must not be read.
	makeKeg(t, prefix, "node", "20.10.0", "node-old")
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "Cellar", "node", "21.5.0", "bin", "subdir"), 0755))

	r, _ := newTestResolver(prefix, nil)
	exes, err := r.Executables(context.Background(), outdated("node", "20.10.0", "21.5.0"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"node", "npm", "npx"}, exes)
}

func TestExecutables_MissingKeg(t *testing.T) {
	cache := newMemCache()
	r, logs := newTestResolver(t.TempDir(), cache)

	exes, err := r.Executables(context.Background(), outdated("ghost", "1.0"))
	require.NoError(t, err)
	assert.Empty(t, exes)
	assert.Empty(t, logs.String(), "a missing keg is not worth a warning")
	assert.Equal(t, 0, cache.puts, "a missing keg is not cached")
}

func TestExecutables_LibraryOnlyKeg(t *testing.T) {
	prefix := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "Cellar", "libyaml", "0.2.5", "lib"), 0755))
	cache := newMemCache()
	r, _ := newTestResolver(prefix, cache)

	exes, err := r.Executables(context.Background(), outdated("libyaml", "0.2.5"))
	require.NoError(t, err)
	assert.Empty(t, exes)
	assert.Equal(t, 1, cache.puts)
}

func TestExecutables_IOError(t *testing.T) {
	prefix := t.TempDir()
	kegDir := filepath.Join(prefix, "Cellar", "broken", "1.0")
	require.NoError(t, os.MkdirAll(kegDir, 0755))
	// bin is a file, so listing it fails with something other than "not exist".
	require.NoError(t, os.WriteFile(filepath.Join(kegDir, "bin"), nil, 0644))

	r, _ := newTestResolver(prefix, nil)
	_, err := r.Executables(context.Background(), outdated("broken", "1.0"))
	assert.Error(t, err)
}

func TestExecutables_CacheHitSkipsCellar(t *testing.T) {
	cache := newMemCache()
	cache.kegs["foo@1.0"] = []string{"foo"}

	r, _ := newTestResolver("", cache)
	r.Prefix = func() (string, error) { return "", errors.New("prefix must not be needed") }

	exes, err := r.Executables(context.Background(), outdated("foo", "1.0"))
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, exes)
}

func TestExecutables_CacheFillAndFailure(t *testing.T) {
	prefix := t.TempDir()
	makeKeg(t, prefix, "foo", "1.0", "foo")

	cache := newMemCache()
	r, _ := newTestResolver(prefix, cache)
	_, err := r.Executables(context.Background(), outdated("foo", "1.0"))
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, cache.kegs["foo@1.0"])

	// A broken cache degrades to reading the Cellar.
	cache.fails = true
	exes, err := r.Executables(context.Background(), outdated("foo", "1.0"))
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, exes)
}

func TestExecutables_Timeout(t *testing.T) {
	r, _ := newTestResolver("", nil)
	r.Timeout = 50 * time.Millisecond
	r.Prefix = func() (string, error) {
		time.Sleep(time.Second)
		return "/nonexistent", nil
	}

	_, err := r.Executables(context.Background(), outdated("slow", "1.0"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolve(t *testing.T) {
	prefix := t.TempDir()
	makeKeg(t, prefix, "foo", "1.0", "foo")
	makeKeg(t, prefix, "node", "21.5.0", "node", "npm")
	brokenKeg := filepath.Join(prefix, "Cellar", "broken", "1.0")
	require.NoError(t, os.MkdirAll(brokenKeg, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(brokenKeg, "bin"), nil, 0644))

	r, logs := newTestResolver(prefix, nil)
	idx := r.Resolve(context.Background(), []brew.OutdatedPackage{
		outdated("foo", "1.0"),
		outdated("node", "21.5.0"),
		outdated("broken", "1.0"),
		outdated("ghost", "3.0"),
		outdated("noversion"),
	})

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, "foo", idx.Owner["foo"].Name)
	assert.Equal(t, "node", idx.Owner["npm"].Name)
	assert.Contains(t, logs.String(), "scanner: broken:")
	assert.NotContains(t, logs.String(), "ghost")
}

func TestResolve_ManyPackages(t *testing.T) {
	prefix := t.TempDir()
	var pkgs []brew.OutdatedPackage
	for i := 0; i < 100; i++ {
		name := fmt.Sprintf("pkg%03d", i)
		makeKeg(t, prefix, name, "1.0", name, "shared")
		pkgs = append(pkgs, outdated(name, "1.0"))
	}

	r, _ := newTestResolver(prefix, newMemCache())
	r.Concurrency = 3
	idx := r.Resolve(context.Background(), pkgs)

	// 100 own executables plus the one they all share.
	assert.Equal(t, 101, idx.Len())
	assert.Contains(t, idx.Owner, "shared")
}

func TestResolve_Empty(t *testing.T) {
	r, _ := newTestResolver(t.TempDir(), nil)
	idx := r.Resolve(context.Background(), nil)
	assert.Equal(t, 0, idx.Len())
}
