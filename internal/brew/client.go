// Package brew wraps the Homebrew commands brewfresh depends on.
package brew

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// ErrDecode is wrapped by errors caused by unparseable `brew outdated` output.
var ErrDecode = errors.New("failed to parse brew outdated output")

// Client runs brew commands through a single executable.
type Client struct {
	Bin string

	prefix func() (string, error)
}

// NewClient returns a Client for the brew executable bin. The installation
// prefix is queried at most once per Client, bounded by prefixTimeout.
func NewClient(bin string, prefixTimeout time.Duration) *Client {
	c := &Client{Bin: bin}
	c.prefix = sync.OnceValues(func() (string, error) {
		ctx, cancel := context.WithTimeout(context.Background(), prefixTimeout)
		defer cancel()
		out, err := c.output(ctx, "--prefix")
		if err != nil {
			return "", err
		}
		prefix := strings.TrimSpace(string(out))
		if prefix == "" {
			return "", fmt.Errorf("brew --prefix returned an empty prefix")
		}
		return prefix, nil
	})
	return c
}

// Prefix returns the Homebrew installation prefix. Concurrent first calls
// share a single `brew --prefix` invocation and later calls reuse its result.
func (c *Client) Prefix() (string, error) {
	return c.prefix()
}

// Outdated returns every outdated formula.
func (c *Client) Outdated(ctx context.Context) ([]OutdatedPackage, error) {
	out, err := c.output(ctx, "outdated", "--json=v2", "--formula")
	if err != nil {
		return nil, err
	}
	return DecodeOutdated(out)
}

// brewOutdatedOutput represents the structure of `brew outdated --json=v2` output
type brewOutdatedOutput struct {
	Formulae []OutdatedPackage `json:"formulae"`
}

// DecodeOutdated parses `brew outdated` JSON. Both the v2 object with a
// "formulae" list and the older bare list are accepted.
func DecodeOutdated(data []byte) ([]OutdatedPackage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrDecode)
	}

	if data[0] == '[' {
		var pkgs []OutdatedPackage
		if err := sonic.Unmarshal(data, &pkgs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return pkgs, nil
	}

	var wrapped brewOutdatedOutput
	if err := sonic.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return wrapped.Formulae, nil
}

// UpdateError reports a failed `brew update`. Output is the text worth
// keeping: the command's stderr, or the spawn error when it never ran.
type UpdateError struct {
	Output string
	Err    error
}

func (e *UpdateError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("brew update failed: %v", e.Err)
	}
	return fmt.Sprintf("brew update failed: %v (stderr: %s)", e.Err, e.Output)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// Update refreshes Homebrew's formula metadata. Failures are returned as
// *UpdateError.
func (c *Client) Update(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.Bin, "update")
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &UpdateError{Output: strings.TrimSpace(stderr.String()), Err: err}
		}
		return &UpdateError{Output: err.Error(), Err: err}
	}
	return nil
}

func (c *Client) output(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("brew %s failed: %w (stderr: %s)", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("brew %s failed: %w", args[0], err)
	}
	return output, nil
}
