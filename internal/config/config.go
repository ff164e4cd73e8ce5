// Package config resolves brewfresh's state directory and environment settings.
//
// There is no configuration file. Every knob is an environment variable with a
// default; malformed values fall back to the default and are reported through
// Settings.Problems so the caller can log them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults for the recency policies and subtask bounds.
const (
	DefaultHistoryLimit   = 1000
	DefaultHistoryWindow  = 14 * 24 * time.Hour
	DefaultQueryTimeout   = 2 * time.Minute
	DefaultResolveTimeout = 10 * time.Second
	DefaultRefreshTimeout = 15 * time.Minute
	DefaultBrew           = "brew"
)

// Settings holds every environment-controlled value.
type Settings struct {
	StateDir       string
	Brew           string
	HistoryLimit   int
	HistoryWindow  time.Duration
	QueryTimeout   time.Duration
	ResolveTimeout time.Duration
	RefreshTimeout time.Duration
	NoRefresh      bool
	LogLevel       string

	// Problems lists env values that were ignored.
	Problems []string
}

// Getenv looks up an environment variable.
type Getenv func(key string) string

// Dir returns the brewfresh state directory, respecting BREWFRESH_HOME.
// Defaults to ~/.brewfresh if BREWFRESH_HOME is not set.
func Dir(getenv Getenv) (string, error) {
	if dir := getenv("BREWFRESH_HOME"); dir != "" {
		return dir, nil
	}
	home := getenv("HOME")
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
	}
	return filepath.Join(home, ".brewfresh"), nil
}

// ErrorDir is where failed background refreshes leave their records.
func (s *Settings) ErrorDir() string {
	return filepath.Join(s.StateDir, "errors")
}

// DBPath is the sqlite database holding the keg cache and findings log.
func (s *Settings) DBPath() string {
	return filepath.Join(s.StateDir, "brewfresh.db")
}

// RefreshLog is the log file of the detached refresh child.
func (s *Settings) RefreshLog() string {
	return filepath.Join(s.StateDir, "refresh.log")
}

// Load reads all settings from the environment.
func Load(getenv Getenv) (*Settings, error) {
	dir, err := Dir(getenv)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		StateDir:       dir,
		Brew:           DefaultBrew,
		HistoryLimit:   DefaultHistoryLimit,
		HistoryWindow:  DefaultHistoryWindow,
		QueryTimeout:   DefaultQueryTimeout,
		ResolveTimeout: DefaultResolveTimeout,
		RefreshTimeout: DefaultRefreshTimeout,
		NoRefresh:      getenv("BREWFRESH_NO_REFRESH") != "",
		LogLevel:       getenv("BREWFRESH_LOG_LEVEL"),
	}

	if brew := getenv("BREWFRESH_BREW"); brew != "" {
		s.Brew = brew
	}

	if v := getenv("BREWFRESH_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.Problems = append(s.Problems, fmt.Sprintf("BREWFRESH_HISTORY_LIMIT=%q is not a positive integer", v))
		} else {
			s.HistoryLimit = n
		}
	}

	s.HistoryWindow = s.duration(getenv, "BREWFRESH_HISTORY_WINDOW", s.HistoryWindow)
	s.QueryTimeout = s.duration(getenv, "BREWFRESH_QUERY_TIMEOUT", s.QueryTimeout)
	s.ResolveTimeout = s.duration(getenv, "BREWFRESH_RESOLVE_TIMEOUT", s.ResolveTimeout)
	s.RefreshTimeout = s.duration(getenv, "BREWFRESH_REFRESH_TIMEOUT", s.RefreshTimeout)

	return s, nil
}

func (s *Settings) duration(getenv Getenv, key string, def time.Duration) time.Duration {
	v := getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		s.Problems = append(s.Problems, fmt.Sprintf("%s=%q is not a positive duration", key, v))
		return def
	}
	return d
}
