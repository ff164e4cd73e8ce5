package history

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Source describes one shell history format.
type Source struct {
	Name string

	// Candidates returns the files to try, in priority order. The first
	// that exists and decodes as UTF-8 is used.
	Candidates func(getenv Getenv) []string

	Parse  func(text string) []CommandLine
	Policy Policy
}

// DefaultSources returns the bash, zsh, nushell and fish sources. Plain-text
// formats keep the last limit lines; fish keeps entries newer than window.
func DefaultSources(limit int, window time.Duration) []Source {
	return []Source{
		{Name: "bash", Candidates: bashCandidates, Parse: parseBash, Policy: KeepLast{N: limit}},
		{Name: "zsh", Candidates: zshCandidates, Parse: parseZsh, Policy: KeepLast{N: limit}},
		{Name: "nushell", Candidates: nushellCandidates, Parse: parsePlain, Policy: KeepLast{N: limit}},
		{Name: "fish", Candidates: fishCandidates, Parse: parseFish, Policy: KeepSince{Window: window}},
	}
}

// Read returns the source's parsed entries before the recency policy is
// applied, and the file they came from. ok is false when no candidate could
// be read and decoded.
func (s Source) Read(getenv Getenv) (lines []CommandLine, path string, ok bool) {
	for _, candidate := range s.Candidates(getenv) {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		if !utf8.Valid(data) {
			continue
		}
		return s.Parse(string(data)), candidate, true
	}
	return nil, "", false
}

func bashCandidates(getenv Getenv) []string {
	if path := getenv("HISTFILE"); path != "" {
		return []string{path}
	}
	if home := getenv("HOME"); home != "" {
		return []string{filepath.Join(home, ".bash_history")}
	}
	return nil
}

// zsh has no single conventional file name, so the common ones are tried in
// order.
var zshFileNames = []string{".histfile", ".zhistory", ".zsh_history"}

func zshCandidates(getenv Getenv) []string {
	if path := getenv("HISTFILE"); path != "" {
		return []string{path}
	}
	home := getenv("HOME")
	if home == "" {
		return nil
	}
	paths := make([]string, 0, len(zshFileNames))
	for _, name := range zshFileNames {
		paths = append(paths, filepath.Join(home, name))
	}
	return paths
}

func nushellCandidates(getenv Getenv) []string {
	home := getenv("HOME")
	var paths []string
	if home != "" {
		paths = append(paths, filepath.Join(home, "Library", "Application Support", "nu", "history.txt"))
	}
	if base := xdgDir(getenv, "XDG_CONFIG_HOME", ".config"); base != "" {
		paths = append(paths, filepath.Join(base, "nushell", "history.txt"))
	}
	return paths
}

func fishCandidates(getenv Getenv) []string {
	base := xdgDir(getenv, "XDG_DATA_HOME", filepath.Join(".local", "share"))
	if base == "" {
		return nil
	}
	return []string{filepath.Join(base, "fish", "fish_history")}
}

// xdgDir returns $key, or $HOME/fallback when it is unset.
func xdgDir(getenv Getenv, key, fallback string) string {
	if dir := getenv(key); dir != "" {
		return dir
	}
	if home := getenv("HOME"); home != "" {
		return filepath.Join(home, fallback)
	}
	return ""
}

func parsePlain(text string) []CommandLine {
	var lines []CommandLine
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, CommandLine{Text: line})
	}
	return lines
}

// bashTimestampRe matches the comment lines bash writes when HISTTIMEFORMAT
// is set.
var bashTimestampRe = regexp.MustCompile(`^#\d+$`)

func parseBash(text string) []CommandLine {
	lines := parsePlain(text)
	kept := lines[:0]
	for _, line := range lines {
		if bashTimestampRe.MatchString(line.Text) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

// zshExtendedRe matches the EXTENDED_HISTORY prefix ": <start>:<elapsed>;".
var zshExtendedRe = regexp.MustCompile(`^: *\d+:\d+;`)

func parseZsh(text string) []CommandLine {
	lines := parsePlain(text)
	for i, line := range lines {
		lines[i].Text = zshExtendedRe.ReplaceAllString(line.Text, "")
	}
	return lines
}
