package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/brewfresh/internal/analyzer"
)

// Format selects how the report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("invalid format %q (must be text, json or yaml)", s)
}

// Report is the result of one correlation run.
type Report struct {
	Findings []analyzer.Finding       `json:"findings" yaml:"findings"`
	Upgrade  *analyzer.Recommendation `json:"upgrade" yaml:"upgrade"`
	Command  string                   `json:"command,omitempty" yaml:"command,omitempty"`
}

// NewReport builds a report with its upgrade recommendation.
func NewReport(findings []analyzer.Finding) *Report {
	if findings == nil {
		findings = []analyzer.Finding{}
	}
	rec := analyzer.Recommend(findings)
	return &Report{
		Findings: findings,
		Upgrade:  rec,
		Command:  rec.Command(),
	}
}

// Render writes the report to w in the given format.
func (r *Report) Render(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		data, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		return enc.Close()
	default:
		r.renderText(w)
		return nil
	}
}

func (r *Report) renderText(w io.Writer) {
	if len(r.Findings) == 0 {
		fmt.Fprintln(w, "No recently used executables are outdated.")
		return
	}

	fmt.Fprintln(w, Header.Sprint("Recently used executables with updates available:"))
	fmt.Fprintln(w)

	t := newTable("Executable", "Package", "Installed", "Available")
	for _, f := range r.Findings {
		name := f.Package.Name
		if f.Package.Pinned {
			name += " (pinned)"
		}
		t.addRow(
			[]string{f.Executable, name, f.Package.Installed(), f.Package.CurrentVersion},
			nil, Package, Stale, Fresh,
		)
	}
	t.render(w)

	if r.Command != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Upgrade with:")
		fmt.Fprintf(w, "  %s\n", Command.Sprint(r.Command))
	}
	if len(r.Upgrade.Pinned) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, Dim.Sprintf("Pinned, run `brew unpin` first: %s", strings.Join(r.Upgrade.Pinned, " ")))
	}
}
