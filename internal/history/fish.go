package history

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	fishCmdRe  = regexp.MustCompile(`^(?:-\s+|\s+)cmd: (.*)$`)
	fishWhenRe = regexp.MustCompile(`^(?:-\s+|\s+)when: (\d+)\s*$`)
)

// parseFish decodes fish_history. The file looks like YAML but is not
// guaranteed to be valid YAML, so it is read line by line:
//
//	- cmd: git status
//	  when: 1700000000
//	  paths:
//	    - /tmp
//
// A line starting with "-" opens a new record. The pending record is emitted
// at that point, or at end of input, only if it has both cmd and when; either
// way both fields are cleared so nothing carries into the next record.
func parseFish(text string) []CommandLine {
	var (
		lines   []CommandLine
		cmd     string
		haveCmd bool
		when    int64
		hasWhen bool
	)

	flush := func() {
		if haveCmd && hasWhen {
			lines = append(lines, CommandLine{Text: cmd, When: time.Unix(when, 0)})
		}
		cmd, haveCmd = "", false
		when, hasWhen = 0, false
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if strings.HasPrefix(line, "-") {
			flush()
		}

		if m := fishCmdRe.FindStringSubmatch(line); m != nil {
			cmd, haveCmd = m[1], true
			continue
		}
		if m := fishWhenRe.FindStringSubmatch(line); m != nil {
			ts, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				continue
			}
			when, hasWhen = ts, true
		}
	}
	flush()

	return lines
}
