/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package asmpp

import (
	"fmt"
	"regexp"
	"strings"
)

// Statement is one parsed content line. Blank, comment-only, and label-only
// lines have an empty Command and nil Params.
type Statement struct {
	Label   string
	Command string
	Params  []string
	Comment string // includes the whitespace run preceding ';'
}

var (
	// label at column 0, optionally followed by nothing but a comment
	reLabelOnly = regexp.MustCompile(`^([A-Za-z_]\w*)?(\s*;.*)?$`)
	// label slot, mandatory whitespace, command token
	reStmtHead = regexp.MustCompile(`^([A-Za-z_]\w*)?\s+([A-Za-z_.]\w*)`)
	reIdent    = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// ParseLine parses one content line. Trailing whitespace must already be
// stripped; leading whitespace is significant (it marks an empty label
// slot). A line matching neither the label-only form nor the full form is a
// fatal syntax error.
func ParseLine(line string) (Statement, error) {
	if m := reLabelOnly.FindStringSubmatch(line); m != nil {
		return Statement{Label: m[1], Comment: m[2]}, nil
	}
	m := reStmtHead.FindStringSubmatch(line)
	if m == nil {
		return Statement{}, fmt.Errorf("%w: %q", ErrSyntax, line)
	}
	params, comment := splitParams(line[len(m[0]):])
	return Statement{Label: m[1], Command: m[2], Params: params, Comment: comment}, nil
}

// splitParams splits the parameter region on commas and detaches the
// trailing ';' comment. Commas and semicolons inside single or double
// quotes do not split. A small quote-state scanner beats a regex here:
// quoted parameters would force backtracking.
func splitParams(rest string) ([]string, string) {
	var params []string
	var quote byte
	start := 0
	flush := func(end int) {
		p := strings.TrimSpace(rest[start:end])
		if p != "" || len(params) > 0 {
			params = append(params, p)
		}
	}
	for i := 0; i < len(rest); i++ {
		ch := rest[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case ',':
			params = append(params, strings.TrimSpace(rest[start:i]))
			start = i + 1
		case ';':
			// the comment owns the whitespace run before ';'
			j := i
			for j > start && (rest[j-1] == ' ' || rest[j-1] == '\t') {
				j--
			}
			flush(j)
			return params, rest[j:]
		}
	}
	flush(len(rest))
	return params, ""
}

// Format renders the statement in canonical form: fixed slots joined by
// single spaces, parameters rejoined with ", ". Empty slots stay empty
// rather than collapsing, so an unlabeled line keeps its leading space.
func (s Statement) Format() string {
	if s.Command == "" {
		return s.Label + s.Comment
	}
	line := s.Label + " " + s.Command + " " + strings.Join(s.Params, ", ") + s.Comment
	return strings.TrimRight(line, " \t")
}
