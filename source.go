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
	"bufio"
	"io"
	"strings"
)

// lineSource is a resumable pull-based sequence of raw lines. Block capture
// pulls from the same source the driver is reading, so the cursor must
// advance for both; sources are consumed by reference, never restarted.
type lineSource interface {
	// Next returns the next line without its line ending. ok is false once
	// the source is exhausted.
	Next() (line string, ok bool, err error)
}

// readerSource yields lines from an io.Reader. This is the file case.
type readerSource struct {
	r *bufio.Reader
}

func newReaderSource(r io.Reader) *readerSource {
	return &readerSource{r: bufio.NewReader(r)}
}

func (s *readerSource) Next() (string, bool, error) {
	line, err := s.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, err
	}
	if line == "" && err == io.EOF {
		return "", false, nil
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}

// sliceSource yields lines captured from a macro body or a conditional
// branch.
type sliceSource struct {
	lines []string
	pos   int
}

func (s *sliceSource) Next() (string, bool, error) {
	if s.pos >= len(s.lines) {
		return "", false, nil
	}
	line := s.lines[s.pos]
	s.pos++
	return line, true, nil
}
