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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Statement
	}{
		{
			"blank",
			"",
			Statement{},
		},
		{
			"comment only",
			"; just a note",
			Statement{Comment: "; just a note"},
		},
		{
			"indented comment",
			"   ; note",
			Statement{Comment: "   ; note"},
		},
		{
			"label only",
			"loop",
			Statement{Label: "loop"},
		},
		{
			"label with comment",
			"loop ; top of loop",
			Statement{Label: "loop", Comment: " ; top of loop"},
		},
		{
			"full line",
			"loop add r1, r2, r3 ; sum",
			Statement{Label: "loop", Command: "add", Params: []string{"r1", "r2", "r3"}, Comment: " ; sum"},
		},
		{
			"no label",
			" add r1, r2",
			Statement{Command: "add", Params: []string{"r1", "r2"}},
		},
		{
			"command only",
			" ret",
			Statement{Command: "ret"},
		},
		{
			"command with comment and no params",
			" ret ; done",
			Statement{Command: "ret", Comment: " ; done"},
		},
		{
			"dot command",
			" .db 1, 2, 3",
			Statement{Command: ".db", Params: []string{"1", "2", "3"}},
		},
		{
			"underscore label",
			"_start nop",
			Statement{Label: "_start", Command: "nop"},
		},
		{
			"double-quoted parameter with comma",
			` msg "a, b", r1`,
			Statement{Command: "msg", Params: []string{`"a, b"`, "r1"}},
		},
		{
			"single-quoted parameter with semicolon",
			" msg 'x;y'",
			Statement{Command: "msg", Params: []string{"'x;y'"}},
		},
		{
			"quote then comment",
			` msg "a;b" ; real`,
			Statement{Command: "msg", Params: []string{`"a;b"`}, Comment: " ; real"},
		},
		{
			"params trimmed after split",
			" add  r1 ,  r2",
			Statement{Command: "add", Params: []string{"r1", "r2"}},
		},
		{
			"empty parameter preserved",
			" op a,,b",
			Statement{Command: "op", Params: []string{"a", "", "b"}},
		},
		{
			"trailing comma yields empty parameter",
			" op a,",
			Statement{Command: "op", Params: []string{"a", ""}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	for _, line := range []string{
		" @bogus r1",
		"9label nop",
		"label 9cmd x",
		"  #constant A 1",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseLine(line)
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("ParseLine(%q) = %v, want syntax error", line, err)
			}
		})
	}
}

func TestStatementFormat(t *testing.T) {
	tests := []struct {
		name string
		stmt Statement
		want string
	}{
		{
			"full",
			Statement{Label: "l", Command: "add", Params: []string{"a", "b"}, Comment: " ; c"},
			"l add a, b ; c",
		},
		{
			"empty label keeps its slot",
			Statement{Command: "add", Params: []string{"a"}},
			" add a",
		},
		{
			"no params no comment",
			Statement{Label: "l", Command: "ret"},
			"l ret",
		},
		{
			"label only",
			Statement{Label: "l", Comment: " ; c"},
			"l ; c",
		},
		{
			"blank",
			Statement{},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stmt.Format(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
