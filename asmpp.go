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

// Package asmpp is a line-oriented macro preprocessor for assembly-like
// source. It resolves #include, #constant, #macro/#endmacro and
// #if/#endif directives into a flat stream of plain lines, substituting
// constants in parameter position and expanding macros with dynamically
// scoped parameters.
//
// Block capture is a flat scan: a #macro or #if block ends at the first
// #endmacro/#endif line, with no pairing of nested blocks of the same
// kind. There is no cycle detection; a macro that invokes itself or a
// file that includes itself recurses until resources run out, unless an
// explicit MaxDepth is set.
package asmpp

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Processor drives the preprocessing of one input through to one output.
// It holds the single live symbol table that every recursive descent
// (included file, macro body, conditional branch) reads and mutates.
type Processor struct {
	IncludeDirs []string
	MaxDepth    int // abort beyond this many nested drives; 0 means unlimited

	symbols *SymbolTable
	buf     bytes.Buffer
	dir     string // directory of the file currently being read
	depth   int
}

func NewProcessor(mode Mode) *Processor {
	return &Processor{symbols: NewSymbolTable(mode)}
}

// Predefine installs a constant before processing begins (the -D flag).
// Predefines participate in the strict-mode redefinition check.
func (p *Processor) Predefine(name, value string) error {
	return p.symbols.DefineConstant(name, value)
}

// ParseDefine splits a -D style argument into name and value. A bare name
// defines the value "1".
func ParseDefine(s string) (name, value string) {
	if i := strings.IndexByte(s, '='); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, "1"
}

// Process preprocesses the named file and writes the expanded output to w.
// Output is buffered until the whole run succeeds: on error nothing is
// written to w. Each call starts with fresh output; the symbol table
// persists across calls.
func (p *Processor) Process(filename string, w io.Writer) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	p.buf.Reset()
	saved := p.dir
	p.dir = filepath.Dir(filename)
	err = p.drive(shortPath(filename), newReaderSource(f))
	p.dir = saved
	if err != nil {
		return err
	}
	_, err = w.Write(p.buf.Bytes())
	return err
}

// ProcessReader is Process for an already-open stream (stdin, tests).
// Includes resolve against the include dirs and the working directory.
func (p *Processor) ProcessReader(name string, r io.Reader, w io.Writer) error {
	p.buf.Reset()
	if err := p.drive(name, newReaderSource(r)); err != nil {
		return err
	}
	_, err := w.Write(p.buf.Bytes())
	return err
}

// drive is the recursive engine: it pulls lines from src until exhaustion,
// classifies each, and dispatches directives or emits content. Macro
// bodies, conditional branches, and included files all come back through
// here with the same symbol table.
func (p *Processor) drive(name string, src lineSource) error {
	p.depth++
	defer func() { p.depth-- }()
	if p.MaxDepth > 0 && p.depth > p.MaxDepth {
		return fmt.Errorf("%s: %w", name, ErrDepth)
	}

	lineNo := 0
	for {
		line, ok, err := src.Next()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if !ok {
			return nil
		}
		lineNo++
		line = strings.TrimRight(line, " \t")
		if strings.HasPrefix(line, "#") {
			if err := p.directive(name, lineNo, line, src); err != nil {
				return err
			}
			continue
		}
		if err := p.content(name, lineNo, line); err != nil {
			return err
		}
	}
}

var reDirective = regexp.MustCompile(`^#\s*([A-Za-z]\w*)(?:\s+(.*))?$`)

func (p *Processor) directive(name string, lineNo int, line string, src lineSource) error {
	m := reDirective.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%s:%d: %w: %q", name, lineNo, ErrUnknownDirective, line)
	}
	keyword, arg := strings.ToLower(m[1]), m[2]

	switch keyword {
	case "include":
		return p.includeFile(name, lineNo, strings.TrimSpace(arg))

	case "constant":
		return p.defineConstant(name, lineNo, arg)

	case "macro":
		return p.defineMacro(name, lineNo, arg, src)

	case "endmacro", "endif":
		return fmt.Errorf("%s:%d: %w: #%s outside a block", name, lineNo, ErrSyntax, keyword)
	}

	if strings.HasPrefix(keyword, "if") {
		return p.conditional(name, lineNo, keyword, strings.TrimSpace(arg), src)
	}
	return fmt.Errorf("%s:%d: %w: %q", name, lineNo, ErrUnknownDirective, line)
}

// defineConstant handles "#constant NAME VALUE". The value is everything
// after the first whitespace run following the name, internal spacing
// preserved; it may be empty.
func (p *Processor) defineConstant(name string, lineNo int, arg string) error {
	cname, rest, ok := splitName(arg)
	if !ok {
		return fmt.Errorf("%s:%d: %w: bad #constant", name, lineNo, ErrSyntax)
	}
	if err := p.symbols.DefineConstant(cname, rest); err != nil {
		return fmt.Errorf("%s:%d: %w", name, lineNo, err)
	}
	log.Debugw("constant defined", "name", cname, "value", rest)
	return nil
}

// defineMacro handles "#macro NAME P1, P2, ..." and captures raw body
// lines up to the first #endmacro.
func (p *Processor) defineMacro(name string, lineNo int, arg string, src lineSource) error {
	mname, rest, ok := splitName(arg)
	if !ok {
		return fmt.Errorf("%s:%d: %w: bad #macro", name, lineNo, ErrSyntax)
	}
	var formals []string
	if rest != "" {
		for _, f := range strings.Split(rest, ",") {
			f = strings.TrimSpace(f)
			if !reIdent.MatchString(f) {
				return fmt.Errorf("%s:%d: %w: bad macro parameter %q", name, lineNo, ErrSyntax, f)
			}
			formals = append(formals, f)
		}
	}
	body, err := captureBlock(src, "endmacro")
	if err != nil {
		return fmt.Errorf("%s:%d: #macro %s: %w", name, lineNo, mname, err)
	}
	if err := p.symbols.DefineMacro(Macro{Name: mname, Formals: formals, Body: body}); err != nil {
		return fmt.Errorf("%s:%d: %w", name, lineNo, err)
	}
	log.Debugw("macro defined", "name", mname, "formals", formals, "lines", len(body))
	return nil
}

// conditional handles the #if family: #if[n][c|m] NAME. The block is
// always captured up to the first #endif; it is replayed when the
// (possibly negated) predicate holds and discarded without side effects
// otherwise.
func (p *Processor) conditional(name string, lineNo int, keyword, arg string, src lineSource) error {
	sel := keyword[len("if"):]
	negate := strings.HasPrefix(sel, "n")
	if negate {
		sel = sel[1:]
	}
	if sel != "" && sel != "c" && sel != "m" {
		return fmt.Errorf("%s:%d: %w: #%s", name, lineNo, ErrUnknownDirective, keyword)
	}
	if !reIdent.MatchString(arg) {
		return fmt.Errorf("%s:%d: %w: #%s wants a single name", name, lineNo, ErrSyntax, keyword)
	}
	body, err := captureBlock(src, "endif")
	if err != nil {
		return fmt.Errorf("%s:%d: #%s %s: %w", name, lineNo, keyword, arg, err)
	}

	var defined bool
	switch sel {
	case "c":
		_, defined = p.symbols.LookupConstant(arg)
	case "m":
		_, defined = p.symbols.LookupMacro(arg)
	default:
		_, c := p.symbols.LookupConstant(arg)
		_, m := p.symbols.LookupMacro(arg)
		defined = c || m
	}
	replay := defined != negate
	log.Debugw("conditional", "directive", keyword, "name", arg, "replay", replay)
	if !replay {
		return nil
	}
	return p.drive(fmt.Sprintf("%s:%d:#%s %s", name, lineNo, keyword, arg), &sliceSource{lines: body})
}

// captureBlock consumes lines up to and including the first terminator
// line, whitespace-tolerant. The scan is flat: nested blocks of the same
// kind close on the first terminator, not a matching one.
func captureBlock(src lineSource, terminator string) ([]string, error) {
	var body []string
	for {
		line, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnclosed
		}
		if strings.EqualFold(strings.TrimSpace(line), "#"+terminator) {
			return body, nil
		}
		body = append(body, line)
	}
}

// includeFile handles "#include PATH": the resolved file's lines run
// through the same driver against the same symbol table, so definitions
// flow into and out of the include.
func (p *Processor) includeFile(name string, lineNo int, path string) error {
	if len(path) >= 2 && (path[0] == '"' && path[len(path)-1] == '"' || path[0] == '<' && path[len(path)-1] == '>') {
		path = path[1 : len(path)-1]
	}
	if path == "" {
		return fmt.Errorf("%s:%d: %w: bad #include", name, lineNo, ErrSyntax)
	}
	resolved, err := p.resolve(path)
	if err != nil {
		return fmt.Errorf("%s:%d: include %q: %w", name, lineNo, path, err)
	}
	f, err := os.Open(resolved)
	if err != nil {
		return fmt.Errorf("%s:%d: include %q: %w", name, lineNo, path, err)
	}
	defer f.Close()
	log.Debugw("include", "path", path, "resolved", resolved)
	saved := p.dir
	p.dir = filepath.Dir(resolved)
	err = p.drive(shortPath(resolved), newReaderSource(f))
	p.dir = saved
	return err
}

// resolve tries the including file's directory, then the include dirs,
// then the path as given.
func (p *Processor) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		if fileExists(path) {
			return filepath.Clean(path), nil
		}
		return "", os.ErrNotExist
	}
	if p.dir != "" {
		if cand := filepath.Join(p.dir, path); fileExists(cand) {
			return filepath.Clean(cand), nil
		}
	}
	for _, dir := range p.IncludeDirs {
		if cand := filepath.Join(dir, path); fileExists(cand) {
			return filepath.Clean(cand), nil
		}
	}
	if fileExists(path) {
		return path, nil
	}
	return "", fmt.Errorf("cannot resolve %q", path)
}

// content handles an ordinary line: parse, expand a macro in command
// position, or substitute constants in parameter position and emit.
func (p *Processor) content(name string, lineNo int, line string) error {
	stmt, err := ParseLine(line)
	if err != nil {
		return fmt.Errorf("%s:%d: %w", name, lineNo, err)
	}
	if stmt.Command != "" {
		if mac, ok := p.symbols.LookupMacro(stmt.Command); ok {
			return p.expand(name, lineNo, stmt, mac)
		}
		for i, param := range stmt.Params {
			if v, ok := p.symbols.LookupConstant(param); ok {
				stmt.Params[i] = v
			}
		}
	}
	p.emit(stmt.Format())
	return nil
}

// expand replays a macro body. Parameters are resolved against the
// constant table exactly once, as it stands before any formal is rebound;
// then each formal shadows its prior binding for the duration of the body
// and is restored LIFO afterwards. The invocation line produces no direct
// content of its own: only its trailing comment is emitted.
func (p *Processor) expand(name string, lineNo int, stmt Statement, mac Macro) error {
	if len(stmt.Params) != len(mac.Formals) {
		return fmt.Errorf("%s:%d: macro %s wants %d parameters, got %d: %w",
			name, lineNo, mac.Name, len(mac.Formals), len(stmt.Params), ErrArity)
	}
	args := make([]string, len(stmt.Params))
	for i, param := range stmt.Params {
		if v, ok := p.symbols.LookupConstant(param); ok {
			args[i] = v
		} else {
			args[i] = param
		}
	}
	if stmt.Comment != "" {
		p.emit(Statement{Comment: stmt.Comment}.Format())
	}
	log.Debugw("macro expand", "name", mac.Name, "args", args)

	undo := make([]Binding, len(mac.Formals))
	for i, formal := range mac.Formals {
		undo[i] = p.symbols.BindTemporary(formal, args[i])
	}
	err := p.drive("macro "+mac.Name, &sliceSource{lines: mac.Body})
	for i := len(undo) - 1; i >= 0; i-- {
		p.symbols.Unbind(undo[i])
	}
	return err
}

func (p *Processor) emit(line string) {
	p.buf.WriteString(line)
	p.buf.WriteByte('\n')
}

// splitName peels a leading identifier off a directive argument and
// returns the remainder with separating whitespace removed.
func splitName(arg string) (name, rest string, ok bool) {
	arg = strings.TrimLeft(arg, " \t")
	i := 0
	for i < len(arg) && (arg[i] == '_' || arg[i] >= 'a' && arg[i] <= 'z' || arg[i] >= 'A' && arg[i] <= 'Z' || i > 0 && arg[i] >= '0' && arg[i] <= '9') {
		i++
	}
	if i == 0 {
		return "", "", false
	}
	if i < len(arg) && arg[i] != ' ' && arg[i] != '\t' {
		return "", "", false
	}
	return arg[:i], strings.TrimLeft(arg[i:], " \t"), true
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func shortPath(p string) string {
	if p == "" {
		return p
	}
	return filepath.Base(p)
}
