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
	"strings"
)

// Mode is the redefinition policy for a run. It is fixed before processing
// starts and never changes mid-run.
type Mode int

const (
	Strict Mode = iota // redefining an existing name is an error
	Lazy               // redefinitions silently overwrite
)

// Macro is a named, parameterized block of raw source lines. The body is
// stored unexpanded and replayed through the full pipeline on every
// invocation.
type Macro struct {
	Name    string
	Formals []string
	Body    []string
}

// SymbolTable maps case-insensitive names to constant values and to macro
// definitions. Constants and macros live in separate maps, so a name may be
// both at once; context picks the map (parameter position vs command
// position). Exactly one table is live per run, threaded through every
// recursive descent.
type SymbolTable struct {
	mode      Mode
	constants map[string]string
	macros    map[string]Macro
}

func NewSymbolTable(mode Mode) *SymbolTable {
	return &SymbolTable{
		mode:      mode,
		constants: map[string]string{},
		macros:    map[string]Macro{},
	}
}

func (st *SymbolTable) DefineConstant(name, value string) error {
	key := strings.ToLower(name)
	if _, ok := st.constants[key]; ok && st.mode == Strict {
		return fmt.Errorf("constant %q %w", name, ErrRedefined)
	}
	st.constants[key] = value
	return nil
}

func (st *SymbolTable) DefineMacro(m Macro) error {
	key := strings.ToLower(m.Name)
	if _, ok := st.macros[key]; ok && st.mode == Strict {
		return fmt.Errorf("macro %q %w", m.Name, ErrRedefined)
	}
	st.macros[key] = m
	return nil
}

func (st *SymbolTable) LookupConstant(name string) (string, bool) {
	v, ok := st.constants[strings.ToLower(name)]
	return v, ok
}

func (st *SymbolTable) LookupMacro(name string) (Macro, bool) {
	m, ok := st.macros[strings.ToLower(name)]
	return m, ok
}

// Binding is the undo token produced by BindTemporary: the constant key and
// its prior value, or a record of its absence.
type Binding struct {
	key  string
	prev string
	had  bool
}

// BindTemporary rebinds name as a constant regardless of mode and returns an
// undo token. Macro formals are bound through here, so parameter shadowing
// is never a strict-mode redefinition.
func (st *SymbolTable) BindTemporary(name, value string) Binding {
	key := strings.ToLower(name)
	prev, had := st.constants[key]
	st.constants[key] = value
	return Binding{key: key, prev: prev, had: had}
}

// Unbind undoes a BindTemporary. Tokens from one invocation must unwind
// LIFO or shadowed bindings are restored out of order.
func (st *SymbolTable) Unbind(b Binding) {
	if b.had {
		st.constants[b.key] = b.prev
	} else {
		delete(st.constants, b.key)
	}
}
