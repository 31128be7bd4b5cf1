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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTableCaseFolding(t *testing.T) {
	st := NewSymbolTable(Strict)
	require.NoError(t, st.DefineConstant("Width", "16"))

	for _, name := range []string{"width", "WIDTH", "WiDtH"} {
		v, ok := st.LookupConstant(name)
		require.True(t, ok, name)
		assert.Equal(t, "16", v)
	}

	require.NoError(t, st.DefineMacro(Macro{Name: "Emit", Body: []string{" nop"}}))
	_, ok := st.LookupMacro("EMIT")
	assert.True(t, ok)
}

func TestSymbolTableStrict(t *testing.T) {
	st := NewSymbolTable(Strict)
	require.NoError(t, st.DefineConstant("a", "1"))
	err := st.DefineConstant("A", "2")
	require.ErrorIs(t, err, ErrRedefined)

	v, _ := st.LookupConstant("a")
	assert.Equal(t, "1", v, "failed redefinition must not overwrite")

	require.NoError(t, st.DefineMacro(Macro{Name: "m"}))
	require.ErrorIs(t, st.DefineMacro(Macro{Name: "M"}), ErrRedefined)
}

func TestSymbolTableLazy(t *testing.T) {
	st := NewSymbolTable(Lazy)
	require.NoError(t, st.DefineConstant("a", "1"))
	require.NoError(t, st.DefineConstant("A", "2"))

	v, _ := st.LookupConstant("a")
	assert.Equal(t, "2", v)
}

func TestConstantAndMacroShareAName(t *testing.T) {
	st := NewSymbolTable(Strict)
	require.NoError(t, st.DefineConstant("x", "1"))
	require.NoError(t, st.DefineMacro(Macro{Name: "x"}))

	_, cok := st.LookupConstant("x")
	_, mok := st.LookupMacro("x")
	assert.True(t, cok)
	assert.True(t, mok)
}

func TestBindTemporaryLIFO(t *testing.T) {
	st := NewSymbolTable(Strict)
	require.NoError(t, st.DefineConstant("x", "1"))

	// strict mode never applies to temporary bindings
	b1 := st.BindTemporary("X", "2")
	v, _ := st.LookupConstant("x")
	assert.Equal(t, "2", v)

	b2 := st.BindTemporary("x", "3")
	v, _ = st.LookupConstant("x")
	assert.Equal(t, "3", v)

	st.Unbind(b2)
	v, _ = st.LookupConstant("x")
	assert.Equal(t, "2", v)

	st.Unbind(b1)
	v, _ = st.LookupConstant("x")
	assert.Equal(t, "1", v)
}

func TestBindTemporaryAbsent(t *testing.T) {
	st := NewSymbolTable(Strict)
	b := st.BindTemporary("ghost", "boo")
	_, ok := st.LookupConstant("ghost")
	require.True(t, ok)

	st.Unbind(b)
	_, ok = st.LookupConstant("ghost")
	assert.False(t, ok, "absent binding must be deleted, not emptied")
}
