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

import "errors"

// Every error is fatal: the first one raised unwinds the whole run and no
// output is written. These sentinels classify the failure; the wrapping
// error carries the offending file, line, and text.
var (
	ErrSyntax           = errors.New("syntax error")
	ErrRedefined        = errors.New("already defined")
	ErrArity            = errors.New("wrong number of parameters")
	ErrUnclosed         = errors.New("unclosed block")
	ErrUnknownDirective = errors.New("unknown directive")
	ErrDepth            = errors.New("expansion depth limit exceeded")
)
