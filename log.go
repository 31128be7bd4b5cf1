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

import "go.uber.org/zap"

var log = zap.NewNop().Sugar()

// UpdateLogger sets the package logger. The default logs nothing; the CLI
// installs a console logger when run with -v. Logging is tracing only and
// never substitutes for a fatal error.
func UpdateLogger(l *zap.SugaredLogger) {
	log = l
}
