// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "1.4.0"
	assert.Equal(t, "1.4.0", Get())

	Version = ""
	assert.Equal(t, "dev", Get())
}

func TestString(t *testing.T) {
	origV, origC, origD := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origV, origC, origD })

	Version, GitCommit, BuildDate = "1.4.0", "", ""
	assert.Equal(t, "1.4.0", String())

	GitCommit = "abc1234"
	assert.Equal(t, "1.4.0 (commit abc1234)", String())

	BuildDate = "2026-10-01"
	assert.Equal(t, "1.4.0 (commit abc1234) built 2026-10-01", String())
}
