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

package testlink

import "fmt"

// Gap is an action the TestLink XML-RPC API has no method for. A Gap can
// only produce an unsupported_operation error; it carries no invoker, so
// there is no path from a Gap to a backend call.
type Gap struct {
	Operation string
	Reason    string
}

// Err returns the permanent error for this gap.
func (g Gap) Err() error {
	return &Error{
		Kind:    KindUnsupported,
		Message: fmt.Sprintf("Operation %s is not supported by the TestLink API: %s", g.Operation, g.Reason),
	}
}

// Known capability gaps.
var (
	GapUpdateProject = Gap{"update_project", "test projects cannot be modified after creation"}

	GapDeleteTestSuite = Gap{"delete_test_suite", "test suites cannot be deleted through the API"}

	GapUpdateTestPlan = Gap{"update_test_plan", "test plans cannot be modified through the API"}
	GapDeleteTestPlan = Gap{"delete_test_plan", "test plans cannot be deleted through the API"}

	GapUpdateBuild = Gap{"update_build", "builds cannot be modified through the API; use delete_build to close one"}

	GapUpdateTestExecution = Gap{"update_test_execution", "recorded executions are immutable; report a new result instead"}

	GapCreateRequirement = Gap{"create_requirement", "requirements cannot be created through the API"}
	GapUpdateRequirement = Gap{"update_requirement", "requirements cannot be modified through the API"}
	GapDeleteRequirement = Gap{"delete_requirement", "requirements cannot be deleted through the API"}
)

// Gaps lists every known capability gap.
func Gaps() []Gap {
	return []Gap{
		GapUpdateProject,
		GapDeleteTestSuite,
		GapUpdateTestPlan,
		GapDeleteTestPlan,
		GapUpdateBuild,
		GapUpdateTestExecution,
		GapCreateRequirement,
		GapUpdateRequirement,
		GapDeleteRequirement,
	}
}
