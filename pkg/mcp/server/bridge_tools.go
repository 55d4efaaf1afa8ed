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

package server

import (
	"github.com/teradata-labs/testlink-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/testlink-mcp/pkg/testlink"
)

// ============================================================================
// Tool annotation helpers
// ============================================================================

func boolP(b bool) *bool { return &b }

// readOnlyAnnotation returns annotations for tools that only read data.
func readOnlyAnnotation() *protocol.ToolAnnotations {
	return &protocol.ToolAnnotations{
		ReadOnlyHint:    boolP(true),
		DestructiveHint: boolP(false),
		IdempotentHint:  boolP(true),
	}
}

// destructiveAnnotation returns annotations for tools that remove or retire data.
func destructiveAnnotation() *protocol.ToolAnnotations {
	return &protocol.ToolAnnotations{
		ReadOnlyHint:    boolP(false),
		DestructiveHint: boolP(true),
	}
}

// mutatingAnnotation returns annotations for tools that create or update data.
func mutatingAnnotation() *protocol.ToolAnnotations {
	return &protocol.ToolAnnotations{
		ReadOnlyHint:    boolP(false),
		DestructiveHint: boolP(false),
	}
}

// ============================================================================
// Schema helpers
// ============================================================================

// idType accepts identifiers sent either as strings or as JSON integers.
var idType = []string{"string", "integer"}

type schemaProperty struct {
	name     string
	schema   map[string]interface{}
	required bool
}

func prop(name string, typ interface{}, desc string) schemaProperty {
	return schemaProperty{name: name, schema: map[string]interface{}{"type": typ, "description": desc}}
}

func reqProp(name string, typ interface{}, desc string) schemaProperty {
	p := prop(name, typ, desc)
	p.required = true
	return p
}

func idProp(name, desc string) schemaProperty {
	return prop(name, idType, desc)
}

func reqIDProp(name, desc string) schemaProperty {
	return reqProp(name, idType, desc)
}

// idListProp is a required, non-empty array of identifiers.
func idListProp(name, desc string) schemaProperty {
	p := reqProp(name, "array", desc)
	p.schema["items"] = map[string]interface{}{"type": idType}
	p.schema["minItems"] = 1
	return p
}

// dataProp is the required "data" object. Its fields are documented for
// clients; required fields inside it are enforced by the mapper so that
// every missing field is reported at once.
func dataProp(desc string, fields ...schemaProperty) schemaProperty {
	p := reqProp("data", "object", desc)
	if len(fields) > 0 {
		p.schema["properties"] = properties(fields)
	}
	return p
}

func properties(props []schemaProperty) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for _, p := range props {
		out[p.name] = p.schema
	}
	return out
}

func objectSchema(props ...schemaProperty) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties(props),
	}
	var required []string
	for _, p := range props {
		if p.required {
			required = append(required, p.name)
		}
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// testCaseFieldProps documents the editable test case fields.
func testCaseFieldProps() []schemaProperty {
	return []schemaProperty{
		prop("name", "string", "Test case name"),
		prop("summary", "string", "Summary (HTML allowed)"),
		prop("preconditions", "string", "Preconditions (HTML allowed)"),
		prop("steps", "array", "Steps: objects with step_number, actions, expected_results, execution_type"),
		prop("importance", "integer", "Importance: 1 low, 2 medium, 3 high"),
		prop("execution_type", "integer", "Execution type: 1 manual, 2 automated"),
		prop("status", "integer", "Status 1-7; 7 marks the test case obsolete"),
		prop("estimated_execution_duration", "number", "Estimated execution time in minutes"),
	}
}

// ============================================================================
// Catalog
// ============================================================================

// buildOperations returns the operation catalog in its published order.
// Called once during construction.
func (b *TestLinkBridge) buildOperations() []operation {
	ro := readOnlyAnnotation()
	mut := mutatingAnnotation()
	del := destructiveAnnotation()

	op := func(name, desc string, schema map[string]interface{}, ann *protocol.ToolAnnotations, run runFunc) operation {
		return operation{
			tool: protocol.Tool{Name: name, Description: desc, InputSchema: schema, Annotations: ann},
			run:  run,
		}
	}

	createFields := append([]schemaProperty{
		prop("testprojectid", idType, "Test project ID"),
		prop("testsuiteid", idType, "Test suite ID"),
		prop("authorlogin", "string", "Login of the author"),
	}, testCaseFieldProps()...)

	return []operation{
		// Test cases
		op("read_test_case", "Read a test case from TestLink by numeric ID or external ID (e.g. ACX-50140).", objectSchema(
			reqIDProp("test_case_id", "Test case ID, numeric (50140) or external (ACX-50140)"),
			prop("version", "integer", "Test case version (optional, latest when omitted)"),
		), ro, b.handleReadTestCase),
		op("update_test_case", "Update a test case. Only the supplied fields are changed.", objectSchema(
			reqIDProp("test_case_id", "Test case ID, numeric or external"),
			dataProp("Fields to update", testCaseFieldProps()...),
		), mut, b.handleUpdateTestCase),
		op("create_test_case", "Create a new test case. data requires testprojectid, testsuiteid, name and authorlogin.", objectSchema(
			dataProp("Test case data", createFields...),
		), mut, b.handleCreateTestCase),
		op("delete_test_case", "Delete a test case. TestLink keeps the record and marks it obsolete (status 7).", objectSchema(
			reqIDProp("test_case_id", "Test case ID to delete"),
		), del, b.handleDeleteTestCase),
		op("archive_test_case", "Archive a test case: marks it obsolete and prefixes its summary with [ARCHIVED].", objectSchema(
			reqIDProp("test_case_id", "Test case ID to archive"),
		), del, b.handleArchiveTestCase),
		op("bulk_update_test_cases", "Apply the same update to several test cases. Each ID reports its own outcome.", objectSchema(
			idListProp("test_case_ids", "Test case IDs to update"),
			dataProp("Fields to apply to every test case", testCaseFieldProps()...),
		), mut, b.handleBulkUpdateTestCases),
		op("search_test_cases", "Find test cases in a project whose name matches exactly.", objectSchema(
			reqIDProp("project_id", "Test project ID"),
			reqProp("search_text", "string", "Test case name to look for"),
		), ro, b.handleSearchTestCases),

		// Projects
		op("list_projects", "List all test projects.", objectSchema(), ro, b.handleListProjects),
		op("create_project", "Create a test project. data requires name and prefix.", objectSchema(
			dataProp("Project data",
				prop("name", "string", "Project name"),
				prop("prefix", "string", "Test case prefix, e.g. ACX"),
				prop("notes", "string", "Project notes"),
				prop("active", "integer", "1 active, 0 inactive"),
				prop("is_public", "integer", "1 public, 0 private"),
				prop("options", "object", "Feature toggles: requirements_enabled, test_priority_enabled, automation_enabled, inventory_enabled"),
			),
		), mut, b.handleCreateProject),
		gapOperation(testlink.GapUpdateProject, objectSchema(
			idProp("project_id", "Test project ID"),
			prop("data", "object", "Project fields"),
		)),
		op("delete_project", "Delete a test project and everything in it, identified by its test case prefix.", objectSchema(
			reqProp("prefix", "string", "Test case prefix of the project"),
		), del, b.handleDeleteProject),

		// Test suites
		op("list_test_suites", "List the top-level test suites of a project.", objectSchema(
			reqIDProp("project_id", "Test project ID"),
		), ro, b.handleListTestSuites),
		op("read_test_suite", "Read a test suite by ID.", objectSchema(
			reqIDProp("suite_id", "Test suite ID"),
		), ro, b.handleReadTestSuite),
		op("list_test_cases_in_suite", "List every test case in a test suite, including nested suites.", objectSchema(
			reqIDProp("suite_id", "Test suite ID"),
		), ro, b.handleListTestCasesInSuite),
		op("create_test_suite", "Create a test suite in a project, optionally nested under a parent suite.", objectSchema(
			reqIDProp("project_id", "Test project ID"),
			reqProp("suite_name", "string", "Name of the new suite"),
			prop("details", "string", "Suite description"),
			idProp("parent_id", "Parent suite ID for nested suites"),
		), mut, b.handleCreateTestSuite),
		op("update_test_suite", "Update a test suite. data requires project_id and one of name, details, order.", objectSchema(
			reqIDProp("suite_id", "Test suite ID"),
			dataProp("Suite fields",
				prop("project_id", idType, "Test project ID the suite belongs to"),
				prop("name", "string", "New suite name"),
				prop("details", "string", "New suite description"),
				prop("order", "integer", "Display order"),
			),
		), mut, b.handleUpdateTestSuite),
		gapOperation(testlink.GapDeleteTestSuite, objectSchema(
			idProp("suite_id", "Test suite ID"),
		)),

		// Test plans
		op("list_test_plans", "List the test plans of a project.", objectSchema(
			reqIDProp("project_id", "Test project ID"),
		), ro, b.handleListTestPlans),
		op("create_test_plan", "Create a test plan. data requires project_id and name.", objectSchema(
			dataProp("Test plan data",
				prop("project_id", idType, "Test project ID"),
				prop("name", "string", "Test plan name"),
				prop("notes", "string", "Test plan notes"),
				prop("active", "integer", "1 active (default), 0 inactive"),
				prop("is_public", "integer", "1 public (default), 0 private"),
			),
		), mut, b.handleCreateTestPlan),
		gapOperation(testlink.GapUpdateTestPlan, objectSchema(
			idProp("plan_id", "Test plan ID"),
			prop("data", "object", "Test plan fields"),
		)),
		gapOperation(testlink.GapDeleteTestPlan, objectSchema(
			idProp("plan_id", "Test plan ID"),
		)),

		// Builds
		op("list_builds", "List the builds of a test plan.", objectSchema(
			reqIDProp("plan_id", "Test plan ID"),
		), ro, b.handleListBuilds),
		op("create_build", "Create a build in a test plan. data requires plan_id and name.", objectSchema(
			dataProp("Build data",
				prop("plan_id", idType, "Test plan ID"),
				prop("name", "string", "Build name"),
				prop("notes", "string", "Build notes"),
				prop("active", "integer", "1 active (default), 0 inactive"),
				prop("open", "integer", "1 open (default), 0 closed"),
				prop("release_date", "string", "Release date, YYYY-MM-DD (default today)"),
			),
		), mut, b.handleCreateBuild),
		gapOperation(testlink.GapUpdateBuild, objectSchema(
			idProp("build_id", "Build ID"),
			prop("data", "object", "Build fields"),
		)),
		op("delete_build", "Close a build so no more results can be recorded against it. TestLink has no build deletion.", objectSchema(
			reqIDProp("build_id", "Build ID"),
		), del, b.handleDeleteBuild),

		// Executions
		op("read_test_execution", "Read execution results of a test plan, or the last result of one test case.", objectSchema(
			reqIDProp("plan_id", "Test plan ID"),
			idProp("build_id", "Build ID (optional)"),
			idProp("test_case_id", "Test case ID (optional); returns its last result"),
		), ro, b.handleReadTestExecution),
		op("create_test_execution", "Record an execution result. data requires test_case_id, plan_id, build_id and status (p, f, b, n).", objectSchema(
			dataProp("Execution data",
				prop("test_case_id", idType, "Test case ID, numeric or external"),
				prop("plan_id", idType, "Test plan ID"),
				prop("build_id", idType, "Build ID"),
				prop("status", "string", "p/passed, f/failed, b/blocked, n/not_run"),
				prop("notes", "string", "Execution notes"),
				prop("platform_id", idType, "Platform ID"),
				prop("platform_name", "string", "Platform name"),
				prop("user", "string", "Login to record the result for"),
				prop("overwrite", "boolean", "Replace the latest result instead of adding one"),
			),
		), mut, b.handleCreateTestExecution),
		gapOperation(testlink.GapUpdateTestExecution, objectSchema(
			idProp("execution_id", "Execution ID"),
			prop("data", "object", "Execution fields"),
		)),
		op("delete_test_execution", "Withdraw the latest result of a test case in a build by resetting it to not run.", objectSchema(
			reqIDProp("test_case_id", "Test case ID, numeric or external"),
			reqIDProp("plan_id", "Test plan ID"),
			reqIDProp("build_id", "Build ID"),
		), del, b.handleDeleteTestExecution),

		// Requirements
		op("list_requirements", "List the requirements of a project.", objectSchema(
			reqIDProp("project_id", "Test project ID"),
		), ro, b.handleListRequirements),
		gapOperation(testlink.GapCreateRequirement, objectSchema(
			prop("data", "object", "Requirement fields"),
		)),
		gapOperation(testlink.GapUpdateRequirement, objectSchema(
			idProp("requirement_id", "Requirement ID"),
			prop("data", "object", "Requirement fields"),
		)),
		gapOperation(testlink.GapDeleteRequirement, objectSchema(
			idProp("requirement_id", "Requirement ID"),
		)),

		// Connectivity
		op("check_connection", "Check that TestLink is reachable and the configured API key is valid.", objectSchema(), ro, b.handleCheckConnection),
	}
}

// gapOperation publishes a capability gap as a tool that always fails.
func gapOperation(gap testlink.Gap, schema map[string]interface{}) operation {
	g := gap
	return operation{
		tool: protocol.Tool{
			Name:        g.Operation,
			Description: "Not supported by the TestLink API: " + g.Reason + ".",
			InputSchema: schema,
			Annotations: readOnlyAnnotation(),
		},
		gap: &g,
	}
}
