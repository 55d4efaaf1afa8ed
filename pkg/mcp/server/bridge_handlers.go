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
	"context"

	"github.com/teradata-labs/testlink-mcp/pkg/testlink"
)

// idArgs holds the scalar arguments shared by most tools. Identifiers are
// decoded weakly, so 50140 and "50140" are the same ID.
type idArgs struct {
	TestCaseID string  `mapstructure:"test_case_id"`
	ProjectID  string  `mapstructure:"project_id"`
	SuiteID    string  `mapstructure:"suite_id"`
	PlanID     string  `mapstructure:"plan_id"`
	BuildID    *string `mapstructure:"build_id"`
	Version    *int    `mapstructure:"version"`
	Prefix     string  `mapstructure:"prefix"`
	SearchText string  `mapstructure:"search_text"`
	SuiteName  string  `mapstructure:"suite_name"`
	Details    *string `mapstructure:"details"`
	ParentID   *string `mapstructure:"parent_id"`
}

func decodeIDs(args map[string]interface{}) (idArgs, error) {
	var a idArgs
	err := testlink.Decode(args, &a)
	return a, err
}

// ============================================================================
// Tool handlers - Test cases
// ============================================================================

func (b *TestLinkBridge) handleReadTestCase(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.ReadTestCase(ctx, a.TestCaseID, a.Version)
}

func (b *TestLinkBridge) handleUpdateTestCase(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	var fields testlink.TestCaseFields
	if err := testlink.DecodeObject(args["data"], "data", &fields); err != nil {
		return nil, err
	}
	return b.client.UpdateTestCase(ctx, a.TestCaseID, fields)
}

func (b *TestLinkBridge) handleCreateTestCase(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var tc testlink.NewTestCase
	if err := testlink.DecodeObject(args["data"], "data", &tc); err != nil {
		return nil, err
	}
	return b.client.CreateTestCase(ctx, tc)
}

func (b *TestLinkBridge) handleDeleteTestCase(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.DeleteTestCase(ctx, a.TestCaseID)
}

func (b *TestLinkBridge) handleArchiveTestCase(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.ArchiveTestCase(ctx, a.TestCaseID)
}

func (b *TestLinkBridge) handleBulkUpdateTestCases(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	ids, err := testlink.DecodeIDList(args["test_case_ids"], "test_case_ids")
	if err != nil {
		return nil, err
	}
	var fields testlink.TestCaseFields
	if err := testlink.DecodeObject(args["data"], "data", &fields); err != nil {
		return nil, err
	}
	return b.client.BulkUpdateTestCases(ctx, ids, fields)
}

func (b *TestLinkBridge) handleSearchTestCases(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.SearchTestCases(ctx, a.ProjectID, a.SearchText)
}

// ============================================================================
// Tool handlers - Projects
// ============================================================================

func (b *TestLinkBridge) handleListProjects(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	return b.client.ListProjects(ctx)
}

func (b *TestLinkBridge) handleCreateProject(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var np testlink.NewProject
	if err := testlink.DecodeObject(args["data"], "data", &np); err != nil {
		return nil, err
	}
	return b.client.CreateProject(ctx, np)
}

func (b *TestLinkBridge) handleDeleteProject(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.DeleteProject(ctx, a.Prefix)
}

// ============================================================================
// Tool handlers - Test suites
// ============================================================================

func (b *TestLinkBridge) handleListTestSuites(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.ListTestSuites(ctx, a.ProjectID)
}

func (b *TestLinkBridge) handleReadTestSuite(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.ReadTestSuite(ctx, a.SuiteID)
}

func (b *TestLinkBridge) handleListTestCasesInSuite(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.ListTestCasesInSuite(ctx, a.SuiteID)
}

func (b *TestLinkBridge) handleCreateTestSuite(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.CreateTestSuite(ctx, a.ProjectID, a.SuiteName, a.Details, a.ParentID)
}

func (b *TestLinkBridge) handleUpdateTestSuite(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	var changes testlink.SuiteChanges
	if err := testlink.DecodeObject(args["data"], "data", &changes); err != nil {
		return nil, err
	}
	return b.client.UpdateTestSuite(ctx, a.SuiteID, changes)
}

// ============================================================================
// Tool handlers - Test plans and builds
// ============================================================================

func (b *TestLinkBridge) handleListTestPlans(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.ListTestPlans(ctx, a.ProjectID)
}

func (b *TestLinkBridge) handleCreateTestPlan(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var np testlink.NewTestPlan
	if err := testlink.DecodeObject(args["data"], "data", &np); err != nil {
		return nil, err
	}
	return b.client.CreateTestPlan(ctx, np)
}

func (b *TestLinkBridge) handleListBuilds(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.ListBuilds(ctx, a.PlanID)
}

func (b *TestLinkBridge) handleCreateBuild(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var nb testlink.NewBuild
	if err := testlink.DecodeObject(args["data"], "data", &nb); err != nil {
		return nil, err
	}
	return b.client.CreateBuild(ctx, nb)
}

func (b *TestLinkBridge) handleDeleteBuild(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	var buildID string
	if a.BuildID != nil {
		buildID = *a.BuildID
	}
	return b.client.CloseBuild(ctx, buildID)
}

// ============================================================================
// Tool handlers - Executions
// ============================================================================

func (b *TestLinkBridge) handleReadTestExecution(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	var testCaseID *string
	if a.TestCaseID != "" {
		testCaseID = &a.TestCaseID
	}
	return b.client.ReadTestExecution(ctx, a.PlanID, a.BuildID, testCaseID)
}

func (b *TestLinkBridge) handleCreateTestExecution(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var ne testlink.NewExecution
	if err := testlink.DecodeObject(args["data"], "data", &ne); err != nil {
		return nil, err
	}
	return b.client.CreateTestExecution(ctx, ne)
}

func (b *TestLinkBridge) handleDeleteTestExecution(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	var buildID string
	if a.BuildID != nil {
		buildID = *a.BuildID
	}
	return b.client.DeleteTestExecution(ctx, a.TestCaseID, a.PlanID, buildID)
}

// ============================================================================
// Tool handlers - Requirements and connectivity
// ============================================================================

func (b *TestLinkBridge) handleListRequirements(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a, err := decodeIDs(args)
	if err != nil {
		return nil, err
	}
	return b.client.ListRequirements(ctx, a.ProjectID)
}

func (b *TestLinkBridge) handleCheckConnection(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	return b.client.CheckDevKey(ctx)
}
