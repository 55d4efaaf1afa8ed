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

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TestLink XML-RPC method names.
const (
	MethodCheckDevKey              = "tl.checkDevKey"
	MethodGetTestCase              = "tl.getTestCase"
	MethodUpdateTestCase           = "tl.updateTestCase"
	MethodCreateTestCase           = "tl.createTestCase"
	MethodGetProjects              = "tl.getProjects"
	MethodCreateTestProject        = "tl.createTestProject"
	MethodDeleteTestProject        = "tl.deleteTestProject"
	MethodGetFirstLevelTestSuites  = "tl.getFirstLevelTestSuitesForTestProject"
	MethodGetTestSuiteByID         = "tl.getTestSuiteByID"
	MethodGetTestCasesForTestSuite = "tl.getTestCasesForTestSuite"
	MethodGetTestCaseIDByName      = "tl.getTestCaseIDByName"
	MethodCreateTestSuite          = "tl.createTestSuite"
	MethodUpdateTestSuite          = "tl.updateTestSuite"
	MethodGetProjectTestPlans      = "tl.getProjectTestPlans"
	MethodCreateTestPlan           = "tl.createTestPlan"
	MethodGetBuildsForTestPlan     = "tl.getBuildsForTestPlan"
	MethodCreateBuild              = "tl.createBuild"
	MethodCloseBuild               = "tl.closeBuild"
	MethodGetLastExecutionResult   = "tl.getLastExecutionResult"
	MethodGetTestCasesForTestPlan  = "tl.getTestCasesForTestPlan"
	MethodReportTCResult           = "tl.reportTCResult"
	MethodGetRequirements          = "tl.getRequirements"
)

// Client exposes TestLink operations with caller-facing arguments. Every
// method validates and maps its input before any backend call is made.
type Client struct {
	invoker Invoker
	logger  *zap.Logger
	now     func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClock overrides the clock used for date defaults.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a Client over the given invoker.
func NewClient(invoker Invoker, logger *zap.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		invoker: invoker,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BulkResult is the outcome for one ID of a bulk update.
type BulkResult struct {
	ID      string      `json:"id"`
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (c *Client) CheckDevKey(ctx context.Context) (interface{}, error) {
	return c.invoker.Invoke(ctx, MethodCheckDevKey, Params{})
}

// ReadTestCase fetches a test case; version is optional.
func (c *Client) ReadTestCase(ctx context.Context, testCaseID string, version *int) (interface{}, error) {
	p, err := mapReadTestCase(testCaseID, version)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodGetTestCase, p)
}

func (c *Client) UpdateTestCase(ctx context.Context, testCaseID string, fields TestCaseFields) (interface{}, error) {
	p, err := mapUpdateTestCase(testCaseID, fields)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodUpdateTestCase, p)
}

func (c *Client) CreateTestCase(ctx context.Context, tc NewTestCase) (interface{}, error) {
	p, err := mapCreateTestCase(tc)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodCreateTestCase, p)
}

// DeleteTestCase marks the test case obsolete. TestLink keeps the record.
func (c *Client) DeleteTestCase(ctx context.Context, testCaseID string) (interface{}, error) {
	p, err := mapDeleteTestCase(testCaseID)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodUpdateTestCase, p)
}

// ArchiveTestCase marks a test case obsolete and prefixes its summary with
// ArchivedPrefix. Nothing is written if the current record cannot be read.
func (c *Client) ArchiveTestCase(ctx context.Context, testCaseID string) (interface{}, error) {
	if _, err := ValidateTestCaseID(testCaseID); err != nil {
		return nil, err
	}
	current, err := c.ReadTestCase(ctx, testCaseID, nil)
	if err != nil {
		return nil, err
	}
	summary, err := summaryOf(current)
	if err != nil {
		return nil, err
	}

	status := ObsoleteStatus
	archived := ArchivedPrefix + summary
	c.logger.Debug("archiving test case", zap.String("test_case_id", testCaseID))
	return c.UpdateTestCase(ctx, testCaseID, TestCaseFields{
		Status:  &status,
		Summary: &archived,
	})
}

// summaryOf reads the summary of the first version returned by tl.getTestCase.
func summaryOf(payload interface{}) (string, error) {
	record, ok := payload.(map[string]interface{})
	if items, isList := payload.([]interface{}); isList && len(items) > 0 {
		record, ok = items[0].(map[string]interface{})
	}
	if !ok {
		return "", &Error{Kind: KindBackend, Message: "unexpected tl.getTestCase response: no test case record"}
	}
	summary, _ := record["summary"].(string)
	return summary, nil
}

// BulkUpdateTestCases applies the same fields to each ID in order. A failure
// for one ID is recorded and does not stop the rest. Updates run one at a
// time so backend side effects keep the caller's order.
func (c *Client) BulkUpdateTestCases(ctx context.Context, testCaseIDs []string, fields TestCaseFields) ([]BulkResult, error) {
	if len(testCaseIDs) == 0 {
		return nil, NewValidationError("Test case IDs must be a non-empty array")
	}
	results := make([]BulkResult, 0, len(testCaseIDs))
	for _, id := range testCaseIDs {
		result, err := c.UpdateTestCase(ctx, id, fields)
		if err != nil {
			c.logger.Debug("bulk update item failed", zap.String("test_case_id", id), zap.Error(err))
			results = append(results, BulkResult{ID: id, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{ID: id, Success: true, Result: result})
	}
	return results, nil
}

func (c *Client) ListProjects(ctx context.Context) (interface{}, error) {
	return c.invoker.Invoke(ctx, MethodGetProjects, Params{})
}

func (c *Client) CreateProject(ctx context.Context, np NewProject) (interface{}, error) {
	p, err := mapCreateProject(np)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodCreateTestProject, p)
}

// DeleteProject removes the project identified by its test case prefix.
func (c *Client) DeleteProject(ctx context.Context, prefix string) (interface{}, error) {
	p, err := mapDeleteProject(prefix)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodDeleteTestProject, p)
}

func (c *Client) ListTestSuites(ctx context.Context, projectID string) (interface{}, error) {
	p, err := mapProjectID(projectID)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodGetFirstLevelTestSuites, p)
}

func (c *Client) ReadTestSuite(ctx context.Context, suiteID string) (interface{}, error) {
	p, err := mapSuiteID(suiteID)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodGetTestSuiteByID, p)
}

func (c *Client) ListTestCasesInSuite(ctx context.Context, suiteID string) (interface{}, error) {
	p, err := mapListTestCasesInSuite(suiteID)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodGetTestCasesForTestSuite, p)
}

// SearchTestCases finds test cases whose name matches searchText exactly.
// The backend scopes the search by project name, so the ID is resolved first.
func (c *Client) SearchTestCases(ctx context.Context, projectID, searchText string) (interface{}, error) {
	pid, err := numericParam(projectID, "Project ID")
	if err != nil {
		return nil, err
	}
	if _, err := ValidateNonEmptyString(searchText, "Search text"); err != nil {
		return nil, err
	}
	name, err := c.projectName(ctx, pid)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodGetTestCaseIDByName, Params{
		"testcasename":    searchText,
		"testprojectname": name,
	})
}

func (c *Client) CreateTestSuite(ctx context.Context, projectID, name string, details, parentID *string) (interface{}, error) {
	p, err := mapCreateTestSuite(projectID, name, details, parentID)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodCreateTestSuite, p)
}

func (c *Client) UpdateTestSuite(ctx context.Context, suiteID string, changes SuiteChanges) (interface{}, error) {
	p, err := mapUpdateTestSuite(suiteID, changes)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodUpdateTestSuite, p)
}

func (c *Client) ListTestPlans(ctx context.Context, projectID string) (interface{}, error) {
	p, err := mapProjectID(projectID)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodGetProjectTestPlans, p)
}

func (c *Client) CreateTestPlan(ctx context.Context, np NewTestPlan) (interface{}, error) {
	pid, p, err := mapCreateTestPlan(np)
	if err != nil {
		return nil, err
	}
	name, err := c.projectName(ctx, pid)
	if err != nil {
		return nil, err
	}
	p["testprojectname"] = name
	return c.invoker.Invoke(ctx, MethodCreateTestPlan, p)
}

func (c *Client) ListBuilds(ctx context.Context, planID string) (interface{}, error) {
	p, err := mapPlanID(planID)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodGetBuildsForTestPlan, p)
}

func (c *Client) CreateBuild(ctx context.Context, nb NewBuild) (interface{}, error) {
	p, err := mapCreateBuild(nb, c.now())
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodCreateBuild, p)
}

// CloseBuild closes a build so no further results can be recorded against it.
func (c *Client) CloseBuild(ctx context.Context, buildID string) (interface{}, error) {
	p, err := mapCloseBuild(buildID)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodCloseBuild, p)
}

func (c *Client) ReadTestExecution(ctx context.Context, planID string, buildID, testCaseID *string) (interface{}, error) {
	method, p, err := mapReadTestExecution(planID, buildID, testCaseID)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, method, p)
}

func (c *Client) CreateTestExecution(ctx context.Context, ne NewExecution) (interface{}, error) {
	p, err := mapCreateTestExecution(ne)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodReportTCResult, p)
}

// DeleteTestExecution withdraws the latest result of a test case in a build.
func (c *Client) DeleteTestExecution(ctx context.Context, testCaseID, planID, buildID string) (interface{}, error) {
	p, err := mapDeleteTestExecution(testCaseID, planID, buildID)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodReportTCResult, p)
}

func (c *Client) ListRequirements(ctx context.Context, projectID string) (interface{}, error) {
	p, err := mapProjectID(projectID)
	if err != nil {
		return nil, err
	}
	return c.invoker.Invoke(ctx, MethodGetRequirements, p)
}

// projectName resolves a project ID through tl.getProjects.
func (c *Client) projectName(ctx context.Context, projectID int) (string, error) {
	payload, err := c.invoker.Invoke(ctx, MethodGetProjects, Params{})
	if err != nil {
		return "", err
	}
	projects, _ := payload.([]interface{})
	for _, item := range projects {
		project, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := intValue(project["id"]); ok && id == projectID {
			if name, ok := project["name"].(string); ok && name != "" {
				return name, nil
			}
		}
	}
	return "", &Error{
		Kind:    KindNotFound,
		Code:    CodeObjectNotFound,
		Message: fmt.Sprintf("TestLink Object Not Found: test project %d", projectID),
	}
}
