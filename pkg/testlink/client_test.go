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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordedCall struct {
	method string
	params Params
}

// mockInvoker records calls and answers through invokeFunc.
type mockInvoker struct {
	calls      []recordedCall
	invokeFunc func(method string, params Params) (interface{}, error)
}

func (m *mockInvoker) Invoke(_ context.Context, method string, params Params) (interface{}, error) {
	m.calls = append(m.calls, recordedCall{method: method, params: params})
	if m.invokeFunc != nil {
		return m.invokeFunc(method, params)
	}
	return []interface{}{map[string]interface{}{"status": true, "message": "Success!"}}, nil
}

func (m *mockInvoker) methods() []string {
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.method
	}
	return out
}

func newTestClient(t *testing.T, inv *mockInvoker) *Client {
	t.Helper()
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return NewClient(inv, zaptest.NewLogger(t), WithClock(func() time.Time { return fixed }))
}

func strP(s string) *string { return &s }
func intP(i int) *int       { return &i }
func boolPtr(b bool) *bool  { return &b }

func projectsPayload() []interface{} {
	return []interface{}{
		map[string]interface{}{"id": "1", "name": "Alpha", "prefix": "ALP"},
		map[string]interface{}{"id": "42", "name": "Checkout", "prefix": "ACX"},
	}
}

func TestClient_ReadTestCase(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.ReadTestCase(context.Background(), "50140", nil)
	require.NoError(t, err)
	_, err = c.ReadTestCase(context.Background(), "ACX-50140", intP(3))
	require.NoError(t, err)

	require.Len(t, inv.calls, 2)
	assert.Equal(t, MethodGetTestCase, inv.calls[0].method)
	assert.Equal(t, Params{"testcaseid": 50140}, inv.calls[0].params)
	assert.Equal(t, Params{"testcaseexternalid": "ACX-50140", "version": 3}, inv.calls[1].params)
}

func TestClient_ReadTestCase_InvalidIDMakesNoCall(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.ReadTestCase(context.Background(), "abc", nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Empty(t, inv.calls)
}

func TestClient_UpdateTestCase_ForwardsOnlySuppliedFields(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.UpdateTestCase(context.Background(), "12", TestCaseFields{
		Name:          strP("Login works"),
		ExecutionType: intP(2),
		Steps:         []interface{}{map[string]interface{}{"step_number": 1, "actions": "open"}},
	})
	require.NoError(t, err)

	require.Len(t, inv.calls, 1)
	assert.Equal(t, MethodUpdateTestCase, inv.calls[0].method)
	assert.Equal(t, Params{
		"testcaseid":    12,
		"testcasename":  "Login works",
		"executiontype": 2,
		"steps":         []interface{}{map[string]interface{}{"step_number": 1, "actions": "open"}},
	}, inv.calls[0].params)
}

func TestClient_UpdateTestCase_StepNumbersSentAsIntegers(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	steps := []interface{}{
		map[string]interface{}{"step_number": float64(1), "actions": "open", "execution_type": float64(2)},
		map[string]interface{}{"step_number": float64(2), "weight": 1.5},
	}
	_, err := c.UpdateTestCase(context.Background(), "12", TestCaseFields{Steps: steps})
	require.NoError(t, err)

	require.Len(t, inv.calls, 1)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"step_number": 1, "actions": "open", "execution_type": 2},
		map[string]interface{}{"step_number": 2, "weight": 1.5},
	}, inv.calls[0].params["steps"])

	// The caller's steps are not modified.
	assert.Equal(t, float64(1), steps[0].(map[string]interface{})["step_number"])
}

func TestClient_UpdateTestCase_RejectsOutOfRangeValues(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.UpdateTestCase(context.Background(), "12", TestCaseFields{Importance: intP(9)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "importance")

	_, err = c.UpdateTestCase(context.Background(), "12", TestCaseFields{Name: strP("  ")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Test case name")

	assert.Empty(t, inv.calls)
}

func TestClient_CreateTestCase_Defaults(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.CreateTestCase(context.Background(), NewTestCase{
		TestProjectID: strP("1"),
		TestSuiteID:   strP("20"),
		AuthorLogin:   strP("admin"),
		TestCaseFields: TestCaseFields{
			Name: strP("Checkout"),
		},
	})
	require.NoError(t, err)

	require.Len(t, inv.calls, 1)
	assert.Equal(t, MethodCreateTestCase, inv.calls[0].method)
	assert.Equal(t, Params{
		"testprojectid": 1,
		"testsuiteid":   20,
		"testcasename":  "Checkout",
		"authorlogin":   "admin",
		"summary":       "",
		"importance":    2,
		"executiontype": 1,
		"status":        1,
	}, inv.calls[0].params)
}

func TestClient_CreateTestCase_SuppliedValuesOverrideDefaults(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.CreateTestCase(context.Background(), NewTestCase{
		TestProjectID: strP("1"),
		TestSuiteID:   strP("20"),
		AuthorLogin:   strP("admin"),
		TestCaseFields: TestCaseFields{
			Name:          strP("Checkout"),
			Summary:       strP("Pay with card"),
			Preconditions: strP("Cart not empty"),
			Importance:    intP(3),
			ExecutionType: intP(2),
			Status:        intP(4),
		},
	})
	require.NoError(t, err)

	p := inv.calls[0].params
	assert.Equal(t, "Pay with card", p["summary"])
	assert.Equal(t, "Cart not empty", p["preconditions"])
	assert.Equal(t, 3, p["importance"])
	assert.Equal(t, 2, p["executiontype"])
	assert.Equal(t, 4, p["status"])
}

func TestClient_CreateTestCase_MissingAuthorLogin(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.CreateTestCase(context.Background(), NewTestCase{
		TestProjectID:  strP("1"),
		TestSuiteID:    strP("20"),
		TestCaseFields: TestCaseFields{Name: strP("Checkout")},
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Contains(t, err.Error(), "authorlogin")
	assert.Empty(t, inv.calls, "validation failures must not reach the backend")
}

func TestClient_CreateTestCase_ListsAllMissingFields(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.CreateTestCase(context.Background(), NewTestCase{})
	require.Error(t, err)
	assert.Equal(t, "Missing required fields: testprojectid, testsuiteid, name, authorlogin", err.Error())
	assert.Empty(t, inv.calls)
}

func TestClient_DeleteTestCase_IsObsoleteStatusUpdate(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.DeleteTestCase(context.Background(), "50140")
	require.NoError(t, err)

	require.Len(t, inv.calls, 1)
	assert.Equal(t, MethodUpdateTestCase, inv.calls[0].method)
	assert.Equal(t, Params{"testcaseid": 50140, "status": 7}, inv.calls[0].params)
}

func TestClient_ArchiveTestCase(t *testing.T) {
	inv := &mockInvoker{
		invokeFunc: func(method string, _ Params) (interface{}, error) {
			if method == MethodGetTestCase {
				return []interface{}{map[string]interface{}{"id": "50140", "summary": "Login works"}}, nil
			}
			return []interface{}{map[string]interface{}{"status": true}}, nil
		},
	}
	c := newTestClient(t, inv)

	_, err := c.ArchiveTestCase(context.Background(), "50140")
	require.NoError(t, err)

	assert.Equal(t, []string{MethodGetTestCase, MethodUpdateTestCase}, inv.methods())
	assert.Equal(t, Params{
		"testcaseid": 50140,
		"status":     7,
		"summary":    "[ARCHIVED] Login works",
	}, inv.calls[1].params)
}

func TestClient_ArchiveTestCase_ReadFailureSkipsUpdate(t *testing.T) {
	inv := &mockInvoker{
		invokeFunc: func(method string, _ Params) (interface{}, error) {
			return nil, backendError(CodeObjectNotFound, "test case 50140 does not exist")
		},
	}
	c := newTestClient(t, inv)

	_, err := c.ArchiveTestCase(context.Background(), "50140")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
	assert.Equal(t, []string{MethodGetTestCase}, inv.methods())
}

func TestClient_ArchiveTestCase_UnexpectedReadPayload(t *testing.T) {
	inv := &mockInvoker{
		invokeFunc: func(string, Params) (interface{}, error) {
			return []interface{}{}, nil
		},
	}
	c := newTestClient(t, inv)

	_, err := c.ArchiveTestCase(context.Background(), "50140")
	require.Error(t, err)
	assert.Equal(t, []string{MethodGetTestCase}, inv.methods())
}

func TestClient_BulkUpdateTestCases_ContinuesAfterFailure(t *testing.T) {
	inv := &mockInvoker{
		invokeFunc: func(_ string, params Params) (interface{}, error) {
			if params["testcaseid"] == 2 {
				return nil, backendError(5000, "locked")
			}
			return []interface{}{map[string]interface{}{"status": true}}, nil
		},
	}
	c := newTestClient(t, inv)

	results, err := c.BulkUpdateTestCases(context.Background(), []string{"1", "2", "3"}, TestCaseFields{Status: intP(4)})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "1", results[0].ID)
	assert.True(t, results[0].Success)
	assert.Equal(t, "2", results[1].ID)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "locked")
	assert.Equal(t, "3", results[2].ID)
	assert.True(t, results[2].Success)

	// Sequential, in caller order.
	require.Len(t, inv.calls, 3)
	assert.Equal(t, 1, inv.calls[0].params["testcaseid"])
	assert.Equal(t, 2, inv.calls[1].params["testcaseid"])
	assert.Equal(t, 3, inv.calls[2].params["testcaseid"])
}

func TestClient_BulkUpdateTestCases_InvalidIDIsRecorded(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	results, err := c.BulkUpdateTestCases(context.Background(), []string{"bad", "5"}, TestCaseFields{Status: intP(2)})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.Len(t, inv.calls, 1)
}

func TestClient_BulkUpdateTestCases_EmptyIDs(t *testing.T) {
	c := newTestClient(t, &mockInvoker{})
	_, err := c.BulkUpdateTestCases(context.Background(), nil, TestCaseFields{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestClient_SearchTestCases_ResolvesProjectName(t *testing.T) {
	inv := &mockInvoker{
		invokeFunc: func(method string, _ Params) (interface{}, error) {
			if method == MethodGetProjects {
				return projectsPayload(), nil
			}
			return []interface{}{map[string]interface{}{"id": "7", "name": "Login"}}, nil
		},
	}
	c := newTestClient(t, inv)

	_, err := c.SearchTestCases(context.Background(), "42", "Login")
	require.NoError(t, err)

	assert.Equal(t, []string{MethodGetProjects, MethodGetTestCaseIDByName}, inv.methods())
	assert.Equal(t, Params{"testcasename": "Login", "testprojectname": "Checkout"}, inv.calls[1].params)
}

func TestClient_SearchTestCases_UnknownProject(t *testing.T) {
	inv := &mockInvoker{
		invokeFunc: func(string, Params) (interface{}, error) { return projectsPayload(), nil },
	}
	c := newTestClient(t, inv)

	_, err := c.SearchTestCases(context.Background(), "999", "Login")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
	assert.Equal(t, []string{MethodGetProjects}, inv.methods())
}

func TestClient_CreateTestSuite(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.CreateTestSuite(context.Background(), "1", "Payments", nil, nil)
	require.NoError(t, err)
	_, err = c.CreateTestSuite(context.Background(), "1", "Cards", strP("Card flows"), strP("55"))
	require.NoError(t, err)

	assert.Equal(t, Params{"testprojectid": 1, "testsuitename": "Payments", "details": ""}, inv.calls[0].params)
	assert.Equal(t, Params{"testprojectid": 1, "testsuitename": "Cards", "details": "Card flows", "parentid": 55}, inv.calls[1].params)

	_, err = c.CreateTestSuite(context.Background(), "1", "Cards", nil, strP("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Parent suite ID")
	assert.Len(t, inv.calls, 2)
}

func TestClient_UpdateTestSuite(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.UpdateTestSuite(context.Background(), "8", SuiteChanges{ProjectID: strP("1"), Details: strP("new")})
	require.NoError(t, err)
	assert.Equal(t, MethodUpdateTestSuite, inv.calls[0].method)
	assert.Equal(t, Params{"testsuiteid": 8, "testprojectid": 1, "details": "new"}, inv.calls[0].params)

	_, err = c.UpdateTestSuite(context.Background(), "8", SuiteChanges{ProjectID: strP("1")})
	require.Error(t, err)
	_, err = c.UpdateTestSuite(context.Background(), "8", SuiteChanges{Name: strP("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project_id")
	assert.Len(t, inv.calls, 1)
}

func TestClient_CreateProject(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.CreateProject(context.Background(), NewProject{
		Name:    strP("Checkout"),
		Prefix:  strP("ACX"),
		Options: &ProjectOptions{RequirementsEnabled: boolPtr(true)},
	})
	require.NoError(t, err)
	assert.Equal(t, Params{
		"testprojectname": "Checkout",
		"testcaseprefix":  "ACX",
		"options":         map[string]interface{}{"requirementsEnabled": true},
	}, inv.calls[0].params)

	_, err = c.CreateProject(context.Background(), NewProject{Name: strP("Checkout")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefix")
	assert.Len(t, inv.calls, 1)
}

func TestClient_CreateTestPlan(t *testing.T) {
	inv := &mockInvoker{
		invokeFunc: func(method string, _ Params) (interface{}, error) {
			if method == MethodGetProjects {
				return projectsPayload(), nil
			}
			return []interface{}{map[string]interface{}{"status": true, "id": "300"}}, nil
		},
	}
	c := newTestClient(t, inv)

	_, err := c.CreateTestPlan(context.Background(), NewTestPlan{ProjectID: strP("42"), Name: strP("Release 5")})
	require.NoError(t, err)

	assert.Equal(t, []string{MethodGetProjects, MethodCreateTestPlan}, inv.methods())
	assert.Equal(t, Params{
		"testplanname":    "Release 5",
		"testprojectname": "Checkout",
		"active":          1,
		"public":          1,
	}, inv.calls[1].params)
}

func TestClient_CreateTestPlan_MissingFields(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.CreateTestPlan(context.Background(), NewTestPlan{})
	require.Error(t, err)
	assert.Equal(t, "Missing required fields: project_id, name", err.Error())
	assert.Empty(t, inv.calls)
}

func TestClient_CreateBuild(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.CreateBuild(context.Background(), NewBuild{PlanID: strP("300"), Name: strP("5.0.1")})
	require.NoError(t, err)
	assert.Equal(t, Params{
		"testplanid":  300,
		"buildname":   "5.0.1",
		"active":      1,
		"open":        1,
		"releasedate": "2026-03-14",
	}, inv.calls[0].params)

	_, err = c.CreateBuild(context.Background(), NewBuild{PlanID: strP("300"), Name: strP("5.0.2"), Releasedate: strP("2026-04-01"), Open: intP(0)})
	require.NoError(t, err)
	assert.Equal(t, "2026-04-01", inv.calls[1].params["releasedate"])
	assert.Equal(t, 0, inv.calls[1].params["open"])

	_, err = c.CreateBuild(context.Background(), NewBuild{PlanID: strP("300"), Name: strP("x"), ReleaseDate: strP("01/04/2026")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
	assert.Len(t, inv.calls, 2)
}

func TestClient_CloseBuild(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.CloseBuild(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, MethodCloseBuild, inv.calls[0].method)
	assert.Equal(t, Params{"buildid": 77}, inv.calls[0].params)
}

func TestClient_ReadTestExecution(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.ReadTestExecution(context.Background(), "300", nil, nil)
	require.NoError(t, err)
	_, err = c.ReadTestExecution(context.Background(), "300", strP("77"), strP("ACX-9"))
	require.NoError(t, err)

	assert.Equal(t, []string{MethodGetTestCasesForTestPlan, MethodGetLastExecutionResult}, inv.methods())
	assert.Equal(t, Params{"testplanid": 300, "details": "full"}, inv.calls[0].params)
	assert.Equal(t, Params{"testplanid": 300, "buildid": 77, "testcaseexternalid": "ACX-9"}, inv.calls[1].params)
}

func TestClient_CreateTestExecution(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.CreateTestExecution(context.Background(), NewExecution{
		TestCaseID: strP("15"),
		PlanID:     strP("300"),
		BuildID:    strP("77"),
		Status:     strP("Passed"),
		Notes:      strP("green"),
		Overwrite:  boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, MethodReportTCResult, inv.calls[0].method)
	assert.Equal(t, Params{
		"testcaseid": 15,
		"testplanid": 300,
		"buildid":    77,
		"status":     "p",
		"notes":      "green",
		"overwrite":  false,
	}, inv.calls[0].params)
}

func TestClient_CreateTestExecution_Validation(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.CreateTestExecution(context.Background(), NewExecution{TestCaseID: strP("15")})
	require.Error(t, err)
	assert.Equal(t, "Missing required fields: plan_id, build_id, status", err.Error())

	_, err = c.CreateTestExecution(context.Background(), NewExecution{
		TestCaseID: strP("15"), PlanID: strP("300"), BuildID: strP("77"), Status: strP("green"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
	assert.Empty(t, inv.calls)
}

func TestClient_DeleteTestExecution(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)

	_, err := c.DeleteTestExecution(context.Background(), "15", "300", "77")
	require.NoError(t, err)
	require.Len(t, inv.calls, 1)
	assert.Equal(t, MethodReportTCResult, inv.calls[0].method)
	assert.Equal(t, "n", inv.calls[0].params["status"])
	assert.Equal(t, true, inv.calls[0].params["overwrite"])
}

func TestClient_SimpleListings(t *testing.T) {
	inv := &mockInvoker{}
	c := newTestClient(t, inv)
	ctx := context.Background()

	_, err := c.ListProjects(ctx)
	require.NoError(t, err)
	_, err = c.ListTestSuites(ctx, "1")
	require.NoError(t, err)
	_, err = c.ReadTestSuite(ctx, "2")
	require.NoError(t, err)
	_, err = c.ListTestCasesInSuite(ctx, "3")
	require.NoError(t, err)
	_, err = c.ListTestPlans(ctx, "4")
	require.NoError(t, err)
	_, err = c.ListBuilds(ctx, "5")
	require.NoError(t, err)
	_, err = c.ListRequirements(ctx, "6")
	require.NoError(t, err)
	_, err = c.DeleteProject(ctx, "ACX")
	require.NoError(t, err)
	_, err = c.CheckDevKey(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		MethodGetProjects,
		MethodGetFirstLevelTestSuites,
		MethodGetTestSuiteByID,
		MethodGetTestCasesForTestSuite,
		MethodGetProjectTestPlans,
		MethodGetBuildsForTestPlan,
		MethodGetRequirements,
		MethodDeleteTestProject,
		MethodCheckDevKey,
	}, inv.methods())
	assert.Equal(t, Params{"testsuiteid": 3, "deep": true, "details": "full"}, inv.calls[3].params)
	assert.Equal(t, Params{"prefix": "ACX"}, inv.calls[7].params)
}

func TestGap_Err(t *testing.T) {
	for _, gap := range Gaps() {
		err := gap.Err()
		require.Error(t, err)
		assert.True(t, IsKind(err, KindUnsupported), gap.Operation)
		assert.Contains(t, err.Error(), gap.Operation)
	}
	assert.Len(t, Gaps(), 9)
}
