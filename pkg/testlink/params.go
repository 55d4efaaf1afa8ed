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
	"math"
	"strings"
	"time"
)

// Test case field values the bridge relies on.
const (
	ObsoleteStatus = 7
	ArchivedPrefix = "[ARCHIVED] "

	defaultImportance    = 2
	defaultExecutionType = 1
	defaultStatus        = 1
	dateLayout           = "2006-01-02"
)

// executionStatuses maps accepted execution result spellings to the
// single-letter codes tl.reportTCResult expects.
var executionStatuses = map[string]string{
	"p": "p", "passed": "p",
	"f": "f", "failed": "f",
	"b": "b", "blocked": "b",
	"n": "n", "not_run": "n",
}

// TestCaseFields are the editable test case attributes shared by create,
// update and bulk update. Pointer fields distinguish "absent" from "empty".
type TestCaseFields struct {
	Name                       *string       `mapstructure:"name"`
	Summary                    *string       `mapstructure:"summary"`
	Preconditions              *string       `mapstructure:"preconditions"`
	Steps                      []interface{} `mapstructure:"steps"`
	Importance                 *int          `mapstructure:"importance"`
	ExecutionType              *int          `mapstructure:"execution_type"`
	Status                     *int          `mapstructure:"status"`
	EstimatedExecutionDuration *float64      `mapstructure:"estimated_execution_duration"`
}

// NewTestCase is the data object of create_test_case.
type NewTestCase struct {
	TestProjectID *string `mapstructure:"testprojectid"`
	TestSuiteID   *string `mapstructure:"testsuiteid"`
	AuthorLogin   *string `mapstructure:"authorlogin"`

	TestCaseFields `mapstructure:",squash"`
}

// NewProject is the data object of create_project.
type NewProject struct {
	Name     *string         `mapstructure:"name"`
	Prefix   *string         `mapstructure:"prefix"`
	Notes    *string         `mapstructure:"notes"`
	Active   *int            `mapstructure:"active"`
	IsPublic *int            `mapstructure:"is_public"`
	Options  *ProjectOptions `mapstructure:"options"`
}

// ProjectOptions toggles optional TestLink features on a new project.
type ProjectOptions struct {
	RequirementsEnabled *bool `mapstructure:"requirements_enabled"`
	TestPriorityEnabled *bool `mapstructure:"test_priority_enabled"`
	AutomationEnabled   *bool `mapstructure:"automation_enabled"`
	InventoryEnabled    *bool `mapstructure:"inventory_enabled"`
}

// SuiteChanges is the data object of update_test_suite.
type SuiteChanges struct {
	ProjectID *string `mapstructure:"project_id"`
	Name      *string `mapstructure:"name"`
	Details   *string `mapstructure:"details"`
	Order     *int    `mapstructure:"order"`
}

// NewTestPlan is the data object of create_test_plan.
type NewTestPlan struct {
	ProjectID *string `mapstructure:"project_id"`
	Name      *string `mapstructure:"name"`
	Notes     *string `mapstructure:"notes"`
	Active    *int    `mapstructure:"active"`
	IsPublic  *int    `mapstructure:"is_public"`
}

// NewBuild is the data object of create_build. Both release_date and
// releasedate are accepted.
type NewBuild struct {
	PlanID      *string `mapstructure:"plan_id"`
	Name        *string `mapstructure:"name"`
	Notes       *string `mapstructure:"notes"`
	Active      *int    `mapstructure:"active"`
	Open        *int    `mapstructure:"open"`
	ReleaseDate *string `mapstructure:"release_date"`
	Releasedate *string `mapstructure:"releasedate"`
}

// NewExecution is the data object of create_test_execution.
type NewExecution struct {
	TestCaseID   *string `mapstructure:"test_case_id"`
	PlanID       *string `mapstructure:"plan_id"`
	BuildID      *string `mapstructure:"build_id"`
	Status       *string `mapstructure:"status"`
	Notes        *string `mapstructure:"notes"`
	PlatformID   *string `mapstructure:"platform_id"`
	PlatformName *string `mapstructure:"platform_name"`
	User         *string `mapstructure:"user"`
	Overwrite    *bool   `mapstructure:"overwrite"`
}

type requiredField struct {
	name    string
	present bool
}

func supplied(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// requireFields reports every missing field at once.
func requireFields(fields ...requiredField) error {
	var missing []string
	for _, f := range fields {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return NewValidationError("Missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func checkRange(v *int, field string, lo, hi int) error {
	if v != nil && (*v < lo || *v > hi) {
		return NewValidationError("%s must be between %d and %d, got %d", field, lo, hi, *v)
	}
	return nil
}

func checkFlag(v *int, field string) error {
	return checkRange(v, field, 0, 1)
}

func flagOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// setTestCaseRef routes a validated ID to the field the backend expects for
// its shape.
func setTestCaseRef(p Params, id TestCaseID) error {
	if id.IsExternal() {
		p["testcaseexternalid"] = id.External
		return nil
	}
	n, err := numericParam(id.Numeric, "Test case ID")
	if err != nil {
		return err
	}
	p["testcaseid"] = n
	return nil
}

func mapReadTestCase(rawID string, version *int) (Params, error) {
	id, err := ValidateTestCaseID(rawID)
	if err != nil {
		return nil, err
	}
	p := Params{}
	if err := setTestCaseRef(p, id); err != nil {
		return nil, err
	}
	if version != nil {
		if *version < 1 {
			return nil, NewValidationError("version must be a positive integer")
		}
		p["version"] = *version
	}
	return p, nil
}

func (f TestCaseFields) validate() error {
	if f.Name != nil {
		if _, err := ValidateNonEmptyString(*f.Name, "Test case name"); err != nil {
			return err
		}
	}
	if err := checkRange(f.Importance, "importance", 1, 3); err != nil {
		return err
	}
	if err := checkRange(f.ExecutionType, "execution_type", 1, 2); err != nil {
		return err
	}
	if err := checkRange(f.Status, "status", 1, 7); err != nil {
		return err
	}
	if f.EstimatedExecutionDuration != nil && *f.EstimatedExecutionDuration < 0 {
		return NewValidationError("estimated_execution_duration must not be negative")
	}
	return nil
}

// apply forwards only the supplied fields, renamed to backend vocabulary.
func (f TestCaseFields) apply(p Params) {
	if f.Name != nil {
		p["testcasename"] = *f.Name
	}
	if f.Summary != nil {
		p["summary"] = *f.Summary
	}
	if f.Preconditions != nil {
		p["preconditions"] = *f.Preconditions
	}
	if f.Steps != nil {
		p["steps"] = integralNumbers(f.Steps)
	}
	if f.Importance != nil {
		p["importance"] = *f.Importance
	}
	if f.ExecutionType != nil {
		p["executiontype"] = *f.ExecutionType
	}
	if f.Status != nil {
		p["status"] = *f.Status
	}
	if f.EstimatedExecutionDuration != nil {
		p["estimatedexecduration"] = *f.EstimatedExecutionDuration
	}
}

func mapUpdateTestCase(rawID string, f TestCaseFields) (Params, error) {
	id, err := ValidateTestCaseID(rawID)
	if err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	p := Params{}
	if err := setTestCaseRef(p, id); err != nil {
		return nil, err
	}
	f.apply(p)
	return p, nil
}

func mapDeleteTestCase(rawID string) (Params, error) {
	status := ObsoleteStatus
	return mapUpdateTestCase(rawID, TestCaseFields{Status: &status})
}

func mapCreateTestCase(tc NewTestCase) (Params, error) {
	if err := requireFields(
		requiredField{"testprojectid", supplied(tc.TestProjectID)},
		requiredField{"testsuiteid", supplied(tc.TestSuiteID)},
		requiredField{"name", supplied(tc.Name)},
		requiredField{"authorlogin", supplied(tc.AuthorLogin)},
	); err != nil {
		return nil, err
	}
	projectID, err := numericParam(*tc.TestProjectID, "Project ID")
	if err != nil {
		return nil, err
	}
	suiteID, err := numericParam(*tc.TestSuiteID, "Suite ID")
	if err != nil {
		return nil, err
	}
	if err := tc.validate(); err != nil {
		return nil, err
	}

	p := Params{
		"testprojectid": projectID,
		"testsuiteid":   suiteID,
		"authorlogin":   *tc.AuthorLogin,
		"summary":       "",
		"importance":    defaultImportance,
		"executiontype": defaultExecutionType,
		"status":        defaultStatus,
	}
	tc.apply(p)
	return p, nil
}

func mapProjectID(raw string) (Params, error) {
	id, err := numericParam(raw, "Project ID")
	if err != nil {
		return nil, err
	}
	return Params{"testprojectid": id}, nil
}

func mapSuiteID(raw string) (Params, error) {
	id, err := numericParam(raw, "Suite ID")
	if err != nil {
		return nil, err
	}
	return Params{"testsuiteid": id}, nil
}

func mapPlanID(raw string) (Params, error) {
	id, err := numericParam(raw, "Plan ID")
	if err != nil {
		return nil, err
	}
	return Params{"testplanid": id}, nil
}

func mapListTestCasesInSuite(suiteID string) (Params, error) {
	p, err := mapSuiteID(suiteID)
	if err != nil {
		return nil, err
	}
	p["deep"] = true
	p["details"] = "full"
	return p, nil
}

func mapCreateTestSuite(projectID, name string, details, parentID *string) (Params, error) {
	pid, err := numericParam(projectID, "Project ID")
	if err != nil {
		return nil, err
	}
	if _, err := ValidateNonEmptyString(name, "Suite name"); err != nil {
		return nil, err
	}
	p := Params{
		"testprojectid": pid,
		"testsuitename": name,
		"details":       "",
	}
	if details != nil {
		p["details"] = *details
	}
	if parentID != nil && *parentID != "" {
		parent, err := numericParam(*parentID, "Parent suite ID")
		if err != nil {
			return nil, err
		}
		p["parentid"] = parent
	}
	return p, nil
}

func mapUpdateTestSuite(suiteID string, c SuiteChanges) (Params, error) {
	sid, err := numericParam(suiteID, "Suite ID")
	if err != nil {
		return nil, err
	}
	if err := requireFields(requiredField{"project_id", supplied(c.ProjectID)}); err != nil {
		return nil, err
	}
	pid, err := numericParam(*c.ProjectID, "Project ID")
	if err != nil {
		return nil, err
	}
	if c.Name == nil && c.Details == nil && c.Order == nil {
		return nil, NewValidationError("Update data must contain at least one of: name, details, order")
	}
	p := Params{"testsuiteid": sid, "testprojectid": pid}
	if c.Name != nil {
		if _, err := ValidateNonEmptyString(*c.Name, "Suite name"); err != nil {
			return nil, err
		}
		p["testsuitename"] = *c.Name
	}
	if c.Details != nil {
		p["details"] = *c.Details
	}
	if c.Order != nil {
		p["order"] = *c.Order
	}
	return p, nil
}

func mapCreateProject(np NewProject) (Params, error) {
	if err := requireFields(
		requiredField{"name", supplied(np.Name)},
		requiredField{"prefix", supplied(np.Prefix)},
	); err != nil {
		return nil, err
	}
	if err := checkFlag(np.Active, "active"); err != nil {
		return nil, err
	}
	if err := checkFlag(np.IsPublic, "is_public"); err != nil {
		return nil, err
	}
	p := Params{
		"testprojectname": *np.Name,
		"testcaseprefix":  *np.Prefix,
	}
	if np.Notes != nil {
		p["notes"] = *np.Notes
	}
	if np.Active != nil {
		p["active"] = *np.Active
	}
	if np.IsPublic != nil {
		p["public"] = *np.IsPublic
	}
	if o := np.Options; o != nil {
		opts := map[string]interface{}{}
		setBool := func(key string, v *bool) {
			if v != nil {
				opts[key] = *v
			}
		}
		setBool("requirementsEnabled", o.RequirementsEnabled)
		setBool("testPriorityEnabled", o.TestPriorityEnabled)
		setBool("automationEnabled", o.AutomationEnabled)
		setBool("inventoryEnabled", o.InventoryEnabled)
		if len(opts) > 0 {
			p["options"] = opts
		}
	}
	return p, nil
}

func mapDeleteProject(prefix string) (Params, error) {
	s, err := ValidateNonEmptyString(prefix, "Project prefix")
	if err != nil {
		return nil, err
	}
	return Params{"prefix": s}, nil
}

// mapCreateTestPlan returns the validated project ID separately; the
// backend addresses the project by name, which the caller resolves.
func mapCreateTestPlan(np NewTestPlan) (int, Params, error) {
	if err := requireFields(
		requiredField{"project_id", supplied(np.ProjectID)},
		requiredField{"name", supplied(np.Name)},
	); err != nil {
		return 0, nil, err
	}
	pid, err := numericParam(*np.ProjectID, "Project ID")
	if err != nil {
		return 0, nil, err
	}
	if err := checkFlag(np.Active, "active"); err != nil {
		return 0, nil, err
	}
	if err := checkFlag(np.IsPublic, "is_public"); err != nil {
		return 0, nil, err
	}
	p := Params{
		"testplanname": *np.Name,
		"active":       flagOrDefault(np.Active, 1),
		"public":       flagOrDefault(np.IsPublic, 1),
	}
	if np.Notes != nil {
		p["notes"] = *np.Notes
	}
	return pid, p, nil
}

func mapCreateBuild(nb NewBuild, now time.Time) (Params, error) {
	if err := requireFields(
		requiredField{"plan_id", supplied(nb.PlanID)},
		requiredField{"name", supplied(nb.Name)},
	); err != nil {
		return nil, err
	}
	planID, err := numericParam(*nb.PlanID, "Plan ID")
	if err != nil {
		return nil, err
	}
	if err := checkFlag(nb.Active, "active"); err != nil {
		return nil, err
	}
	if err := checkFlag(nb.Open, "open"); err != nil {
		return nil, err
	}

	releaseDate := now.Format(dateLayout)
	for _, d := range []*string{nb.ReleaseDate, nb.Releasedate} {
		if d != nil && *d != "" {
			if _, err := time.Parse(dateLayout, *d); err != nil {
				return nil, NewValidationError("release_date must use the YYYY-MM-DD format, got %q", *d)
			}
			releaseDate = *d
			break
		}
	}

	p := Params{
		"testplanid":  planID,
		"buildname":   *nb.Name,
		"active":      flagOrDefault(nb.Active, 1),
		"open":        flagOrDefault(nb.Open, 1),
		"releasedate": releaseDate,
	}
	if nb.Notes != nil {
		p["buildnotes"] = *nb.Notes
	}
	return p, nil
}

func mapCloseBuild(buildID string) (Params, error) {
	id, err := numericParam(buildID, "Build ID")
	if err != nil {
		return nil, err
	}
	return Params{"buildid": id}, nil
}

// mapReadTestExecution returns the method to call along with its params:
// the last result of one test case when testCaseID is set, otherwise the
// execution status of every test case in the plan.
func mapReadTestExecution(planID string, buildID, testCaseID *string) (string, Params, error) {
	p, err := mapPlanID(planID)
	if err != nil {
		return "", nil, err
	}
	if buildID != nil && *buildID != "" {
		bid, err := numericParam(*buildID, "Build ID")
		if err != nil {
			return "", nil, err
		}
		p["buildid"] = bid
	}
	if testCaseID != nil && *testCaseID != "" {
		id, err := ValidateTestCaseID(*testCaseID)
		if err != nil {
			return "", nil, err
		}
		if err := setTestCaseRef(p, id); err != nil {
			return "", nil, err
		}
		return MethodGetLastExecutionResult, p, nil
	}
	p["details"] = "full"
	return MethodGetTestCasesForTestPlan, p, nil
}

// NormalizeExecutionStatus maps a caller status spelling to its backend code.
func NormalizeExecutionStatus(status string) (string, error) {
	code, ok := executionStatuses[strings.ToLower(strings.TrimSpace(status))]
	if !ok {
		return "", NewValidationError("status %q is invalid: expected one of p, f, b, n (passed, failed, blocked, not_run)", status)
	}
	return code, nil
}

func mapExecutionTarget(testCaseID, planID, buildID string) (Params, error) {
	id, err := ValidateTestCaseID(testCaseID)
	if err != nil {
		return nil, err
	}
	pid, err := numericParam(planID, "Plan ID")
	if err != nil {
		return nil, err
	}
	bid, err := numericParam(buildID, "Build ID")
	if err != nil {
		return nil, err
	}
	p := Params{"testplanid": pid, "buildid": bid}
	if err := setTestCaseRef(p, id); err != nil {
		return nil, err
	}
	return p, nil
}

func mapCreateTestExecution(ne NewExecution) (Params, error) {
	if err := requireFields(
		requiredField{"test_case_id", supplied(ne.TestCaseID)},
		requiredField{"plan_id", supplied(ne.PlanID)},
		requiredField{"build_id", supplied(ne.BuildID)},
		requiredField{"status", supplied(ne.Status)},
	); err != nil {
		return nil, err
	}
	p, err := mapExecutionTarget(*ne.TestCaseID, *ne.PlanID, *ne.BuildID)
	if err != nil {
		return nil, err
	}
	status, err := NormalizeExecutionStatus(*ne.Status)
	if err != nil {
		return nil, err
	}
	p["status"] = status
	if ne.Notes != nil {
		p["notes"] = *ne.Notes
	}
	if ne.PlatformID != nil && *ne.PlatformID != "" {
		platformID, err := numericParam(*ne.PlatformID, "Platform ID")
		if err != nil {
			return nil, err
		}
		p["platformid"] = platformID
	}
	if ne.PlatformName != nil {
		p["platformname"] = *ne.PlatformName
	}
	if ne.User != nil {
		p["user"] = *ne.User
	}
	if ne.Overwrite != nil {
		p["overwrite"] = *ne.Overwrite
	}
	return p, nil
}

// mapDeleteTestExecution overwrites the latest result with "not run"; the
// execution history itself is left in place. Unlike test cases, executions
// cannot be marked obsolete: tl.reportTCResult only accepts p, f, b and n.
func mapDeleteTestExecution(testCaseID, planID, buildID string) (Params, error) {
	p, err := mapExecutionTarget(testCaseID, planID, buildID)
	if err != nil {
		return nil, err
	}
	p["status"] = "n"
	p["overwrite"] = true
	p["notes"] = "Execution result withdrawn"
	return p, nil
}

// integralNumbers returns a copy of v in which whole-number float64 values
// become int, so XML-RPC encodes them as <int> rather than <double>. JSON
// decoding produces float64 for every number.
func integralNumbers(v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && x >= math.MinInt32 && x <= math.MaxInt32 {
			return int(x)
		}
		return x
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, item := range x {
			out[i] = integralNumbers(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, item := range x {
			out[k] = integralNumbers(item)
		}
		return out
	default:
		return v
	}
}
