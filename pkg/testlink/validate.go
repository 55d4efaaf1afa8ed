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
	"regexp"
	"strconv"
	"strings"
)

var (
	numericIDPattern  = regexp.MustCompile(`^[0-9]+$`)
	externalIDPattern = regexp.MustCompile(`^[A-Z]+-([0-9]+)$`)
)

// TestCaseID is a validated test case identifier.
type TestCaseID struct {
	Raw      string // as supplied by the caller
	Numeric  string // digits; for the external form, the numeric suffix
	External string // full PREFIX-N form, empty for numeric input
}

// IsExternal reports whether the ID was supplied in PREFIX-N form.
func (id TestCaseID) IsExternal() bool {
	return id.External != ""
}

func (id TestCaseID) String() string {
	return id.Raw
}

// ValidateNumericID checks that value is a non-empty run of digits.
func ValidateNumericID(value, field string) (string, error) {
	if value == "" {
		return "", NewValidationError("%s must be a non-empty string", field)
	}
	if !numericIDPattern.MatchString(value) {
		return "", NewValidationError("%s must contain only digits", field)
	}
	return value, nil
}

// ValidateTestCaseID accepts either a numeric ID ("50140") or an external
// ID ("ACX-50140").
func ValidateTestCaseID(value string) (TestCaseID, error) {
	if value == "" {
		return TestCaseID{}, NewValidationError("Test case ID must be a non-empty string")
	}
	if numericIDPattern.MatchString(value) {
		return TestCaseID{Raw: value, Numeric: value}, nil
	}
	if m := externalIDPattern.FindStringSubmatch(value); m != nil {
		return TestCaseID{Raw: value, Numeric: m[1], External: value}, nil
	}
	return TestCaseID{}, NewValidationError(
		"Test case ID %q is invalid: expected a numeric ID (e.g. 50140) or an external ID (e.g. ACX-50140)", value)
}

// ValidateNonEmptyString checks that value is a string with visible content.
// The returned string is the original value, untrimmed.
func ValidateNonEmptyString(value interface{}, field string) (string, error) {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", NewValidationError("%s must be a non-empty string", field)
	}
	return s, nil
}

// numericParam validates a numeric identifier and converts it to the int the
// backend expects.
func numericParam(value, field string) (int, error) {
	digits, err := ValidateNumericID(value, field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, NewValidationError("%s is out of range: %s", field, digits)
	}
	return n, nil
}
