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
	"github.com/mitchellh/mapstructure"
)

// Decode copies a caller argument bag into a typed input struct. Scalars are
// weakly typed, so "2" and 2 decode to the same int and a JSON number decodes
// into a string ID field. Unknown keys are ignored. args is never modified.
func Decode(args map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return &Error{Kind: KindInternal, Message: err.Error(), Err: err}
	}
	if err := dec.Decode(args); err != nil {
		return &Error{Kind: KindValidation, Message: "invalid arguments: " + err.Error(), Err: err}
	}
	return nil
}

// DecodeObject is Decode for a nested value that must be an object,
// such as the "data" argument of update and create tools.
func DecodeObject(value interface{}, what string, out interface{}) error {
	obj, ok := value.(map[string]interface{})
	if !ok || obj == nil {
		return NewValidationError("%s must be an object", what)
	}
	return Decode(obj, out)
}

// DecodeIDList reads a non-empty array of identifiers. Elements may be
// strings or numbers.
func DecodeIDList(value interface{}, what string) ([]string, error) {
	if ids, ok := value.([]string); ok && len(ids) > 0 {
		return append([]string(nil), ids...), nil
	}
	items, ok := value.([]interface{})
	if !ok || len(items) == 0 {
		return nil, NewValidationError("%s must be a non-empty array", what)
	}
	var ids []string
	if err := mapstructure.WeakDecode(items, &ids); err != nil {
		return nil, NewValidationError("%s must contain only strings or numbers", what)
	}
	return ids, nil
}
