// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vector

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Filter is a structured metadata pre-filter. Every set field must
// match exactly for a point to be eligible in either prefetch.
type Filter struct {
	FileName  string `mapstructure:"file_name"`
	FileType  string `mapstructure:"file_type"`
	PageLabel string `mapstructure:"page_label"`
}

// IsEmpty reports whether no field is set.
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.FileName == "" && f.FileType == "" && f.PageLabel == "")
}

// FilterFromMap decodes an untyped metadata filter (as received on the
// API boundary) into a Filter. Unknown keys are rejected so malformed
// filters fail fast instead of silently matching nothing.
func FilterFromMap(m map[string]any) (*Filter, error) {
	if len(m) == 0 {
		return nil, nil
	}

	var filter Filter
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &filter,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build filter decoder: %w", err)
	}

	if err := decoder.Decode(m); err != nil {
		return nil, fmt.Errorf("invalid metadata filter: %w", err)
	}

	return &filter, nil
}
