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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFromMap(t *testing.T) {
	t.Run("empty map yields nil filter", func(t *testing.T) {
		filter, err := FilterFromMap(nil)
		require.NoError(t, err)
		assert.Nil(t, filter)

		filter, err = FilterFromMap(map[string]any{})
		require.NoError(t, err)
		assert.Nil(t, filter)
	})

	t.Run("known keys decode", func(t *testing.T) {
		filter, err := FilterFromMap(map[string]any{
			"file_name":  "report.pdf",
			"page_label": "3",
		})
		require.NoError(t, err)
		require.NotNil(t, filter)
		assert.Equal(t, "report.pdf", filter.FileName)
		assert.Equal(t, "3", filter.PageLabel)
		assert.Empty(t, filter.FileType)
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		_, err := FilterFromMap(map[string]any{
			"author": "someone",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid metadata filter")
	})

	t.Run("wrong value type is rejected", func(t *testing.T) {
		_, err := FilterFromMap(map[string]any{
			"file_name": []string{"a.pdf"},
		})
		require.Error(t, err)
	})
}

func TestFilterIsEmpty(t *testing.T) {
	var nilFilter *Filter
	assert.True(t, nilFilter.IsEmpty())
	assert.True(t, (&Filter{}).IsEmpty())
	assert.False(t, (&Filter{FileType: "application/pdf"}).IsEmpty())
}

func TestBuildQdrantFilter(t *testing.T) {
	t.Run("empty filter yields nil", func(t *testing.T) {
		assert.Nil(t, buildQdrantFilter(nil))
		assert.Nil(t, buildQdrantFilter(&Filter{}))
	})

	t.Run("set fields become must conditions", func(t *testing.T) {
		out := buildQdrantFilter(&Filter{
			FileName:  "report.pdf",
			PageLabel: "2",
		})
		require.NotNil(t, out)
		assert.Len(t, out.Must, 2)
	})
}

func TestPayloadRoundTrip(t *testing.T) {
	in := Payload{
		Text:             "chunk text",
		FileName:         "report.pdf",
		FilePath:         "/docs/report.pdf",
		FileType:         "application/pdf",
		FileSize:         2048,
		CreationDate:     "2025-01-02",
		LastModifiedDate: "2025-03-04",
		PageLabel:        "7",
	}

	out := payloadFromQdrant(payloadToQdrant(in))
	assert.Equal(t, in, out)
}

func TestPayloadWithoutPageLabel(t *testing.T) {
	in := Payload{
		Text:     "no page label",
		FileName: "scan.pdf",
		FileType: "application/pdf",
	}

	values := payloadToQdrant(in)
	_, hasLabel := values["page_label"]
	assert.False(t, hasLabel)

	out := payloadFromQdrant(values)
	assert.Empty(t, out.PageLabel)
	assert.Equal(t, in.Text, out.Text)
}
