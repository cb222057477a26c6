// Copyright (c) 2025, the fleethealth authors.
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

package serializer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"report.json", FormatJSON},
		{"config.yaml", FormatYAML},
		{"config.yml", FormatYAML},
		{"Report.JSON", FormatJSON},
		{"out.table", FormatTable},
		{"out.txt", FormatTable},
		{"noextension", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFromPath(tt.path))
		})
	}
}

func TestReaderJSON(t *testing.T) {
	r, err := NewReader(FormatJSON, strings.NewReader(`{"name":"fleet","count":3}`))
	require.NoError(t, err)

	var got sample
	require.NoError(t, r.Deserialize(&got))
	assert.Equal(t, "fleet", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestReaderYAML(t *testing.T) {
	r, err := NewReader(FormatYAML, strings.NewReader("name: fleet\ncount: 3\n"))
	require.NoError(t, err)

	var got sample
	require.NoError(t, r.Deserialize(&got))
	assert.Equal(t, "fleet", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestReaderRejectsTable(t *testing.T) {
	_, err := NewReader(FormatTable, strings.NewReader(""))
	require.Error(t, err)

	_, err = NewFileReader(FormatTable, "whatever.table")
	require.Error(t, err)
}

func TestReaderRejectsUnknownFormat(t *testing.T) {
	_, err := NewReader(Format("xml"), strings.NewReader(""))
	require.Error(t, err)
}

func TestNewFileReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: fleet\ncount: 7\n"), 0600))

	r, err := NewFileReader(FormatYAML, path)
	require.NoError(t, err)
	defer r.Close()

	var got sample
	require.NoError(t, r.Deserialize(&got))
	assert.Equal(t, 7, got.Count)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "close is idempotent")
}

func TestNewFileReaderMissingFile(t *testing.T) {
	_, err := NewFileReader(FormatJSON, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: fleet\ncount: 9\n"), 0600))

	got, err := FromFile[sample](path)
	require.NoError(t, err)
	assert.Equal(t, "fleet", got.Name)
	assert.Equal(t, 9, got.Count)
}

func TestFromFileBadContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := FromFile[sample](path)
	require.Error(t, err)
}

func TestNilReaderIsSafe(t *testing.T) {
	var r *Reader
	assert.Error(t, r.Deserialize(&sample{}))
	assert.NoError(t, r.Close())
}
