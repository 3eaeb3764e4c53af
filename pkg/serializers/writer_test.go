package serializers

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type sampleRecord struct {
	Name     string            `json:"name" yaml:"name"`
	Status   string            `json:"status" yaml:"status"`
	Labels   map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Replicas int               `json:"replicas" yaml:"replicas"`
}

func TestFormatIsUnknown(t *testing.T) {
	assert.False(t, FormatJSON.IsUnknown())
	assert.False(t, FormatYAML.IsUnknown())
	assert.False(t, FormatTable.IsUnknown())
	assert.True(t, Format("xml").IsUnknown())
	assert.True(t, Format("").IsUnknown())
}

func TestSerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatJSON, &buf)

	rec := sampleRecord{Name: "demo-app", Status: "deployed", Replicas: 2}
	require.NoError(t, w.Serialize(rec))

	var got sampleRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, rec, got)
}

func TestSerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatYAML, &buf)

	rec := sampleRecord{Name: "demo-app", Status: "cloning", Replicas: 1}
	require.NoError(t, w.Serialize(rec))

	var got sampleRecord
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, rec, got)
}

func TestSerializeTable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)

	rec := sampleRecord{
		Name:   "demo-app",
		Status: "deployed",
		Labels: map[string]string{"app": "web"},
	}
	require.NoError(t, w.Serialize(rec))

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "demo-app")
	assert.Contains(t, out, "Labels.app")
}

func TestSerializeUnknownFormat(t *testing.T) {
	w := NewWriter(Format("csv"), &bytes.Buffer{})
	err := w.Serialize(sampleRecord{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported format"))
}

func TestNewFileWriterOrStdoutEmptyPath(t *testing.T) {
	w := NewFileWriterOrStdout(FormatJSON, "  ")
	require.NotNil(t, w)
}
