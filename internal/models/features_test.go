package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureSetHasPartialMatch(t *testing.T) {
	fs := NewFeatureSet("Jacuzzi", "בריכה")

	assert.True(t, fs.Has("jacuz"))
	assert.True(t, fs.Has("בריכה"))
	assert.True(t, fs.Has(""))
	assert.False(t, fs.Has("ממ\"ד"))
}

func TestFeatureSetMissing(t *testing.T) {
	fs := NewFeatureSet("ג'קוזי", "בריכה")

	assert.Empty(t, fs.Missing([]string{"ג'קוזי", "בריכה"}))
	assert.Equal(t, []string{"מטבחון"}, fs.Missing([]string{"בריכה", "מטבחון"}))
	assert.Empty(t, fs.Missing(nil))
}

func TestFeatureSetParsesHistoricalShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"array", `["בריכה","ג'קוזי"]`},
		{"flags", `{"בריכה":true,"ג'קוזי":true,"מנגל":false}`},
		{"joined", `"בריכה, ג'קוזי"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var fs FeatureSet
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &fs))
			assert.Equal(t, []string{"בריכה", "ג'קוזי"}, fs.Tags())
		})
	}
}
