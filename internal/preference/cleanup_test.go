package preference

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanupPassesUnknownKeysThrough(t *testing.T) {
	params := map[string]interface{}{"blah": "fake"}
	require.Equal(t, params, Cleanup(params))
}

func TestCleanupDropsNonSequenceChecklist(t *testing.T) {
	out := Cleanup(map[string]interface{}{"skills": "notanarray"})
	require.NotContains(t, out, "skills")
}

func TestCleanupKeepsAcceptedEntriesOnly(t *testing.T) {
	out := Cleanup(map[string]interface{}{
		"skills": []interface{}{
			map[string]interface{}{"checked": true, "name": "Ruby"},
			map[string]interface{}{"checked": false, "name": "Go"},
		},
	})
	require.Equal(t, []string{"Ruby"}, out["skills"])
}

func TestCleanupEmptySequenceStaysEmpty(t *testing.T) {
	out := Cleanup(map[string]interface{}{"skills": []interface{}{}})
	require.Equal(t, []string{}, out["skills"])
}

func TestCleanupScalarsPassThroughUnchanged(t *testing.T) {
	out := Cleanup(map[string]interface{}{
		"expected_salary": 90000,
		"locations": []interface{}{
			map[string]interface{}{"checked": true, "name": "Portland, OR"},
		},
	})
	require.Equal(t, 90000, out["expected_salary"])
	require.Equal(t, []string{"Portland, OR"}, out["locations"])
}

func TestRejectAttrs(t *testing.T) {
	tests := []struct {
		name    string
		entries []interface{}
		want    []string
	}{
		{
			name:    "missing expected keys",
			entries: []interface{}{map[string]interface{}{"test": "this"}},
			want:    []string{},
		},
		{
			name: "extra key",
			entries: []interface{}{
				map[string]interface{}{"checked": true, "name": "Ruby", "extra": 1},
			},
			want: []string{},
		},
		{
			name: "checked not a boolean",
			entries: []interface{}{
				map[string]interface{}{"checked": "haha", "name": "Ruby"},
			},
			want: []string{},
		},
		{
			name: "unchecked entry",
			entries: []interface{}{
				map[string]interface{}{"checked": false, "name": "Ruby"},
			},
			want: []string{},
		},
		{
			name:    "entry not a mapping",
			entries: []interface{}{"Ruby"},
			want:    []string{},
		},
		{
			name: "accepted in pass order",
			entries: []interface{}{
				map[string]interface{}{"checked": true, "name": "Ruby"},
				map[string]interface{}{"checked": true, "name": "Python"},
			},
			want: []string{"Ruby", "Python"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, rejectAttrs(tt.entries))
		})
	}
}

func TestValidateScalars(t *testing.T) {
	require.NoError(t, ValidateScalars(map[string]interface{}{"expected_salary": 90000}))
	require.Error(t, ValidateScalars(map[string]interface{}{"expected_salary": 9999999999999999.0}))
	require.Error(t, ValidateScalars(map[string]interface{}{"work_hours": 2000}))
	require.Error(t, ValidateScalars(map[string]interface{}{"potential_availability": 200}))
	require.Error(t, ValidateScalars(map[string]interface{}{"work_hours": "abc"}))
}

func TestValidateChecklists(t *testing.T) {
	require.NoError(t, ValidateChecklists(map[string]interface{}{
		"locations": []string{"Portland, OR"},
		"skills":    []string{"anything goes"},
	}))
	require.Error(t, ValidateChecklists(map[string]interface{}{
		"locations": []string{"Atlantis"},
	}))
}
