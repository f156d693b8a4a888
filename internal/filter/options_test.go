package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCriteria_Matches(t *testing.T) {
	testCases := []struct {
		name     string
		criteria Criteria
		id       string
		want     bool
	}{
		{name: "no filters", criteria: Criteria{}, id: "twitter", want: true},
		{name: "glob match", criteria: Criteria{Glob: "tw*"}, id: "twitter", want: true},
		{name: "glob miss", criteria: Criteria{Glob: "tw*"}, id: "reddit", want: false},
		{name: "label ignores case and underscores", criteria: Criteria{Label: "Digitales"}, id: "medios_digitales", want: true},
		{name: "label miss", criteria: Criteria{Label: "radio"}, id: "medios_digitales", want: false},
		{name: "both must match", criteria: Criteria{Glob: "medios_*", Label: "prensa"}, id: "medios_digitales", want: false},
		{name: "bad glob never matches", criteria: Criteria{Glob: "[a"}, id: "a", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.criteria.Matches(tc.id))
		})
	}
}

func TestCriteria_Apply(t *testing.T) {
	c := Criteria{Glob: "cluster?"}
	assert.Equal(t, []string{"cluster1", "cluster2"}, c.Apply([]string{"cluster1", "cluster10", "cluster2"}))
	assert.Equal(t, []string{}, c.Apply(nil))
}

func TestCriteria_Validate(t *testing.T) {
	assert.NoError(t, (&Criteria{}).Validate())
	assert.NoError(t, (&Criteria{Glob: "a*"}).Validate())
	assert.Error(t, (&Criteria{Glob: "[a"}).Validate())
	assert.True(t, (&Criteria{Label: "x"}).HasFilters())
	assert.False(t, (&Criteria{}).HasFilters())
}
