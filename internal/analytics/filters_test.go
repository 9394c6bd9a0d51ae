package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"datahub/internal/models"
)

var roster = []models.Character{
	{ID: "1", Name: "Ayla", Level: 5, Class: "Mage", Clan: "Moonshade"},
	{ID: "2", Name: "Borin", Level: 95, Class: "Warrior", Clan: "Ironclad"},
	{ID: "3", Name: "Cass", Level: 120, CharacterClass: "Mage", Clan: "Ironclad"},
	{ID: "4", Name: "Dane", Level: 15, Class: "Thief"},
	{ID: "5", Name: "Eris", Level: 95, Class: "Priest"},
}

func ids(chars []models.Character) []string {
	out := make([]string, 0, len(chars))
	for _, c := range chars {
		out = append(out, c.ID)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
		want []string
	}{
		{"no filters", nil, []string{"1", "2", "3", "4", "5"}},
		{"class case-insensitive", map[string]string{"class": "mage"}, []string{"1", "3"}},
		{"bucket label saturates", map[string]string{"levelRange": "91-100"}, []string{"2", "3", "5"}},
		{"custom range", map[string]string{"levelRange": "10-100"}, []string{"2", "4", "5"}},
		{"open range", map[string]string{"levelRange": "96+"}, []string{"3"}},
		{"bad range ignored", map[string]string{"levelRange": "high"}, []string{"1", "2", "3", "4", "5"}},
		{"search name", map[string]string{"search": "OR"}, []string{"2"}},
		{"search class", map[string]string{"search": "thief"}, []string{"4"}},
		{"combined", map[string]string{"class": "Mage", "levelRange": "1-10"}, []string{"1"}},
		{"clan case-insensitive", map[string]string{"clan": "IRONCLAD"}, []string{"2", "3"}},
		{"clan and class", map[string]string{"clan": "Ironclad", "class": "Mage"}, []string{"3"}},
		{"clan without members", map[string]string{"clan": "Emberfall"}, []string{}},
		{"unknown key ignored", map[string]string{"guild": "x"}, []string{"1", "2", "3", "4", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(ApplyFilters(roster, tt.set)))
		})
	}
}

func TestTopCharacters(t *testing.T) {
	top := TopCharacters(roster, 3)
	assert.Equal(t, []string{"3", "2", "5"}, ids(top))
	assert.Equal(t, "1", roster[0].ID, "input must not be reordered")

	assert.Nil(t, TopCharacters(roster, 0))
	assert.Len(t, TopCharacters(roster, 50), len(roster))
}

func TestSummarize(t *testing.T) {
	s := Summarize(make([]models.Player, 3), roster, make([]models.Item, 2))
	assert.Equal(t, 3, s.Players)
	assert.Equal(t, 5, s.Characters)
	assert.Equal(t, 2, s.Items)
	assert.Equal(t, 66.0, s.AverageLevel)
	assert.Equal(t, "Mage", s.TopClass)

	v := s.Values()
	assert.Len(t, v, len(StatKeys))
	assert.Equal(t, 66.0, v[StatAvgLevel])

	empty := Summarize(nil, nil, nil)
	assert.Zero(t, empty.AverageLevel)
	assert.Empty(t, empty.TopClass)
}
