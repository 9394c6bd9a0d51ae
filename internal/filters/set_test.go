package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollect(t *testing.T) {
	set := Collect(
		map[string]string{
			"class":      "Mage",
			"levelRange": "All",
			"clan":       "",
			"realm":      "ALL",
		},
		map[string]string{
			"search": "  ayla ",
			"guild":  "   ",
		},
	)

	assert.Equal(t, Set{"class": "Mage", "search": "ayla"}, set)
}

func TestCollectEmpty(t *testing.T) {
	assert.Empty(t, Collect(nil, nil))
}

func TestSetCloneAndEqual(t *testing.T) {
	s := Set{"class": "Thief"}
	c := s.Clone()
	c["search"] = "x"

	assert.Len(t, s, 1)
	assert.False(t, s.Equal(c))
	assert.True(t, s.Equal(Set{"class": "Thief"}))

	var nilSet Set
	assert.NotNil(t, nilSet.Clone())
}
