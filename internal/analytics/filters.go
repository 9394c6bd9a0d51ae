package analytics

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"datahub/internal/models"
)

// Filter keys understood by ApplyFilters
const (
	FilterClass      = "class"
	FilterClan       = "clan"
	FilterLevelRange = "levelRange"
	FilterSearch     = "search"
)

// ApplyFilters returns the characters matching every recognised filter.
// Unknown keys are ignored. The input slice is never modified.
func ApplyFilters(characters []models.Character, set map[string]string) []models.Character {
	if len(set) == 0 {
		return characters
	}

	class := strings.TrimSpace(set[FilterClass])
	clan := strings.TrimSpace(set[FilterClan])
	search := strings.ToLower(strings.TrimSpace(set[FilterSearch]))
	levelMatch, hasLevel := parseLevelRange(set[FilterLevelRange])

	out := make([]models.Character, 0, len(characters))
	for _, c := range characters {
		if class != "" && !strings.EqualFold(c.ClassLabel(), class) {
			continue
		}
		if clan != "" && !strings.EqualFold(c.Clan, clan) {
			continue
		}
		if hasLevel && !levelMatch(c.Level.OrDefault(1)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.ClassLabel()), search) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// parseLevelRange accepts a bucket label ("11-20"), a range ("5-35") or an
// open range ("90+"). Bucket labels match the histogram, so "91-100" also
// takes levels above 100.
func parseLevelRange(value string) (func(int) bool, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, false
	}

	if i := slices.Index(LevelBucketLabels, value); i >= 0 {
		return func(level int) bool { return levelBucket(level) == i }, true
	}

	if lo, ok := strings.CutSuffix(value, "+"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, false
		}
		return func(level int) bool { return level >= n }, true
	}

	loStr, hiStr, ok := strings.Cut(value, "-")
	if !ok {
		return nil, false
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(loStr))
	hi, err2 := strconv.Atoi(strings.TrimSpace(hiStr))
	if err1 != nil || err2 != nil || lo > hi {
		return nil, false
	}
	return func(level int) bool { return level >= lo && level <= hi }, true
}

// TopCharacters returns up to n characters with the highest level.
// Ties keep their input order.
func TopCharacters(characters []models.Character, n int) []models.Character {
	if n <= 0 {
		return nil
	}
	sorted := slices.Clone(characters)
	slices.SortStableFunc(sorted, func(a, b models.Character) int {
		return cmp.Compare(b.Level.OrDefault(1), a.Level.OrDefault(1))
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
