package normalize

import "strings"

// TagSet is a version's tags, lower-cased once for exact membership checks.
type TagSet map[string]struct{}

// NewTagSet builds the set from raw upstream tags.
func NewTagSet(tags []string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[strings.ToLower(t)] = struct{}{}
	}
	return s
}

// Has reports whether tag (already lower-case) is in the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}
