package eurotab

import (
	"fmt"
	"strings"
)

// HeaderMatch selects how a header marker is compared with a line.
type HeaderMatch int

const (
	// MatchContains finds the first line containing the marker
	MatchContains HeaderMatch = iota
	// MatchPrefix finds the first line starting with the marker
	MatchPrefix
)

// String returns the match mode name
func (m HeaderMatch) String() string {
	if m == MatchPrefix {
		return "prefix"
	}
	return "contains"
}

// parseHeaderMatch converts a match mode name into a HeaderMatch.
func parseHeaderMatch(name string) (HeaderMatch, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "contains":
		return MatchContains, nil
	case "prefix":
		return MatchPrefix, nil
	default:
		return MatchContains, fmt.Errorf("%w: unknown header match %q", ErrInvalidSource, name)
	}
}

// LocateHeader returns the index of the first line containing marker.
func LocateHeader(lines []string, marker string) (int, error) {
	return LocateHeaderFunc(lines, MatchContains, marker)
}

// LocateHeaderFunc returns the index of the first line matching marker under
// the given match mode. Lines are scanned in order, so the earliest match wins.
func LocateHeaderFunc(lines []string, match HeaderMatch, marker string) (int, error) {
	if marker == "" {
		return -1, fmt.Errorf("%w: empty header marker", ErrInvalidSource)
	}
	for i, line := range lines {
		switch match {
		case MatchPrefix:
			if strings.HasPrefix(line, marker) {
				return i, nil
			}
		default:
			if strings.Contains(line, marker) {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: no line %s %q", ErrHeaderNotFound, matchVerb(match), marker)
}

func matchVerb(m HeaderMatch) string {
	if m == MatchPrefix {
		return "starts with"
	}
	return "contains"
}
