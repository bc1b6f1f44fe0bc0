package weibo

import "fmt"

// Visibility is the access-control tier applied to a post
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
	VisibilityFriendsOnly
	VisibilityFansOnly
)

// visibilityTable is the single source of truth for the protocol-level
// integer codes. The mapping is bijective and stable regardless of the
// platform's display language; do not reorder codes.
var visibilityTable = []struct {
	level Visibility
	code  int
	name  string
}{
	{VisibilityPublic, 0, "public"},
	{VisibilityPrivate, 1, "private"},
	{VisibilityFriendsOnly, 2, "friends"},
	{VisibilityFansOnly, 10, "fans"},
}

// Code returns the wire-level integer code for the visibility level
func (v Visibility) Code() int {
	for _, entry := range visibilityTable {
		if entry.level == v {
			return entry.code
		}
	}
	return -1
}

// String returns the canonical name used on the command line
func (v Visibility) String() string {
	for _, entry := range visibilityTable {
		if entry.level == v {
			return entry.name
		}
	}
	return fmt.Sprintf("visibility(%d)", int(v))
}

// IsValid reports whether v is a member of the closed enumeration
func (v Visibility) IsValid() bool {
	for _, entry := range visibilityTable {
		if entry.level == v {
			return true
		}
	}
	return false
}

// VisibilityFromCode returns the visibility level for a wire code
func VisibilityFromCode(code int) (Visibility, error) {
	for _, entry := range visibilityTable {
		if entry.code == code {
			return entry.level, nil
		}
	}
	return 0, fmt.Errorf("unknown visibility code: %d", code)
}

// ParseVisibility parses a command-line visibility name
func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case "public":
		return VisibilityPublic, nil
	case "private":
		return VisibilityPrivate, nil
	case "friends":
		return VisibilityFriendsOnly, nil
	case "fans":
		return VisibilityFansOnly, nil
	default:
		return 0, fmt.Errorf("invalid visibility %q: valid values are public, friends, private, fans", s)
	}
}
