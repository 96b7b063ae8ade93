package inventory

import "strings"

// SplitOwnerName derives first and last name from a display name split on
// single spaces. Two tokens map directly; three or more keep the first and last
// token. A single token is used for both.
func SplitOwnerName(display string) (first, last string) {
	parts := strings.Split(display, " ")
	return parts[0], parts[len(parts)-1]
}
