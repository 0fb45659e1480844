package normalization

import "strings"

func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// TrimInputString trims without lowercasing, for free-form text such as
// topics and learning goals where case carries meaning.
func TrimInputString(input string) string {
	return strings.TrimSpace(input)
}
