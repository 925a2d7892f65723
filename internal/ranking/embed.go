package ranking

import (
	"math"
	"strings"
)

// Embed is a stand-in for semantic similarity: the square root of the number
// of [a-z0-9] tokens in the lower-cased text.
func Embed(text string) float64 {
	if text == "" {
		return 0
	}
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	return math.Sqrt(float64(len(tokens)))
}
