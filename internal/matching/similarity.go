// internal/matching/similarity.go
package matching

import (
	"math"
	"regexp"
	"strings"
)

// SimilarityFunc scores how close two texts are, in [0,1]. The matcher
// accepts any implementation so an embedding-based scorer can replace the
// lexical ones without touching the scoring pipeline.
type SimilarityFunc func(a, b string) float64

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// TokenJaccard is the default similarity: Jaccard overlap of the lowercase
// token sets.
func TokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// TokenCosine is a term-frequency cosine similarity over lowercase tokens.
func TokenCosine(a, b string) float64 {
	freqA := tokenFreq(a)
	freqB := tokenFreq(b)
	if len(freqA) == 0 || len(freqB) == 0 {
		return 0
	}

	dot := 0.0
	for token, countA := range freqA {
		if countB, ok := freqB[token]; ok {
			dot += float64(countA) * float64(countB)
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (norm(freqA) * norm(freqB))
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, token := range wordPattern.FindAllString(strings.ToLower(s), -1) {
		set[token] = true
	}
	return set
}

func tokenFreq(s string) map[string]int {
	freq := map[string]int{}
	for _, token := range wordPattern.FindAllString(strings.ToLower(s), -1) {
		freq[token]++
	}
	return freq
}

func norm(freq map[string]int) float64 {
	sum := 0.0
	for _, count := range freq {
		sum += float64(count) * float64(count)
	}
	return math.Sqrt(sum)
}
