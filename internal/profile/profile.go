// Package profile describes a user in words derived from their RIASEC and
// work-value codes.
package profile

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/garyellow/programme-matcher/internal/sliceutil"
)

// Output limits.
const (
	MaxStrengths       = 6
	MaxLikes           = 4
	MaxDislikes        = 3
	MaxWorkPreferences = 4
)

// Profile is the generated description.
type Profile struct {
	Strengths       []string `json:"strengths"`
	Likes           []string `json:"likes"`
	Dislikes        []string `json:"dislikes"`
	WorkPreferences []string `json:"workPreferences"`
}

// NewRand returns a randomly seeded source for one request.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Build generates the full profile. Only WorkPreferences is deterministic.
func Build(riasecCode, workValueCode string, rng *rand.Rand) Profile {
	return Profile{
		Strengths:       Strengths(riasecCode, rng),
		Likes:           Likes(riasecCode, rng),
		Dislikes:        Dislikes(riasecCode, rng),
		WorkPreferences: WorkPreferences(workValueCode),
	}
}

func topLetters(code string) string {
	return code[:min(3, len(code))]
}

// Strengths picks up to two distinct strengths for each of the top three
// letters.
func Strengths(code string, rng *rand.Rand) []string {
	result := []string{}
	for _, letter := range []byte(topLetters(code)) {
		traits := strengthTraits[letter]
		if len(traits) == 0 {
			continue
		}
		indices := rng.Perm(len(traits))
		for _, i := range indices[:min(2, len(indices))] {
			result = append(result, traits[i])
		}
	}
	return sliceutil.Take(result, MaxStrengths)
}

// Likes picks a random like and the one after it for each of the top three
// letters.
func Likes(code string, rng *rand.Rand) []string {
	result := []string{}
	for _, letter := range []byte(topLetters(code)) {
		likes := likeTraits[letter]
		if len(likes) == 0 {
			continue
		}
		i := rng.IntN(len(likes))
		result = append(result, likes[i])
		if len(likes) > 1 {
			result = append(result, likes[(i+1)%len(likes)])
		}
	}
	return sliceutil.Take(result, MaxLikes)
}

// Dislikes picks one random dislike for each of the top three letters.
func Dislikes(code string, rng *rand.Rand) []string {
	result := []string{}
	for _, letter := range []byte(topLetters(code)) {
		dislikes := dislikeTraits[letter]
		if len(dislikes) == 0 {
			continue
		}
		result = append(result, dislikes[rng.IntN(len(dislikes))])
	}
	return sliceutil.Take(result, MaxDislikes)
}

// WorkPreferences lists preferences for the top three work-value letters in
// code order. A four-letter code containing both R and C leads with the
// recognition preferences.
func WorkPreferences(code string) []string {
	upper := strings.ToUpper(code)
	result := []string{}

	if len(upper) == 4 && strings.ContainsRune(upper, 'R') && strings.ContainsRune(upper, 'C') {
		result = append(result, workPreferences["Rc"][:2]...)
	}

	for _, letter := range topLetters(upper) {
		for _, pref := range workPreferences[string(letter)] {
			if len(result) >= MaxWorkPreferences {
				break
			}
			if !slices.Contains(result, pref) {
				result = append(result, pref)
			}
		}
		if len(result) >= MaxWorkPreferences {
			break
		}
	}
	return sliceutil.Take(result, MaxWorkPreferences)
}
