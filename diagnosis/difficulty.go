package diagnosis

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Difficulty ist einer von genau drei Schwierigkeitsgraden.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Schlüsselwörter nach der Faltung (ohne Akzente, Kleinschreibung).
// "fácil"/"facil" und "difícil"/"dificil" fallen damit jeweils zusammen.
var (
	easyKeywords = []string{"facil", "easy"}
	hardKeywords = []string{"dificil", "hard"}
)

// Valid meldet, ob d einer der drei bekannten Grade ist.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Classify ordnet beliebigen Text einem Schwierigkeitsgrad zu. Easy wird vor Hard geprüft;
// ohne Treffer gilt Medium.
func Classify(v any) Difficulty {
	s := fold(ExtractString(v))
	if s == "" {
		return Medium
	}
	if containsAny(s, easyKeywords) {
		return Easy
	}
	if containsAny(s, hardKeywords) {
		return Hard
	}
	return Medium
}

// fold entfernt diakritische Zeichen und faltet Groß-/Kleinschreibung.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
