package diagnosis

import "strings"

// Platzhalter-Titel, wenn die Modellantwort keinen liefert.
const (
	CorrectiveActionTitle  = "Corrective Action"
	TechnicalSolutionTitle = "Technical Solution"
)

// Solution ist ein Lösungsvorschlag mit Titel, Arbeitsschritten und Schwierigkeitsgrad.
type Solution struct {
	Title      string     `json:"title" yaml:"title"`
	Steps      []string   `json:"steps" yaml:"steps"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
}

// NormalizeSolution baut aus einem beliebigen Eintrag der Lösungsliste eine Solution.
// Strings werden zu einem einzelnen Schritt; Objekte werden über die Aliastabellen gelesen;
// alles andere wird erst zu einem String extrahiert.
func NormalizeSolution(item any) Solution {
	if !isObject(item) {
		return Solution{
			Title:      CorrectiveActionTitle,
			Steps:      ToStringList(ExtractString(item)),
			Difficulty: Medium,
		}
	}

	title := TechnicalSolutionTitle
	if v, ok := Resolve(item, TitleAliases); ok {
		if s := ExtractString(v); strings.TrimSpace(s) != "" {
			title = s
		}
	}

	steps, _ := Resolve(item, StepAliases)
	difficulty, _ := Resolve(item, DifficultyAliases)

	return Solution{
		Title:      title,
		Steps:      ToStringList(steps),
		Difficulty: Classify(difficulty),
	}
}
