package diagnosis

import (
	"errors"
	"fmt"
	"strings"
)

// Result ist das strikte Diagnoseergebnis, das an Anzeige und Persistenz geht.
type Result struct {
	PossibleCauses []string   `json:"possible_causes" yaml:"possible_causes"`
	Solutions      []Solution `json:"solutions" yaml:"solutions"`
}

// DefaultSolution ist die Standard-Inspektion, die eingesetzt wird, wenn keine Lösung übrig bleibt.
func DefaultSolution() Solution {
	return Solution{
		Title: "Standard Inspection",
		Steps: []string{
			"Perform a visual inspection",
			"Check electrical connections",
			"Verify fluid levels",
		},
		Difficulty: Easy,
	}
}

// Assemble baut aus dem rohen Modellwert ein gültiges Result. Die Funktion schlägt nie fehl
// und liefert immer mindestens eine Lösung.
func Assemble(raw any) Result {
	r, _ := EnsureMinimumContent(Collect(raw))
	return r
}

// Collect liest Ursachen und Lösungen ohne die Mindestinhalt-Garantie.
// Das Ergebnis kann eine leere Lösungsliste haben.
func Collect(raw any) Result {
	r := Result{PossibleCauses: []string{}, Solutions: []Solution{}}
	if !isObject(raw) {
		return r
	}

	causes, _ := Resolve(raw, CauseAliases)
	r.PossibleCauses = ToStringList(causes)

	rawSolutions, _ := Resolve(raw, SolutionAliases)
	items, ok := asSequence(rawSolutions)
	if !ok {
		return r
	}
	for _, item := range items {
		r.Solutions = append(r.Solutions, NormalizeSolution(item))
	}
	return r
}

// EnsureMinimumContent ersetzt eine leere Lösungsliste durch genau die Standard-Inspektion.
// Der zweite Rückgabewert meldet, ob ersetzt wurde. Ursachen bleiben unberührt.
func EnsureMinimumContent(r Result) (Result, bool) {
	if r.PossibleCauses == nil {
		r.PossibleCauses = []string{}
	}
	if len(r.Solutions) > 0 {
		return r, false
	}
	r.Solutions = []Solution{DefaultSolution()}
	return r, true
}

// AsRaw stellt das Ergebnis wieder als RawValue dar, z. B. für eine erneute Normalisierung.
func (r Result) AsRaw() any {
	causes := make([]any, 0, len(r.PossibleCauses))
	for _, c := range r.PossibleCauses {
		causes = append(causes, c)
	}
	solutions := make([]any, 0, len(r.Solutions))
	for _, s := range r.Solutions {
		steps := make([]any, 0, len(s.Steps))
		for _, st := range s.Steps {
			steps = append(steps, st)
		}
		solutions = append(solutions, NewObject(
			"title", s.Title,
			"steps", steps,
			"difficulty", string(s.Difficulty),
		))
	}
	return NewObject("possible_causes", causes, "solutions", solutions)
}

// ErrParseFailure kennzeichnet Modellantworten, die kein gültiges JSON sind.
var ErrParseFailure = errors.New("model response is not valid JSON")

// ParseError trägt die Ursache eines Parse-Fehlers.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrParseFailure.Error(), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParseFailure }

// ParseResponse entfernt Markdown-Codezäune, dekodiert den Text und normalisiert ihn.
// Ungültiges JSON wird als *ParseError gemeldet; das Ergebnis ist dann leer.
func ParseResponse(text string) (Result, error) {
	v, err := Decode([]byte(StripCodeFences(text)))
	if err != nil {
		return Result{}, &ParseError{Err: err}
	}
	return Assemble(v), nil
}

// StripCodeFences entfernt ```json ... ``` um eine Modellantwort.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
