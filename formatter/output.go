package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"tecnoloc-diag/diagnosis"
)

// Unterstützte Ausgabeformate.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// DisplayResult schreibt das Ergebnis im gewünschten Format. Unbekannte Formate sind ein Fehler.
func DisplayResult(w io.Writer, r diagnosis.Result, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return displayJSON(w, r)
	case FormatYAML:
		return displayYAML(w, r)
	case FormatHuman, "":
		displayHuman(w, r)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (human, json, yaml)", format)
	}
}

func displayJSON(w io.Writer, r diagnosis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

func displayYAML(w io.Writer, r diagnosis.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func displayHuman(w io.Writer, r diagnosis.Result) {
	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)

	yellow.Fprintln(w, "⚠️  POSSIBLE CAUSES:")
	if len(r.PossibleCauses) == 0 {
		fmt.Fprintf(w, "   %s\n", color.HiBlackString("none reported"))
	}
	for i, c := range r.PossibleCauses {
		fmt.Fprintf(w, "   %d. %s\n", i+1, c)
	}
	fmt.Fprintln(w)

	cyan.Fprintln(w, "🔧 SOLUTIONS:")
	for i, s := range r.Solutions {
		fmt.Fprintf(w, "   %d. %s %s\n", i+1, s.Title, difficultyColor(s.Difficulty).Sprintf("[%s]", s.Difficulty))
		for j, step := range s.Steps {
			fmt.Fprintf(w, "      %d) %s\n", j+1, step)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func difficultyColor(d diagnosis.Difficulty) *color.Color {
	switch d {
	case diagnosis.Easy:
		return color.New(color.FgGreen)
	case diagnosis.Hard:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}
