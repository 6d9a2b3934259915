package diagnosis

// SchemaVersion wird erhöht, sobald sich Aliastabellen, Schlüsselwörter oder das
// Ergebnisformat ändern. Gespeicherte Diagnosen mit kleinerer Version werden neu normalisiert.
const SchemaVersion = 1

// Aliastabellen: jede akzeptierte Schreibweise eines Felds, in Prioritätsreihenfolge.
var (
	CauseAliases      = []string{"possible_causes", "causas"}
	SolutionAliases   = []string{"solutions", "solucoes"}
	TitleAliases      = []string{"title", "titulo", "nome"}
	StepAliases       = []string{"steps", "passos"}
	DifficultyAliases = []string{"difficulty", "dificuldade"}
)

// Resolve liefert den Wert des ersten Alias, der im Objekt als Schlüssel mit
// einem Wert ungleich null vorkommt. Bei nicht-objektförmigen Eingaben: (nil, false).
func Resolve(obj any, aliases []string) (any, bool) {
	if !isObject(obj) {
		return nil, false
	}
	for _, alias := range aliases {
		if v, ok := lookup(obj, alias); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
