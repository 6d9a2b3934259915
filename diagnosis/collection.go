package diagnosis

import "strings"

// ToStringList macht aus einem Wert eine geordnete Liste nicht-leerer Strings.
// Duplikate bleiben erhalten; Wiederholungen in der Modellantwort sind Signal.
func ToStringList(v any) []string {
	out := []string{}
	if v == nil {
		return out
	}
	items, ok := asSequence(v)
	if !ok {
		items = []any{v}
	}
	for _, item := range items {
		s := ExtractString(item)
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
