package diagnosis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// contentKeys ist die feste Prioritätsliste für Inhalte in Objekten.
// Modelle verpacken einzelne Einträge gern als {"text": ...} oder {"passo": ...}.
var contentKeys = []string{
	"text",
	"description",
	"descricao",
	"descrição",
	"desc",
	"item",
	"causa",
	"cause",
	"valor",
	"value",
	"passo",
	"step",
	"instrucao",
	"instrução",
	"instruction",
}

// ExtractString liefert die beste einzelne String-Darstellung eines beliebigen Werts.
//
// Reihenfolge bei Objekten: erster Prioritätsschlüssel mit nicht-leerem String,
// dann erster String-Wert in Schlüsselreihenfolge, zuletzt das ganze Objekt als
// JSON mit sortierten Schlüsseln. Es wird nur eine Ebene tief gesucht.
func ExtractString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *Object, map[string]any:
		return extractFromObject(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatFloat(t, 64)
	case float32:
		return formatFloat(float64(t), 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t)
	}
	return canonicalJSON(v)
}

func extractFromObject(obj any) string {
	if o, ok := obj.(*Object); ok && o == nil {
		return ""
	}
	for _, key := range contentKeys {
		if val, ok := lookup(obj, key); ok {
			if s, ok := val.(string); ok && s != "" {
				return s
			}
		}
	}
	keys, _ := objectKeys(obj)
	for _, key := range keys {
		val, _ := lookup(obj, key)
		if s, ok := val.(string); ok {
			return s
		}
	}
	return canonicalJSON(obj)
}

func formatFloat(f float64, bits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprint(f)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
