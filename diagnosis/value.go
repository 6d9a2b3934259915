package diagnosis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Object ist ein JSON-Objekt, das die Reihenfolge der Schlüssel aus dem Dokument behält.
// Die Extraktion greift auf die Deklarationsreihenfolge zurück, deshalb reicht map[string]any nicht.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject baut ein Objekt aus abwechselnden Schlüssel/Wert-Paaren.
func NewObject(kv ...any) *Object {
	o := &Object{values: make(map[string]any, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		o.Set(k, kv[i+1])
	}
	return o
}

// Set setzt einen Wert; ein bereits vorhandener Schlüssel behält seine Position.
func (o *Object) Set(key string, v any) {
	if o.values == nil {
		o.values = map[string]any{}
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get liefert den Wert zu key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Keys liefert die Schlüssel in Dokumentreihenfolge.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// MarshalJSON serialisiert mit sortierten Schlüsseln, damit die Ausgabe stabil bleibt.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(plain(o))
}

// maxDepth entspricht der Schachtelungsgrenze von encoding/json.
const maxDepth = 10000

// Decode liest ein JSON-Dokument in einen RawValue-Baum.
// Objekte werden zu *Object (Reihenfolge bleibt erhalten), Zahlen zu json.Number.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec, 0)
	if err != nil {
		return nil, err
	}
	// Nach dem Wert darf nur noch Whitespace folgen
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, depth int) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if depth >= maxDepth {
			return nil, fmt.Errorf("exceeded max depth of %d", maxDepth)
		}
		switch t {
		case '{':
			obj := &Object{values: map[string]any{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", keyTok)
				}
				val, err := decodeValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				val, err := decodeValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		// string, json.Number, bool, nil
		return t, nil
	}
}

// objectKeys liefert die Schlüssel eines objektförmigen Werts.
// Bei map[string]any gibt es keine Einfügereihenfolge, dort wird sortiert.
func objectKeys(v any) ([]string, bool) {
	switch o := v.(type) {
	case *Object:
		if o == nil {
			return nil, false
		}
		return o.keys, true
	case map[string]any:
		keys := make([]string, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys, true
	}
	return nil, false
}

func lookup(v any, key string) (any, bool) {
	switch o := v.(type) {
	case *Object:
		return o.Get(key)
	case map[string]any:
		val, ok := o[key]
		return val, ok
	}
	return nil, false
}

func isObject(v any) bool {
	_, ok := objectKeys(v)
	return ok
}

func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	}
	return nil, false
}

// plain wandelt *Object rekursiv in map[string]any um (für encoding/json).
func plain(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}
		m := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			m[k] = plain(t.values[k])
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = plain(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	}
	return v
}

// canonicalJSON serialisiert einen Wert als JSON mit sortierten Schlüsseln.
// Schlägt das fehl (z. B. NaN), wird auf fmt zurückgegriffen; die Funktion liefert immer einen String.
func canonicalJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(plain(v)); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
