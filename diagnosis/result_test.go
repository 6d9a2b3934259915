package diagnosis

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleEndToEnd(t *testing.T) {
	raw := mustDecode(t, `{"causas":["Bateria fraca"],"solucoes":[{"titulo":"Trocar bateria","passos":["Desconectar terminal","Remover bateria antiga","Instalar nova bateria"],"dificuldade":"fácil"}]}`)

	got := Assemble(raw)

	assert.Equal(t, []string{"Bateria fraca"}, got.PossibleCauses)
	require.Len(t, got.Solutions, 1)
	assert.Equal(t, "Trocar bateria", got.Solutions[0].Title)
	assert.Equal(t, []string{"Desconectar terminal", "Remover bateria antiga", "Instalar nova bateria"}, got.Solutions[0].Steps)
	assert.Equal(t, Easy, got.Solutions[0].Difficulty)
}

func TestAssembleProperties(t *testing.T) {
	t.Run("empty object has no causes and the default solution", func(t *testing.T) {
		got := Assemble(mustDecode(t, `{}`))
		assert.Equal(t, []string{}, got.PossibleCauses)
		assert.Equal(t, []Solution{DefaultSolution()}, got.Solutions)
	})

	t.Run("order preserved", func(t *testing.T) {
		got := Assemble(mustDecode(t, `{"possible_causes":["A","B","C"]}`))
		assert.Equal(t, []string{"A", "B", "C"}, got.PossibleCauses)
	})

	t.Run("alias equivalence", func(t *testing.T) {
		a := Assemble(mustDecode(t, `{"causas":["X"]}`))
		b := Assemble(mustDecode(t, `{"possible_causes":["X"]}`))
		assert.Equal(t, b.PossibleCauses, a.PossibleCauses)
	})

	t.Run("blank causes filtered", func(t *testing.T) {
		got := Assemble(mustDecode(t, `{"possible_causes":["", "  ", "Valid"]}`))
		assert.Equal(t, []string{"Valid"}, got.PossibleCauses)
	})

	t.Run("string item solution", func(t *testing.T) {
		got := Assemble(mustDecode(t, `{"solutions":["Check the oil level"]}`))
		require.Len(t, got.Solutions, 1)
		assert.Equal(t, CorrectiveActionTitle, got.Solutions[0].Title)
		assert.Equal(t, []string{"Check the oil level"}, got.Solutions[0].Steps)
		assert.Equal(t, Medium, got.Solutions[0].Difficulty)
	})

	t.Run("solutions order preserved", func(t *testing.T) {
		got := Assemble(mustDecode(t, `{"solucoes":["first",{"title":"second"},"third"]}`))
		require.Len(t, got.Solutions, 3)
		assert.Equal(t, []string{"first"}, got.Solutions[0].Steps)
		assert.Equal(t, "second", got.Solutions[1].Title)
		assert.Equal(t, []string{"third"}, got.Solutions[2].Steps)
	})

	t.Run("non-sequence solutions become the default", func(t *testing.T) {
		got := Assemble(mustDecode(t, `{"solutions":"just text"}`))
		assert.Equal(t, []Solution{DefaultSolution()}, got.Solutions)
	})

	t.Run("non-object input", func(t *testing.T) {
		for _, in := range []string{`null`, `[]`, `"text"`, `3`, `false`, `[{"possible_causes":["x"]}]`} {
			got := Assemble(mustDecode(t, in))
			assert.Equal(t, []string{}, got.PossibleCauses, in)
			assert.Equal(t, []Solution{DefaultSolution()}, got.Solutions, in)
		}
	})

	t.Run("plain go maps are accepted", func(t *testing.T) {
		got := Assemble(map[string]any{
			"possible_causes": []any{"Filtro entupido"},
			"solutions":       []any{map[string]any{"title": "Limpar filtro", "steps": []string{"Remover", "Lavar"}, "difficulty": "hard"}},
		})
		assert.Equal(t, []string{"Filtro entupido"}, got.PossibleCauses)
		assert.Equal(t, Solution{Title: "Limpar filtro", Steps: []string{"Remover", "Lavar"}, Difficulty: Hard}, got.Solutions[0])
	})
}

func TestEnsureMinimumContent(t *testing.T) {
	r, applied := EnsureMinimumContent(Result{})
	assert.True(t, applied)
	assert.Equal(t, []string{}, r.PossibleCauses)
	assert.Equal(t, []Solution{DefaultSolution()}, r.Solutions)

	in := Result{PossibleCauses: []string{"c"}, Solutions: []Solution{{Title: "t", Steps: []string{}, Difficulty: Hard}}}
	r, applied = EnsureMinimumContent(in)
	assert.False(t, applied)
	assert.Equal(t, in, r)
}

func TestCollectDoesNotApplyGuarantee(t *testing.T) {
	r := Collect(mustDecode(t, `{"causas":["a"]}`))
	assert.Empty(t, r.Solutions)
	assert.NotNil(t, r.Solutions)
}

func TestAssembleIdempotent(t *testing.T) {
	inputs := []string{
		`{}`,
		`null`,
		`{"causas":[" spaced ", {"text":"obj"}],"solucoes":["a", {"nome":"N","passos":"p","dificuldade":"Hard"}, 5]}`,
		`{"possible_causes":"single","solutions":[{"title":"","steps":[],"difficulty":"Fácil"}]}`,
	}
	for _, in := range inputs {
		first := Assemble(mustDecode(t, in))
		second := Assemble(first.AsRaw())
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Assemble not idempotent for %s (-first +second):\n%s", in, diff)
		}
	}
}

func TestAssembleTotality(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		raw := randomValue(rng, 0)
		var got Result
		require.NotPanics(t, func() { got = Assemble(raw) }, "value %#v", raw)
		assertValid(t, got)
		assert.Equal(t, got, Assemble(got.AsRaw()))
	}
}

func TestAssembleDeeplyNested(t *testing.T) {
	deep := strings.Repeat("[", 5000) + `"Rolamento"` + strings.Repeat("]", 5000)
	doc := `{"causas":` + deep + `,"solucoes":[{"titulo":` + deep + `,"passos":` + deep + `}]}`

	got, err := ParseResponse(doc)
	require.NoError(t, err)
	assertValid(t, got)
	assert.Len(t, got.Solutions, 1)

	_, err = ParseResponse(`{"causas":` + strings.Repeat("[", 20000) + `}`)
	assert.ErrorIs(t, err, ErrParseFailure)
}

func TestParseResponse(t *testing.T) {
	t.Run("code fences stripped", func(t *testing.T) {
		got, err := ParseResponse("```json\n{\"causas\":[\"Correia gasta\"]}\n```")
		require.NoError(t, err)
		assert.Equal(t, []string{"Correia gasta"}, got.PossibleCauses)
		assert.Len(t, got.Solutions, 1)
	})

	t.Run("invalid json is a parse failure", func(t *testing.T) {
		_, err := ParseResponse("Desculpe, não consegui analisar.")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrParseFailure))
		var pe *ParseError
		assert.True(t, errors.As(err, &pe))
	})
}

func assertValid(t *testing.T, r Result) {
	t.Helper()
	require.NotNil(t, r.PossibleCauses)
	for _, c := range r.PossibleCauses {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
	require.NotEmpty(t, r.Solutions)
	for _, s := range r.Solutions {
		assert.NotEmpty(t, strings.TrimSpace(s.Title))
		assert.True(t, s.Difficulty.Valid())
		require.NotNil(t, s.Steps)
		for _, st := range s.Steps {
			assert.NotEmpty(t, strings.TrimSpace(st))
		}
	}
}

var interestingKeys = []string{
	"possible_causes", "causas", "solutions", "solucoes", "title", "titulo", "nome",
	"steps", "passos", "difficulty", "dificuldade", "text", "value", "foo", "",
}

func randomValue(rng *rand.Rand, depth int) any {
	kind := rng.Intn(7)
	if depth > 4 {
		kind = rng.Intn(4)
	}
	switch kind {
	case 0:
		return nil
	case 1:
		return []string{"", "  ", "Fácil", "difícil", "texto", "Hard"}[rng.Intn(6)]
	case 2:
		return fmt.Sprint(rng.Intn(100))
	case 3:
		return rng.Intn(2) == 0
	case 4:
		n := rng.Intn(4)
		arr := make([]any, 0, n)
		for i := 0; i < n; i++ {
			arr = append(arr, randomValue(rng, depth+1))
		}
		return arr
	default:
		o := &Object{}
		for i := rng.Intn(5); i > 0; i-- {
			o.Set(interestingKeys[rng.Intn(len(interestingKeys))], randomValue(rng, depth+1))
		}
		return o
	}
}
