package formatter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tecnoloc-diag/diagnosis"
)

func sample() diagnosis.Result {
	return diagnosis.Result{
		PossibleCauses: []string{"Bateria descarregada", "Relé <K1> queimado"},
		Solutions: []diagnosis.Solution{{
			Title:      "Recarregar bateria",
			Steps:      []string{"Desligar cargas", "Conectar carregador"},
			Difficulty: diagnosis.Easy,
		}},
	}
}

func TestDisplayJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DisplayResult(&buf, sample(), "json"))
	assert.Contains(t, buf.String(), "Relé <K1> queimado")

	var got diagnosis.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
}

func TestDisplayYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DisplayResult(&buf, sample(), "YAML"))
	assert.Contains(t, buf.String(), "possible_causes:")

	var got diagnosis.Result
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
}

func TestDisplayHuman(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	require.NoError(t, DisplayResult(&buf, sample(), ""))
	out := buf.String()
	assert.Contains(t, out, "1. Bateria descarregada")
	assert.Contains(t, out, "1. Recarregar bateria [Easy]")
	assert.Contains(t, out, "2) Conectar carregador")

	buf.Reset()
	require.NoError(t, DisplayResult(&buf, diagnosis.Result{}, FormatHuman))
	assert.Contains(t, buf.String(), "none reported")
}

func TestDisplayUnknownFormat(t *testing.T) {
	assert.Error(t, DisplayResult(&bytes.Buffer{}, sample(), "xml"))
}
