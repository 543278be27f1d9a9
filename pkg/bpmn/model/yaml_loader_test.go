package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	w, err := LoadFromFile("./testdata/order.yaml")
	require.NoError(t, err)
	require.NoError(t, w.Validate())

	assert.Equal(t, "order", w.Id)
	assert.Len(t, w.Activities, 5)
	check := w.FindActivity("check")
	assert.Equal(t, "to-small", check.Default().Id)
	assert.Equal(t, "amount > 100", check.Outgoing()[0].Condition.Expression)
	assert.Equal(t, BindingVariable, w.FindActivity("big").Inputs["total"].Kind())
	assert.Equal(t, DataTypeNumber, w.Variables[0].Type)
}

func TestParseYAMLRejectsUnknownFields(t *testing.T) {
	_, err := ParseYAML([]byte("id: x\nactivitiez: []\n"))
	assert.Error(t, err)

	_, err = ParseYAML([]byte(""))
	assert.ErrorContains(t, err, "empty")
}

func TestJSONRoundTripKeepsBindings(t *testing.T) {
	w, err := LoadFromFile("./testdata/order.yaml")
	require.NoError(t, err)

	data, err := json.Marshal(w)
	require.NoError(t, err)
	decoded, err := ParseJSON(data)
	require.NoError(t, err)
	require.NoError(t, decoded.Validate())

	assert.Equal(t, "amount > 100", decoded.FindActivity("check").Outgoing()[0].Condition.Expression)
	assert.False(t, decoded.FindActivity("start").Outgoing()[0].Condition.IsSet())
}
