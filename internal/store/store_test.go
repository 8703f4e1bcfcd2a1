package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    string   `json:"_id,omitempty"`
	Name  string   `json:"name"`
	Slots []string `json:"slots"`
}

func TestToDocumentAndDecode(t *testing.T) {
	doc, err := ToDocument(sample{Name: "Cleaning", Slots: []string{"9am"}})
	require.NoError(t, err)
	assert.Equal(t, Document{"name": "Cleaning", "slots": []any{"9am"}}, doc)

	doc[IDField] = "abc"
	var out sample
	require.NoError(t, Decode(doc, &out))
	assert.Equal(t, sample{ID: "abc", Name: "Cleaning", Slots: []string{"9am"}}, out)
}

func TestToDocumentRejectsUnencodable(t *testing.T) {
	_, err := ToDocument(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestDecodeAll(t *testing.T) {
	docs := []Document{
		{"name": "A", "slots": []any{"1"}},
		{"name": "B"},
	}
	out, err := DecodeAll[sample](docs)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "B", out[1].Name)
	assert.Nil(t, out[1].Slots)
}

func TestWithoutID(t *testing.T) {
	set := Document{"_id": "x", "role": "admin"}
	assert.Equal(t, Document{"role": "admin"}, withoutID(set))
	assert.Equal(t, Document{"_id": "x", "role": "admin"}, set, "input must not be mutated")
}
