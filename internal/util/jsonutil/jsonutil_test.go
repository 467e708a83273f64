package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	A string `json:"a"`
}

func TestUnmarshalFlex(t *testing.T) {
	cases := map[string]string{
		"plain":        `{"a":"x"}`,
		"fenced":       "```json\n{\"a\":\"x\"}\n```",
		"bare fence":   "```\n{\"a\":\"x\"}```",
		"quoted":       `"{\"a\":\"x\"}"`,
		"padded plain": "  \n{\"a\":\"x\"}\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			var d doc
			require.NoError(t, UnmarshalFlex([]byte(in), &d))
			assert.Equal(t, "x", d.A)
		})
	}
}

func TestUnmarshalFlexRejects(t *testing.T) {
	var d doc
	assert.ErrorIs(t, UnmarshalFlex([]byte("  "), &d), ErrNoJSON)
	assert.Error(t, UnmarshalFlex([]byte("I could not comply."), &d))
	assert.Error(t, UnmarshalFlex([]byte("```json\n{broken\n```"), &d))
}

func TestMarshalNoEscape(t *testing.T) {
	out, err := MarshalNoEscape(map[string]string{"k": "<a&b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"k":"<a&b>"}`, string(out))

	out, err = MarshalNoEscapeIndent(map[string]int{"n": 1}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"n\": 1\n}", string(out))
}
