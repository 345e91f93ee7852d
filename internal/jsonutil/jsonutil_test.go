package jsonutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Message string `json:"message"`
	Level   string `json:"level"`
}

func TestExtractStructured_CleanJSON(t *testing.T) {
	got, err := ExtractStructured[payload](`{"message":"hello","level":"low"}`)
	require.NoError(t, err)
	assert.Equal(t, payload{Message: "hello", Level: "low"}, got)
}

func TestExtractStructured_WrappedInProse(t *testing.T) {
	raw := "Sure! Here is the JSON you asked for:\n" +
		`{"message":"hello","level":"low"}` +
		"\nLet me know if you need anything else."
	got, err := ExtractStructured[payload](raw)
	require.NoError(t, err)
	assert.Equal(t, payload{Message: "hello", Level: "low"}, got)
}

func TestExtractStructured_CodeFence(t *testing.T) {
	raw := "```json\n{\"message\":\"hello\",\"level\":\"low\"}\n```"
	got, err := ExtractStructured[payload](raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Message)
}

func TestExtractStructured_NestedObjectStaysIntact(t *testing.T) {
	type outer struct {
		Inner payload `json:"inner"`
	}
	raw := "prefix {\"inner\":{\"message\":\"hi\",\"level\":\"medium\"}} suffix"
	got, err := ExtractStructured[outer](raw)
	require.NoError(t, err)
	assert.Equal(t, "medium", got.Inner.Level)
}

func TestExtractStructured_NoJSON(t *testing.T) {
	_, err := ExtractStructured[payload]("I'm sorry, I can't help with that.")
	require.Error(t, err)
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestExtractStructured_WhitespaceOnly(t *testing.T) {
	_, err := ExtractStructured[payload]("   \n\t")
	require.Error(t, err)
}
