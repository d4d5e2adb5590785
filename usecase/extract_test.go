package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/scorelink/domain"
	"github.com/satriahrh/scorelink/domain/entities"
)

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want entities.Score
	}{
		{
			name: "plain object",
			raw:  `{"lines":["Do","Re","Mi"]}`,
			want: entities.Score{"Do", "Re", "Mi"},
		},
		{
			name: "surrounding noise",
			raw:  `ignore me {"lines":["a","b"]} trailing`,
			want: entities.Score{"a", "b"},
		},
		{
			name: "code fence",
			raw:  "Here is the score:\n```json\n{\"score\": [\"C4 q\", \"D4 q\"]}\n```",
			want: entities.Score{"C4 q", "D4 q"},
		},
		{
			name: "first array in document order",
			raw:  `{"title":"x","b":["first"],"a":["second"]}`,
			want: entities.Score{"first"},
		},
		{
			name: "braces inside strings",
			raw:  `note {"lines":["{ not a brace }","}{"]} end`,
			want: entities.Score{"{ not a brace }", "}{"},
		},
		{
			name: "prose braces before the object",
			raw:  `use {curly} braces: {"lines":["x"]}`,
			want: entities.Score{"x"},
		},
		{
			name: "nested array kept as one line",
			raw:  `{"lines":[["a","b"],"c"]}`,
			want: entities.Score{"a,b", "c"},
		},
		{
			name: "non string elements",
			raw:  `{"lines":[1,true,null,{"k":"v"}]}`,
			want: entities.Score{"1", "true", "", `{"k":"v"}`},
		},
		{
			name: "empty array",
			raw:  `{"lines":[]}`,
			want: entities.Score{},
		},
		{
			name: "numbers in shortest form",
			raw:  `{"lines":[1.0,1e2,-0.5,42]}`,
			want: entities.Score{"1", "100", "-0.5", "42"},
		},
		{
			name: "repeated key keeps first array",
			raw:  `{"a":["x"],"a":"s"}`,
			want: entities.Score{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractScore(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractScore_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind error
	}{
		{
			name: "no array",
			raw:  `{"note":"hello"}`,
			kind: domain.ErrNoArrayFound,
		},
		{
			name: "empty object",
			raw:  `{}`,
			kind: domain.ErrNoArrayFound,
		},
		{
			name: "not json",
			raw:  "not json at all",
			kind: domain.ErrInvalidResponseFormat,
		},
		{
			name: "trailing comma",
			raw:  `{"lines":["a","b",]}`,
			kind: domain.ErrInvalidResponseFormat,
		},
		{
			name: "unclosed brace in prose",
			raw:  "ignore {",
			kind: domain.ErrInvalidResponseFormat,
		},
		{
			name: "truncated completion",
			raw:  `Here is the score: {"lines":["Do","Re","Mi`,
			kind: domain.ErrInvalidResponseFormat,
		},
		{
			name: "empty text",
			raw:  "",
			kind: domain.ErrInvalidResponseFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractScore(tt.raw)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestExtractScore_NoArrayReason(t *testing.T) {
	_, err := ExtractScore(`{"note":"hello"}`)
	require.Error(t, err)
	assert.Equal(t, "No array found in response", err.Error())
}

func TestObjectSpans(t *testing.T) {
	spans := objectSpans(`a {"x":1} b {"y":{"z":"}"}} c {"open":`)
	assert.Equal(t, []string{`{"x":1}`, `{"y":{"z":"}"}}`}, spans)

	assert.Empty(t, objectSpans("no braces here"))
	assert.Empty(t, objectSpans("} stray close"))
}
