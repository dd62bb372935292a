package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

func TestValidateAnswer(t *testing.T) {
	g, err := NewGraph(demoBundle())
	require.NoError(t, err)

	question := func(input string, obligatory bool) *types.Question {
		return &types.Question{QuestionID: "qx", InputType: input, Obligatory: obligatory}
	}

	tests := []struct {
		name    string
		q       *types.Question
		ans     types.Answer
		wantErr error
	}{
		{
			name: "empty answer to optional question",
			q:    question(types.InputText, false),
			ans:  types.Answer{},
		},
		{
			name:    "empty answer to obligatory question",
			q:       question(types.InputText, true),
			ans:     types.Answer{},
			wantErr: types.ErrInvalidAnswer,
		},
		{
			name: "bool yes",
			q:    question(types.InputBool, true),
			ans:  types.Answer{Choice: "yes"},
		},
		{
			name: "bool no",
			q:    question(types.InputBool, true),
			ans:  types.Answer{Choice: "no"},
		},
		{
			name:    "bool rejects other strings",
			q:       question(types.InputBool, true),
			ans:     types.Answer{Choice: "maybe"},
			wantErr: types.ErrInvalidAnswer,
		},
		{
			name:    "bool rejects actual booleans",
			q:       question(types.InputBool, true),
			ans:     types.Answer{Choice: true},
			wantErr: types.ErrInvalidAnswer,
		},
		{
			name: "text accepts any string",
			q:    question(types.InputText, true),
			ans:  types.Answer{Choice: "free prose"},
		},
		{
			name: "reason accepts any string",
			q:    question(types.InputReason, true),
			ans:  types.Answer{Choice: "because"},
		},
		{
			name:    "text rejects structured payloads",
			q:       question(types.InputText, true),
			ans:     types.Answer{Choice: 42},
			wantErr: types.ErrInvalidAnswer,
		},
		{
			name: "date accepts ISO days",
			q:    question(types.InputDate, true),
			ans:  types.Answer{Choice: "2026-08-28"},
		},
		{
			name:    "date rejects other layouts",
			q:       question(types.InputDate, true),
			ans:     types.Answer{Choice: "28/08/2026"},
			wantErr: types.ErrInvalidAnswer,
		},
		{
			name: "date range accepts ordered pair",
			q:    question(types.InputDateRange, true),
			ans:  types.Answer{Choice: map[string]any{"start": "2026-01-01", "end": "2026-12-31"}},
		},
		{
			name:    "date range rejects end before start",
			q:       question(types.InputDateRange, true),
			ans:     types.Answer{Choice: map[string]any{"start": "2026-12-31", "end": "2026-01-01"}},
			wantErr: types.ErrInvalidAnswer,
		},
		{
			name:    "date range rejects missing end",
			q:       question(types.InputDateRange, true),
			ans:     types.Answer{Choice: map[string]any{"start": "2026-01-01"}},
			wantErr: types.ErrInvalidAnswer,
		},
		{
			name: "url accepts absolute URLs",
			q:    question(types.InputURL, true),
			ans:  types.Answer{Choice: "https://example.org/repo"},
		},
		{
			name:    "url rejects relative paths",
			q:       question(types.InputURL, true),
			ans:     types.Answer{Choice: "/just/a/path"},
			wantErr: types.ErrInvalidAnswer,
		},
		{
			name: "lookup stores opaque payloads",
			q:    question(types.InputLookup, true),
			ans:  types.Answer{Choice: map[string]any{"id": "org:1234", "label": "Example University"}},
		},
		{
			name:    "unknown input type",
			q:       question("checkbox", true),
			ans:     types.Answer{Choice: "x"},
			wantErr: types.ErrUnknownInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateAnswer(tt.q, tt.ans)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateAnswerChoices(t *testing.T) {
	bundle := demoBundle()
	// Turn q1 into a choice question; it already owns the canned answers.
	bundle.Questions[0].InputType = types.InputChoice
	g, err := NewGraph(bundle)
	require.NoError(t, err)
	q1, err := g.Question("q1")
	require.NoError(t, err)

	assert.NoError(t, g.ValidateAnswer(q1, types.Answer{Choice: "yes"}))
	assert.ErrorIs(t, g.ValidateAnswer(q1, types.Answer{Choice: "maybe"}), types.ErrInvalidAnswer)

	// Multichoice validates every element against the canned set.
	bundle.Questions[0].InputType = types.InputMultiChoice
	assert.NoError(t, g.ValidateAnswer(q1, types.Answer{Choice: []any{"yes", "no"}}))
	assert.ErrorIs(t, g.ValidateAnswer(q1, types.Answer{Choice: []any{"yes", "maybe"}}), types.ErrInvalidAnswer)
	assert.ErrorIs(t, g.ValidateAnswer(q1, types.Answer{Choice: "yes"}), types.ErrInvalidAnswer)
}
