package flow

import (
	"fmt"
	"net/url"
	"time"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

const dateLayout = "2006-01-02"

// ValidateAnswer checks an answer payload against the question's input-type
// constraints. An empty payload is acceptable for a non-obligatory question
// and rejected for an obligatory one. Failures wrap ErrInvalidAnswer; they
// are expected per-answer outcomes, not fatal errors.
func (g *Graph) ValidateAnswer(q *types.Question, ans types.Answer) error {
	if ans.IsEmpty() {
		if q.Obligatory {
			return invalidAnswer(q, "empty answer to obligatory question")
		}
		return nil
	}
	switch q.InputType {
	case types.InputBool:
		s, ok := ans.Choice.(string)
		if !ok || (s != "yes" && s != "no") {
			return invalidAnswer(q, "expected yes or no")
		}
	case types.InputChoice:
		s, ok := ans.Choice.(string)
		if !ok || !g.isCannedChoice(q, s) {
			return invalidAnswer(q, "choice is not among the canned answers")
		}
	case types.InputMultiChoice:
		choices, ok := ans.Choice.([]any)
		if !ok || len(choices) == 0 {
			return invalidAnswer(q, "expected a non-empty list of choices")
		}
		for _, c := range choices {
			s, ok := c.(string)
			if !ok || !g.isCannedChoice(q, s) {
				return invalidAnswer(q, "choice is not among the canned answers")
			}
		}
	case types.InputText, types.InputReason:
		if _, ok := ans.Choice.(string); !ok {
			return invalidAnswer(q, "expected free text")
		}
	case types.InputDate:
		s, ok := ans.Choice.(string)
		if !ok {
			return invalidAnswer(q, "expected a date string")
		}
		if _, err := time.Parse(dateLayout, s); err != nil {
			return invalidAnswer(q, "date must be YYYY-MM-DD")
		}
	case types.InputDateRange:
		start, end, err := dateRange(ans)
		if err != nil {
			return invalidAnswer(q, err.Error())
		}
		if end.Before(start) {
			return invalidAnswer(q, "range end precedes start")
		}
	case types.InputURL:
		s, ok := ans.Choice.(string)
		if !ok {
			return invalidAnswer(q, "expected a URL string")
		}
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalidAnswer(q, "not an absolute URL")
		}
	case types.InputLookup:
		// Lookup results are opaque; any non-empty payload is stored as is.
	default:
		return fmt.Errorf("question %s input type %q: %w", q.QuestionID, q.InputType, types.ErrUnknownInput)
	}
	return nil
}

func (g *Graph) isCannedChoice(q *types.Question, choice string) bool {
	for _, ca := range g.canned[q.QuestionID] {
		if ca.Choice == choice {
			return true
		}
	}
	return false
}

func dateRange(ans types.Answer) (time.Time, time.Time, error) {
	m, ok := ans.Choice.(map[string]any)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("expected a start/end range")
	}
	parse := func(key string) (time.Time, error) {
		s, ok := m[key].(string)
		if !ok {
			return time.Time{}, fmt.Errorf("missing %s date", key)
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s date must be YYYY-MM-DD", key)
		}
		return t, nil
	}
	start, err := parse("start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parse("end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func invalidAnswer(q *types.Question, reason string) error {
	return fmt.Errorf("question %s: %s: %w", q.QuestionID, reason, types.ErrInvalidAnswer)
}
