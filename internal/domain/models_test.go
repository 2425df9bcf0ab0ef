package domain

import (
	"errors"
	"testing"
)

func TestTextMatchIsCaseAndTrimInsensitive(t *testing.T) {
	q := Question{ID: 5, Type: QuestionText, CorrectText: "Data"}

	for _, raw := range []string{"data", " Data ", "DATA", "\tdata\n"} {
		if !q.Matches(raw) {
			t.Fatalf("expected %q to match %q", raw, q.CorrectText)
		}
	}
	if q.Matches("database") {
		t.Fatalf("expected %q not to match", "database")
	}
	if q.Matches(true) {
		t.Fatalf("expected bool answer not to match a text question")
	}
}

func TestExactMatchVariants(t *testing.T) {
	mc := Question{ID: 2, Type: QuestionMultipleChoice, Options: []string{"A", "B"}, CorrectText: "B"}
	if !mc.Matches("B") {
		t.Fatalf("expected exact option match")
	}
	if mc.Matches("b") {
		t.Fatalf("multiple-choice match must be case-sensitive")
	}

	tf := Question{ID: 1, Type: QuestionTrueFalse, CorrectBool: false}
	if !tf.Matches(false) {
		t.Fatalf("expected false to match")
	}
	if tf.Matches(true) || tf.Matches("false") {
		t.Fatalf("expected only a typed bool false to match")
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{4, 5, 80},
		{5, 5, 100},
		{0, 5, 0},
		{1, 3, 33},
		{2, 3, 67},
		{0, 0, 0}, // empty bank guard, no division
	}
	for _, c := range cases {
		if got := Percent(c.score, c.total); got != c.want {
			t.Fatalf("Percent(%d,%d) = %d, want %d", c.score, c.total, got, c.want)
		}
	}
}

func TestQuizResultValidate(t *testing.T) {
	valid := QuizResult{
		FamiliarityLevel: 3,
		Score:            4,
		TotalQuestions:   5,
		Percentage:       80,
		Answers:          map[string]any{"1": false},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid result, got %v", err)
	}

	bad := []QuizResult{
		{FamiliarityLevel: 0, Score: 4, TotalQuestions: 5, Percentage: 80},
		{FamiliarityLevel: 6, Score: 4, TotalQuestions: 5, Percentage: 80},
		{FamiliarityLevel: 3, Score: 4, TotalQuestions: 0, Percentage: 0},
		{FamiliarityLevel: 3, Score: 6, TotalQuestions: 5, Percentage: 100},
		{FamiliarityLevel: 3, Score: 4, TotalQuestions: 5, Percentage: 79},
	}
	for i, r := range bad {
		if err := r.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestQuestionBankInvariants(t *testing.T) {
	questions := Questions()
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}

	seen := map[int]bool{}
	for _, q := range questions {
		if q.ID <= 0 || seen[q.ID] {
			t.Fatalf("question id %d not unique positive", q.ID)
		}
		seen[q.ID] = true

		if q.Type == QuestionMultipleChoice {
			if len(q.Options) == 0 {
				t.Fatalf("question %d: multiple-choice without options", q.ID)
			}
			found := false
			for _, opt := range q.Options {
				if opt == q.CorrectText {
					found = true
				}
			}
			if !found {
				t.Fatalf("question %d: correct answer %q not among options", q.ID, q.CorrectText)
			}
		}
	}
}

func TestFamiliarityLevelsScale(t *testing.T) {
	levels := FamiliarityLevels()
	if len(levels) != 5 {
		t.Fatalf("expected 5 levels, got %d", len(levels))
	}
	for i, level := range levels {
		if level.Value != i+1 {
			t.Fatalf("expected monotonic values 1..5, got %d at %d", level.Value, i)
		}
		if level.Label == "" || level.Description == "" {
			t.Fatalf("level %d missing label or description", level.Value)
		}
	}
}
