package quiz

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// InvalidQuestionDataError indicates a question payload that failed schema
// validation or semantic checks. Boundary rejection: the video renders as
// content-unavailable, playback is not attempted with partial questions.
type InvalidQuestionDataError struct {
	Err error
}

func (e *InvalidQuestionDataError) Error() string {
	return fmt.Sprintf("invalid question data: %v", e.Err)
}

func (e *InvalidQuestionDataError) Unwrap() error { return e.Err }

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://question-set.json", questionSetSchema); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = c.Compile("schema://question-set.json")
	})
	return compiledSchema, compileErr
}

type questionWire struct {
	ID                  string `json:"id"`
	Type                string `json:"type"`
	Prompt              string `json:"prompt"`
	TriggerTimeMs       int64  `json:"triggerTimeMs"`
	TimeLimitSec        int    `json:"timeLimitSec"`
	Closeable           bool   `json:"closeable"`
	Options             []string `json:"options"`
	CorrectOptions      []int  `json:"correctOptions"`
	ExplanationRequired bool   `json:"explanationRequired"`
}

type questionSetWire struct {
	Questions []questionWire `json:"questions"`
}

// Decode parses and validates a question payload, returning questions sorted
// by trigger time ascending. Any failure is an *InvalidQuestionDataError.
func Decode(raw []byte) ([]Question, error) {
	schema, err := compiled()
	if err != nil {
		return nil, &InvalidQuestionDataError{Err: fmt.Errorf("compile schema: %w", err)}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &InvalidQuestionDataError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &InvalidQuestionDataError{Err: err}
	}

	var wire questionSetWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &InvalidQuestionDataError{Err: err}
	}

	out := make([]Question, 0, len(wire.Questions))
	seen := make(map[string]bool, len(wire.Questions))
	for _, w := range wire.Questions {
		q, err := fromWire(w)
		if err != nil {
			return nil, &InvalidQuestionDataError{Err: err}
		}
		if seen[q.ID] {
			return nil, &InvalidQuestionDataError{Err: fmt.Errorf("duplicate question id %q", q.ID)}
		}
		seen[q.ID] = true
		out = append(out, q)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TriggerTime < out[j].TriggerTime
	})
	return out, nil
}

func fromWire(w questionWire) (Question, error) {
	kind, err := ParseKind(w.Type)
	if err != nil {
		return Question{}, err
	}

	q := Question{
		ID:                  w.ID,
		Kind:                kind,
		Prompt:              w.Prompt,
		TriggerTime:         time.Duration(w.TriggerTimeMs) * time.Millisecond,
		TimeLimit:           time.Duration(w.TimeLimitSec) * time.Second,
		Closeable:           w.Closeable,
		Options:             w.Options,
		Correct:             w.CorrectOptions,
		ExplanationRequired: w.ExplanationRequired,
	}

	switch kind {
	case KindSingleChoice, KindMultiChoice:
		if len(q.Options) < 2 {
			return Question{}, fmt.Errorf("question %q: choice kind needs at least 2 options", q.ID)
		}
		if len(q.Correct) == 0 {
			return Question{}, fmt.Errorf("question %q: choice kind needs a correct option set", q.ID)
		}
		for _, idx := range q.Correct {
			if idx < 0 || idx >= len(q.Options) {
				return Question{}, fmt.Errorf("question %q: correct option %d out of range", q.ID, idx)
			}
		}
		if kind == KindSingleChoice && len(q.Correct) != 1 {
			return Question{}, fmt.Errorf("question %q: single-choice needs exactly one correct option", q.ID)
		}
	case KindFreeText, KindFillBlank:
		// not auto-scored; options and correct set are ignored
	}
	return q, nil
}
