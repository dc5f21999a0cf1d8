package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/GriffinCanCode/LearnReact/internal/shared/utils"
)

// ErrInvalidBank is returned for question banks that cannot be played.
var ErrInvalidBank = errors.New("quiz: invalid question bank")

// Question is one multiple-choice question. Correct indexes into Choices.
type Question struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Correct int      `json:"correct"`
}

// Validate checks the question is answerable.
func (q Question) Validate() error {
	return utils.ValidateQuestion(q.Prompt, q.Choices, q.Correct)
}

func (q Question) clone() Question {
	q.Choices = append([]string(nil), q.Choices...)
	return q
}

// BankEntry is a question as authored in lesson files. The correct choice is
// given either as an index or as the text of the right answer.
type BankEntry struct {
	Question string   `json:"question" yaml:"question"`
	Answers  []string `json:"answers" yaml:"answers"`
	Correct  *int     `json:"correct,omitempty" yaml:"correct"`
	Answer   string   `json:"answer,omitempty" yaml:"answer"`
}

// Resolve converts the entry into a Question.
func (e BankEntry) Resolve() (Question, error) {
	q := Question{Prompt: e.Question, Choices: e.Answers, Correct: -1}

	switch {
	case e.Correct != nil:
		q.Correct = *e.Correct
	case e.Answer != "":
		for i, choice := range e.Answers {
			if choice == e.Answer {
				q.Correct = i
				break
			}
		}
		if q.Correct < 0 {
			return Question{}, fmt.Errorf("%w: answer %q is not one of the choices for %q", ErrInvalidBank, e.Answer, e.Question)
		}
	default:
		return Question{}, fmt.Errorf("%w: %q has neither correct nor answer", ErrInvalidBank, e.Question)
	}

	if err := q.Validate(); err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}
	return q, nil
}

// ResolveBank converts a whole bank, failing on the first bad entry.
func ResolveBank(entries []BankEntry) ([]Question, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidBank)
	}
	if len(entries) > utils.MaxQuestions {
		return nil, fmt.Errorf("%w: %d questions exceeds maximum %d", ErrInvalidBank, len(entries), utils.MaxQuestions)
	}

	questions := make([]Question, 0, len(entries))
	for i, entry := range entries {
		q, err := entry.Resolve()
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// Shuffle returns a shuffled copy of questions. The input is left untouched.
func Shuffle(questions []Question, r *rand.Rand) []Question {
	shuffled := make([]Question, len(questions))
	copy(shuffled, questions)

	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if r != nil {
		r.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}
	return shuffled
}

// ShuffleWithLimit shuffles and keeps at most limit questions.
// A limit of zero or more than the bank size keeps everything.
func ShuffleWithLimit(questions []Question, limit int, r *rand.Rand) []Question {
	shuffled := Shuffle(questions, r)

	if limit <= 0 || limit > len(shuffled) {
		limit = len(shuffled)
	}
	return shuffled[:limit]
}
