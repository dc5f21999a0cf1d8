package quiz

import "math"

// Tier is the qualitative feedback for a finished quiz.
type Tier string

const (
	TierPerfect       Tier = "perfect"
	TierGood          Tier = "good"
	TierNeedsPractice Tier = "needs-practice"
)

// Unanswered is shown in place of a choice the user never made.
const Unanswered = "unanswered"

var tierMessages = map[Tier]string{
	TierPerfect:       "Perfect score! Great job!",
	TierGood:          "Well done! Keep practicing!",
	TierNeedsPractice: "Keep learning and try again!",
}

// TierFor grades score out of total. Good starts at exactly 70% of total.
func TierFor(score, total int) Tier {
	switch {
	case total > 0 && score == total:
		return TierPerfect
	case score*10 >= total*7:
		return TierGood
	default:
		return TierNeedsPractice
	}
}

// Message returns the user-facing feedback line for the tier.
func (t Tier) Message() string {
	return tierMessages[t]
}

// ReviewItem describes how one question was answered.
type ReviewItem struct {
	Index         int      `json:"index"`
	Prompt        string   `json:"prompt"`
	Choices       []string `json:"choices"`
	Chosen        *int     `json:"chosen"`
	ChosenAnswer  string   `json:"chosen_answer"`
	Correct       bool     `json:"correct"`
	CorrectChoice *int     `json:"correct_choice,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
}

// Review is the result view of a submitted quiz.
type Review struct {
	Items   []ReviewItem `json:"items"`
	Score   int          `json:"score"`
	Total   int          `json:"total"`
	Percent float64      `json:"percent"`
	Tier    Tier         `json:"tier"`
	Message string       `json:"message"`
}

func buildReview(questions []Question, selected map[int]int, score int) Review {
	items := make([]ReviewItem, len(questions))
	for i, q := range questions {
		item := ReviewItem{
			Index:        i,
			Prompt:       q.Prompt,
			Choices:      append([]string(nil), q.Choices...),
			ChosenAnswer: Unanswered,
		}
		if choice, ok := selected[i]; ok {
			c := choice
			item.Chosen = &c
			item.ChosenAnswer = q.Choices[choice]
			item.Correct = choice == q.Correct
		}
		if !item.Correct {
			c := q.Correct
			item.CorrectChoice = &c
			item.CorrectAnswer = q.Choices[q.Correct]
		}
		items[i] = item
	}

	total := len(questions)
	tier := TierFor(score, total)
	return Review{
		Items:   items,
		Score:   score,
		Total:   total,
		Percent: percent(score, total),
		Tier:    tier,
		Message: tier.Message(),
	}
}

func percent(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*1000) / 10
}
