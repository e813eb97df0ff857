package feedback

import (
	"fmt"

	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
)

// rating bands shown next to each answer
const (
	BandGood = "good"
	BandFair = "fair"
	BandPoor = "poor"
)

// OverallRating is the mean rating formatted with one decimal, "0.0" when
// there are no answers.
func OverallRating(answers []models.UserAnswer) string {
	if len(answers) == 0 {
		return "0.0"
	}
	var total float64
	for _, a := range answers {
		total += a.Rating
	}
	return fmt.Sprintf("%.1f", total/float64(len(answers)))
}

func Band(rating float64) string {
	switch {
	case rating > 7:
		return BandGood
	case rating >= 4:
		return BandFair
	default:
		return BandPoor
	}
}

type AnswerView struct {
	models.UserAnswer
	Band string `json:"band"`
}

// Summary is the feedback page for one interview.
type Summary struct {
	Interview     models.InterviewView `json:"interview"`
	Answers       []AnswerView         `json:"answers"`
	OverallRating string               `json:"overallRating"`
	Count         int                  `json:"count"`
}

func NewSummary(interview *models.Interview, answers []models.UserAnswer) Summary {
	views := make([]AnswerView, 0, len(answers))
	for _, a := range answers {
		views = append(views, AnswerView{UserAnswer: a, Band: Band(a.Rating)})
	}
	return Summary{
		Interview:     models.NewInterviewView(interview),
		Answers:       views,
		OverallRating: OverallRating(answers),
		Count:         len(answers),
	}
}
