package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// QuestionAnswer is one generated question with its reference answer.
type QuestionAnswer struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// Interview is a user-authored practice definition plus its generated questions.
// The same struct is persisted by the mongo and gorm stores.
type Interview struct {
	ID              string                              `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	OwnerID         string                              `json:"userId" bson:"userId" gorm:"index;not null"`
	Position        string                              `json:"position" bson:"position" gorm:"not null"`
	Description     string                              `json:"description" bson:"description" gorm:"type:text"`
	ExperienceYears int                                 `json:"experience" bson:"experience"`
	TechStack       string                              `json:"techStack" bson:"techStack"`
	Questions       datatypes.JSONSlice[QuestionAnswer] `json:"questions" bson:"questions"`
	CreatedAt       time.Time                           `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time                           `json:"updatedAt" bson:"updatedAt"`
}

// TechStackBadges splits the comma separated tech stack into trimmed labels.
func (i *Interview) TechStackBadges() []string {
	return SplitTechStack(i.TechStack)
}

func SplitTechStack(raw string) []string {
	badges := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			badges = append(badges, part)
		}
	}
	return badges
}

// QuestionAt returns the question at index, or false when out of range.
func (i *Interview) QuestionAt(index int) (QuestionAnswer, bool) {
	if index < 0 || index >= len(i.Questions) {
		return QuestionAnswer{}, false
	}
	return i.Questions[index], true
}

// InterviewView is the API shape of an interview, with derived badges.
type InterviewView struct {
	*Interview
	TechStackBadges []string `json:"techStackBadges"`
}

func NewInterviewView(interview *Interview) InterviewView {
	return InterviewView{Interview: interview, TechStackBadges: interview.TechStackBadges()}
}
