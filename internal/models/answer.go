package models

import "time"

// UserAnswer is one graded response to one interview question.
// (OwnerID, InterviewID, Question) identifies a record.
type UserAnswer struct {
	ID              string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	OwnerID         string    `json:"userId" bson:"userId" gorm:"uniqueIndex:idx_user_answer_key;size:191;not null"`
	InterviewID     string    `json:"interviewId" bson:"mockIdRef" gorm:"uniqueIndex:idx_user_answer_key;size:36;not null"`
	Question        string    `json:"question" bson:"question" gorm:"uniqueIndex:idx_user_answer_key;not null"`
	ReferenceAnswer string    `json:"referenceAnswer" bson:"correct_ans" gorm:"type:text"`
	UserAnswerText  string    `json:"userAnswer" bson:"user_ans" gorm:"type:text"`
	Rating          float64   `json:"rating" bson:"rating"`
	Feedback        string    `json:"feedback" bson:"feedback" gorm:"type:text"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt" gorm:"index"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt" gorm:"index"`
}
