package gormstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
)

type AnswerRepository struct {
	DB *gorm.DB
}

// Upsert relies on the idx_user_answer_key unique index so that concurrent
// submissions for one question collapse into a single row.
func (r *AnswerRepository) Upsert(ctx context.Context, answer *models.UserAnswer) (*models.UserAnswer, error) {
	row := *answer
	if row.ID == "" {
		row.ID = uuid.New().String()
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "interview_id"}, {Name: "question"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"reference_answer", "user_answer_text", "rating", "feedback", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var stored models.UserAnswer
	err = r.DB.WithContext(ctx).
		Where("owner_id = ? AND interview_id = ? AND question = ?", answer.OwnerID, answer.InterviewID, answer.Question).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *AnswerRepository) ListByInterview(ctx context.Context, ownerID, interviewID string) ([]models.UserAnswer, error) {
	answers := []models.UserAnswer{}
	err := r.DB.WithContext(ctx).
		Where("owner_id = ? AND interview_id = ?", ownerID, interviewID).
		Order("created_at ASC").
		Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) ListUpdatedSince(ctx context.Context, since time.Time, afterID string, limit int) ([]models.UserAnswer, error) {
	answers := []models.UserAnswer{}
	since = since.UTC()
	query := r.DB.WithContext(ctx).
		Where("updated_at > ? OR (updated_at = ? AND id > ?)", since, since, afterID).
		Order("updated_at ASC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) DeleteByInterview(ctx context.Context, ownerID, interviewID string) error {
	return r.DB.WithContext(ctx).
		Where("owner_id = ? AND interview_id = ?", ownerID, interviewID).
		Delete(&models.UserAnswer{}).Error
}
