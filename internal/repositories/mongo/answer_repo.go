package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
)

// AnswerRepository wraps the userAnswers collection
type AnswerRepository struct{ col *mongo.Collection }

func NewAnswerRepository(col *mongo.Collection) *AnswerRepository {
	return &AnswerRepository{col: col}
}

func (r *AnswerRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "mockIdRef", Value: 1}, {Key: "question", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_answer_key"),
		},
		{
			Keys: bson.D{{Key: "updatedAt", Value: 1}, {Key: "_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create answer indexes: %w", err)
	}
	return nil
}

// Upsert is a single findAndModify. Two racing upserts on a fresh key can
// both miss and one then hits the unique index; the retry lands as an update.
func (r *AnswerRepository) Upsert(ctx context.Context, answer *models.UserAnswer) (*models.UserAnswer, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"userId":    answer.OwnerID,
		"mockIdRef": answer.InterviewID,
		"question":  answer.Question,
	}
	update := bson.M{
		"$set": bson.M{
			"correct_ans": answer.ReferenceAnswer,
			"user_ans":    answer.UserAnswerText,
			"rating":      answer.Rating,
			"feedback":    answer.Feedback,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.New().String(),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.UserAnswer
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *AnswerRepository) ListByInterview(ctx context.Context, ownerID, interviewID string) ([]models.UserAnswer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.find(ctx, bson.M{"userId": ownerID, "mockIdRef": interviewID}, opts)
}

func (r *AnswerRepository) ListUpdatedSince(ctx context.Context, since time.Time, afterID string, limit int) ([]models.UserAnswer, error) {
	since = since.UTC()
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, cursorFilter(since, afterID), opts)
}

// updatedAt is stored at millisecond precision, so ties are common and the
// id breaks them.
func cursorFilter(since time.Time, afterID string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"updatedAt": bson.M{"$gt": since}},
		bson.M{"updatedAt": since, "_id": bson.M{"$gt": afterID}},
	}}
}

func (r *AnswerRepository) DeleteByInterview(ctx context.Context, ownerID, interviewID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"userId": ownerID, "mockIdRef": interviewID})
	return err
}

func (r *AnswerRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.UserAnswer, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.UserAnswer{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
