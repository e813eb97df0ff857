package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/adityavardhansharma/ai-mock-interview/internal/repositories"
)

const (
	InterviewsCollection = "interviews"
	AnswersCollection    = "userAnswers"
)

type Client struct {
	raw      *mongo.Client
	database string
}

func NewClient(ctx context.Context, uri, database string) (*Client, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx, readpref.Primary()); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, err
	}
	return &Client{raw: c, database: database}, nil
}

func (c *Client) DB() (*mongo.Database, error) {
	if c == nil || c.raw == nil {
		return nil, errors.New("mongo client not initialized")
	}
	return c.raw.Database(c.database), nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.raw.Ping(ctx, readpref.Primary())
}

func (c *Client) Disconnect(ctx context.Context) error {
	return c.raw.Disconnect(ctx)
}

// NewStore wires both repositories and ensures their indexes.
func NewStore(ctx context.Context, c *Client) (*repositories.Store, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}

	interviews := NewInterviewRepository(db.Collection(InterviewsCollection))
	answers := NewAnswerRepository(db.Collection(AnswersCollection))

	if err := interviews.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := answers.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return &repositories.Store{
		Interviews: interviews,
		Answers:    answers,
		Pinger:     c,
		Close:      c.Disconnect,
	}, nil
}
