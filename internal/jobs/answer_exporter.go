package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/config"
	"github.com/adityavardhansharma/ai-mock-interview/internal/grading"
	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/prompts"
	"github.com/adityavardhansharma/ai-mock-interview/internal/repositories"
)

const (
	exportBatchSize = 500
	stateFile       = "export_state.json"
)

// training example layout accepted by Gemini tuning
type TrainingDataPoint struct {
	Contents []TrainingContent `json:"contents"`
}

type TrainingContent struct {
	Role  string         `json:"role"`
	Parts []TrainingPart `json:"parts"`
}

type TrainingPart struct {
	Text string `json:"text"`
}

// exportState is the cursor of the last exported answer.
type exportState struct {
	LastExported time.Time `json:"lastExported"`
	LastID       string    `json:"lastId,omitempty"`
}

// AnswerExporterJob periodically writes highly rated answers as grading
// examples. Answers are picked up once per update, tracked by a watermark
// kept next to the export files.
type AnswerExporterJob struct {
	answers       repositories.AnswerRepository
	promptManager prompts.PromptProvider
	config        config.ExportConfig
	logger        *zap.Logger
	cron          *cron.Cron

	mu  sync.Mutex
	now func() time.Time
}

func NewAnswerExporterJob(answers repositories.AnswerRepository, promptManager prompts.PromptProvider, cfg config.ExportConfig, logger *zap.Logger) *AnswerExporterJob {
	return &AnswerExporterJob{
		answers:       answers,
		promptManager: promptManager,
		config:        cfg,
		logger:        logger,
		cron:          cron.New(),
		now:           time.Now,
	}
}

func (j *AnswerExporterJob) Start() error {
	if !j.config.Enabled {
		j.logger.Info("Answer export is disabled, skipping scheduler")
		return nil
	}

	_, err := j.cron.AddFunc(j.config.Schedule, func() {
		if _, err := j.RunExport(context.Background()); err != nil {
			j.logger.Error("Answer export failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	j.cron.Start()
	j.logger.Info("Answer exporter started", zap.String("schedule", j.config.Schedule))
	return nil
}

// Stop waits for a running export to finish.
func (j *AnswerExporterJob) Stop() {
	<-j.cron.Stop().Done()
}

// RunExport exports answers updated since the previous run and returns the
// file written, or "" when nothing qualified.
func (j *AnswerExporterJob) RunExport(ctx context.Context) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.loadState()
	if err != nil {
		return "", err
	}

	var (
		lines    []byte
		exported int
		scanned  int
		cursor   = state
	)
	for {
		batch, err := j.answers.ListUpdatedSince(ctx, cursor.LastExported, cursor.LastID, exportBatchSize)
		if err != nil {
			return "", fmt.Errorf("failed to list answers: %w", err)
		}
		for _, answer := range batch {
			scanned++
			// batches arrive in cursor order
			cursor = exportState{LastExported: answer.UpdatedAt, LastID: answer.ID}
			if answer.Rating < j.config.MinRating {
				continue
			}
			line, err := j.trainingLine(answer)
			if err != nil {
				return "", err
			}
			lines = append(lines, line...)
			lines = append(lines, '\n')
			exported++
		}
		if len(batch) < exportBatchSize {
			break
		}
	}

	if scanned == 0 {
		j.logger.Info("No new graded answers to export")
		return "", nil
	}

	var path string
	if exported > 0 {
		if err := os.MkdirAll(j.config.Dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create export directory: %w", err)
		}
		filename := fmt.Sprintf("graded_answers_%s.jsonl", j.now().Format("20060102_150405"))
		path = filepath.Join(j.config.Dir, filename)
		if err := os.WriteFile(path, lines, 0644); err != nil {
			return "", fmt.Errorf("failed to write export file: %w", err)
		}
	}

	if err := j.saveState(cursor); err != nil {
		return "", err
	}

	j.logger.Info("Graded answers exported",
		zap.Int("scanned", scanned),
		zap.Int("exported", exported),
		zap.String("file", path))
	return path, nil
}

func (j *AnswerExporterJob) trainingLine(answer models.UserAnswer) ([]byte, error) {
	prompt, err := j.promptManager.BuildPrompt(prompts.ModeGrade, prompts.DefaultVariant, prompts.GradeData{
		Question:        answer.Question,
		ReferenceAnswer: answer.ReferenceAnswer,
		UserAnswer:      answer.UserAnswerText,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt for answer %s: %w", answer.ID, err)
	}
	response, err := json.Marshal(grading.Grade{Rating: answer.Rating, Feedback: answer.Feedback})
	if err != nil {
		return nil, err
	}

	return json.Marshal(TrainingDataPoint{
		Contents: []TrainingContent{
			{Role: "user", Parts: []TrainingPart{{Text: prompt}}},
			{Role: "model", Parts: []TrainingPart{{Text: string(response)}}},
		},
	})
}

func (j *AnswerExporterJob) loadState() (exportState, error) {
	var state exportState
	data, err := os.ReadFile(filepath.Join(j.config.Dir, stateFile))
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("failed to read export state: %w", err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("failed to decode export state: %w", err)
	}
	return state, nil
}

func (j *AnswerExporterJob) saveState(state exportState) error {
	if err := os.MkdirAll(j.config.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(j.config.Dir, stateFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write export state: %w", err)
	}
	return nil
}
