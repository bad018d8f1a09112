package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"timed-quiz-service/internal/domain"
)

// QuestionLoader reads the question bank from a JSON array or YAML sequence on disk.
// The file is read on every call, so edits are picked up without a restart.
type QuestionLoader struct {
	path string
}

func NewQuestionLoader(path string) *QuestionLoader {
	return &QuestionLoader{path: path}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrQuestionLoad, l.path, err)
	}
	questions, err := Decode(l.path, data)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Decode parses question records, choosing the format from the file extension.
func Decode(path string, data []byte) ([]domain.Question, error) {
	var questions []domain.Question
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &questions); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrQuestionLoad, path, err)
		}
	default:
		if err := json.Unmarshal(data, &questions); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrQuestionLoad, path, err)
		}
	}
	return questions, nil
}
