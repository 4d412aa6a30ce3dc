package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/assessor/internal/knowledge"
)

// Bank is a question bank as authored in YAML.
type Bank struct {
	OrganizationID string      `yaml:"organization_id"`
	Topics         []BankTopic `yaml:"topics"`
}

// BankTopic is a topic and its questions.
type BankTopic struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Category    string         `yaml:"category"`
	Difficulty  int            `yaml:"difficulty"`
	Inactive    bool           `yaml:"inactive"`
	Questions   []BankQuestion `yaml:"questions"`
}

// BankQuestion is a single authored question.
type BankQuestion struct {
	ID          string   `yaml:"id"`
	Text        string   `yaml:"text"`
	Type        string   `yaml:"type"`
	Answer      string   `yaml:"answer"`
	Options     []string `yaml:"options"`
	Difficulty  int      `yaml:"difficulty"`
	Points      int      `yaml:"points"`
	Explanation string   `yaml:"explanation"`
	Inactive    bool     `yaml:"inactive"`
}

// ParseBank decodes and validates a YAML question bank.
func ParseBank(r io.Reader) (*Bank, error) {
	var b Bank
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks ids, categories, types and difficulty bounds.
func (b *Bank) Validate() error {
	if b.OrganizationID == "" {
		return fmt.Errorf("bank: organization_id is required")
	}
	seen := make(map[string]bool)
	for i, t := range b.Topics {
		if t.ID == "" || t.Name == "" {
			return fmt.Errorf("bank: topic %d: id and name are required", i)
		}
		if t.Category != "" && !knowledge.Category(t.Category).Valid() {
			return fmt.Errorf("bank: topic %s: unknown category %q", t.ID, t.Category)
		}
		if err := checkDifficulty(t.Difficulty); err != nil {
			return fmt.Errorf("bank: topic %s: %w", t.ID, err)
		}
		for j, q := range t.Questions {
			if q.ID == "" || q.Text == "" {
				return fmt.Errorf("bank: topic %s question %d: id and text are required", t.ID, j)
			}
			if seen[q.ID] {
				return fmt.Errorf("bank: duplicate question id %s", q.ID)
			}
			seen[q.ID] = true
			switch knowledge.QuestionType(q.Type) {
			case knowledge.TypeMultipleChoice:
				if len(q.Options) == 0 {
					return fmt.Errorf("bank: question %s: multiple choice needs options", q.ID)
				}
				if !hasOption(q.Options, q.Answer) {
					return fmt.Errorf("bank: question %s: answer %q is not one of its options", q.ID, q.Answer)
				}
			case knowledge.TypeOpenEnded, knowledge.TypeTrueFalse:
			default:
				return fmt.Errorf("bank: question %s: unknown type %q", q.ID, q.Type)
			}
			if err := checkDifficulty(q.Difficulty); err != nil {
				return fmt.Errorf("bank: question %s: %w", q.ID, err)
			}
		}
	}
	return nil
}

func hasOption(options []string, answer string) bool {
	want := strings.ToLower(strings.TrimSpace(answer))
	for _, o := range options {
		if strings.ToLower(strings.TrimSpace(o)) == want {
			return true
		}
	}
	return false
}

func checkDifficulty(d int) error {
	if d != 0 && (d < knowledge.MinDifficulty || d > knowledge.MaxDifficulty) {
		return fmt.Errorf("difficulty %d out of range [%d, %d]", d, knowledge.MinDifficulty, knowledge.MaxDifficulty)
	}
	return nil
}

// SeedResult counts what a seed wrote.
type SeedResult struct {
	Topics    int
	Questions int
}

// Seed upserts every topic and question in the bank.
func (s *Store) Seed(ctx context.Context, b *Bank) (SeedResult, error) {
	var res SeedResult
	for _, bt := range b.Topics {
		topic := knowledge.Topic{
			ID:              bt.ID,
			OrganizationID:  b.OrganizationID,
			Name:            bt.Name,
			Description:     bt.Description,
			Category:        knowledge.Category(bt.Category),
			DifficultyLevel: orDefault(bt.Difficulty, knowledge.MinDifficulty),
			IsActive:        !bt.Inactive,
		}
		if err := s.UpsertTopic(ctx, topic); err != nil {
			return res, err
		}
		res.Topics++

		for _, bq := range bt.Questions {
			q := knowledge.Question{
				ID:               bq.ID,
				TopicID:          bt.ID,
				QuestionTemplate: bq.Text,
				QuestionType:     knowledge.QuestionType(bq.Type),
				CorrectAnswer:    bq.Answer,
				AnswerOptions:    bq.Options,
				DifficultyLevel:  orDefault(bq.Difficulty, topic.DifficultyLevel),
				Points:           orDefault(bq.Points, knowledge.DefaultPoints),
				Explanation:      bq.Explanation,
				IsActive:         !bq.Inactive,
			}
			if err := s.UpsertQuestion(ctx, q); err != nil {
				return res, err
			}
			res.Questions++
		}
	}
	return res, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
