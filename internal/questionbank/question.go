// Package questionbank loads the open-ended questions attached to each
// recommended major and assembles a short quiz from them.
package questionbank

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Category groups questions for quiz assembly.
type Category string

// Quiz categories in presentation order.
const (
	CategoryInterests  Category = "interests"
	CategorySkills     Category = "skills"
	CategoryExperience Category = "experience"
	CategoryGeneral    Category = "general"
)

// QuizCategories are the categories a quiz draws one question from.
var QuizCategories = []Category{CategoryInterests, CategorySkills, CategoryExperience}

// QuestionID accepts both string and numeric ids.
type QuestionID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *QuestionID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = QuestionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = QuestionID(n.String())
	return nil
}

// Question is one open-ended prompt.
type Question struct {
	ID        QuestionID `json:"id,omitempty"`
	Category  Category   `json:"category,omitempty"`
	Criterion string     `json:"criterion"`
	Question  string     `json:"question"`
	MajorName string     `json:"majorName,omitempty"`
}

// Categorize derives the quiz category from a free-text criterion.
func Categorize(criterion string) Category {
	c := strings.ToLower(criterion)
	switch {
	case strings.Contains(c, "interest"):
		return CategoryInterests
	case strings.Contains(c, "skill"):
		return CategorySkills
	case strings.Contains(c, "experience"), strings.Contains(c, "background"):
		return CategoryExperience
	}
	return CategoryGeneral
}

// withDefaults fills a missing id and category.
func (q Question) withDefaults(major string, index int) Question {
	if q.ID == "" {
		q.ID = QuestionID(major + "#" + strconv.Itoa(index))
	}
	if q.Category == "" {
		q.Category = Categorize(q.Criterion)
	}
	q.MajorName = major
	return q
}
