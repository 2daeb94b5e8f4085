package quiz

import "github.com/adminkit/adminkit/pkg/tenantdb"

// Quiz is a tenant-owned assessment definition.
type Quiz struct {
	tenantdb.AuditableEntity

	Title         string `gorm:"size:255;not null" json:"title"`
	Description   string `json:"description"`
	QuestionCount int    `json:"question_count"`
	Published     bool   `gorm:"index" json:"published"`
}

func (Quiz) TableName() string { return "quizzes" }
