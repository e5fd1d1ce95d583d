package content

import (
	"strings"
	"time"

	"threadcraft-api/internal/domain/users"
)

type ContentType string

const (
	Twitter   ContentType = "twitter"
	Instagram ContentType = "instagram"
	LinkedIn  ContentType = "linkedin"
)

// ParseContentType accepts the lower-case names used by the API.
func ParseContentType(s string) (ContentType, bool) {
	switch ct := ContentType(strings.ToLower(strings.TrimSpace(s))); ct {
	case Twitter, Instagram, LinkedIn:
		return ct, true
	}
	return "", false
}

// GeneratedContent is append-only: rows are inserted once and never updated.
type GeneratedContent struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;index:idx_generated_content_user_created,priority:1" json:"user_id"`
	User        *users.User `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Content     string      `gorm:"type:text;not null" json:"content"`
	Prompt      string      `gorm:"type:text;not null" json:"prompt"`
	ContentType ContentType `gorm:"type:varchar(50);not null" json:"content_type"`
	CreatedAt   time.Time   `gorm:"index:idx_generated_content_user_created,priority:2" json:"created_at"`
}

func (GeneratedContent) TableName() string { return "generated_content" }
