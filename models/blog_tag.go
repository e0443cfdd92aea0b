package models

import "github.com/google/uuid"

// BlogTag is an index row for tag-membership queries. The ordered tag list
// itself lives on the Blog document; these rows are rebuilt by the repository
// on every save and exist only so listing by tag stays an indexed lookup.
type BlogTag struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	BlogID   uuid.UUID `json:"blog_id" gorm:"type:uuid;not null;index:idx_blog_tags_blog_id"`
	Value    string    `json:"value" gorm:"type:text;not null;index:idx_blog_tags_value"`
	Position int       `json:"position" gorm:"not null;default:0"`
}
