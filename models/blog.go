package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status is a blog post's lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Blog represents a single blog post.
//
// Title mutation must go through SetTitle: the slug is only derived when the
// title changed in the save that published the post, so the model tracks
// title dirtiness across a load-modify-save cycle.
type Blog struct {
	ID        uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Title     string                      `json:"title" gorm:"type:text;not null"`
	Content   string                      `json:"content" gorm:"type:text;not null"`
	Tags      datatypes.JSONSlice[string] `json:"tags" gorm:"not null"`
	Status    Status                      `json:"status" gorm:"type:text;not null;default:draft;index:idx_blogs_status_created,priority:1"`
	Author    string                      `json:"author" gorm:"type:text;not null;index:idx_blogs_author_status,priority:1"`
	Slug      *string                     `json:"slug,omitempty" gorm:"type:text;uniqueIndex"`
	CreatedAt time.Time                   `json:"created_at" gorm:"not null;index:idx_blogs_status_created,priority:2,sort:desc"`
	UpdatedAt time.Time                   `json:"updated_at" gorm:"not null"`

	titleDirty bool
}

// NewBlog builds an unsaved post. The author is the caller's identity and is
// never changed by later saves.
func NewBlog(title, content string, tags []string, status Status, author string) *Blog {
	b := &Blog{
		ID:      uuid.New(),
		Content: strings.TrimSpace(content),
		Tags:    NormalizeTags(tags),
		Status:  status,
		Author:  author,
	}
	if b.Status == "" {
		b.Status = StatusDraft
	}
	b.SetTitle(title)
	return b
}

// SetTitle trims the title and records whether it actually changed. Slug
// derivation in BeforeSave keys off that record.
func (b *Blog) SetTitle(title string) {
	title = strings.TrimSpace(title)
	if title == b.Title {
		return
	}
	b.Title = title
	b.titleDirty = true
}

// OwnedBy reports whether the post belongs to the caller. The author field
// holds either a username or an email, so both are compared.
func (b *Blog) OwnedBy(username, email string) bool {
	return b.Author == username || b.Author == email
}

// BeforeSave applies the timestamp rule and the slug rule. Keeping both here
// means every save path (create, update, autosave) gets identical behavior.
func (b *Blog) BeforeSave(tx *gorm.DB) error {
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	if b.titleDirty && b.Status == StatusPublished {
		slug := fmt.Sprintf("%s-%d", Slugify(b.Title), now.UnixMilli())
		b.Slug = &slug
	}
	b.titleDirty = false
	return nil
}

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the title, collapses every run of characters outside
// [a-z0-9] to a single hyphen and strips hyphens at the ends. The caller
// appends a millisecond timestamp to make the result unique.
func Slugify(title string) string {
	s := nonSlugRun.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// NormalizeTags trims and lowercases each tag, preserving order.
func NormalizeTags(tags []string) datatypes.JSONSlice[string] {
	normalized := make([]string, len(tags))
	for i, tag := range tags {
		normalized[i] = strings.ToLower(strings.TrimSpace(tag))
	}
	return datatypes.NewJSONSlice(normalized)
}
