package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkpress/blog-backend/errs"
	"github.com/inkpress/blog-backend/models"
)

type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db}
}

// BlogFilter narrows a listing query. Zero-valued fields are not applied; a
// post matches the tag filter when ANY requested tag is in its tag list.
type BlogFilter struct {
	Status string
	Tags   []string
	Author string
}

func (r *BlogRepo) filtered(f BlogFilter) *gorm.DB {
	q := r.db.Model(&models.Blog{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Author != "" {
		q = q.Where("author = ?", f.Author)
	}
	if len(f.Tags) > 0 {
		sub := r.db.Model(&models.BlogTag{}).Select("blog_id").Where("value IN ?", f.Tags)
		q = q.Where("id IN (?)", sub)
	}
	return q
}

// FindPage returns one page of matching posts ordered by created_at
// descending, plus the total match count for pagination arithmetic.
func (r *BlogRepo) FindPage(f BlogFilter, page, limit int) ([]*models.Blog, int64, error) {
	var total int64
	if err := r.filtered(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var blogs []*models.Blog
	err := r.filtered(f).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&blogs).Error
	return blogs, total, err
}

// FindByAuthor returns every post for one author, most recently edited first.
// Used by the caller's own listing, which is unpaginated.
func (r *BlogRepo) FindByAuthor(author, status string) ([]*models.Blog, error) {
	q := r.db.Where("author = ?", author)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var blogs []*models.Blog
	err := q.Order("updated_at DESC").Find(&blogs).Error
	return blogs, err
}

// FindByID returns the post or (nil, nil) when no row exists.
func (r *BlogRepo) FindByID(id uuid.UUID) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.First(&blog, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// Add inserts a new post and its tag index rows in one transaction.
func (r *BlogRepo) Add(blog *models.Blog) error {
	return translateSaveError(r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(blog).Error; err != nil {
			return err
		}
		return syncTagIndex(tx, blog)
	}))
}

// Update saves every field of an existing post and rebuilds its tag index
// rows in the same transaction.
func (r *BlogRepo) Update(blog *models.Blog) error {
	return translateSaveError(r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(blog).Error; err != nil {
			return err
		}
		return syncTagIndex(tx, blog)
	}))
}

// Delete permanently removes a post and its tag index rows.
func (r *BlogRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", id).Delete(&models.BlogTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Blog{}, "id = ?", id).Error
	})
}

// syncTagIndex rewrites the tag index rows for a post from its tag list.
func syncTagIndex(tx *gorm.DB, blog *models.Blog) error {
	if err := tx.Where("blog_id = ?", blog.ID).Delete(&models.BlogTag{}).Error; err != nil {
		return err
	}
	if len(blog.Tags) == 0 {
		return nil
	}
	rows := make([]models.BlogTag, 0, len(blog.Tags))
	for i, value := range blog.Tags {
		rows = append(rows, models.BlogTag{
			ID:       uuid.New(),
			BlogID:   blog.ID,
			Value:    value,
			Position: i,
		})
	}
	return tx.Create(&rows).Error
}

// translateSaveError maps a unique-index violation on the slug column to the
// duplicate-slug error; slug is the only unique column on blogs.
func translateSaveError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.NewDuplicateSlugError()
	}
	return err
}
