package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/inkpress/blog-backend/errs"
	"github.com/inkpress/blog-backend/models"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect database")
	}
	// one connection so the in-memory database is shared
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	db.AutoMigrate(&models.Blog{}, &models.BlogTag{})
	return db
}

func createTestBlog(t *testing.T, repo *BlogRepo, title, author string, status models.Status, tags []string) *models.Blog {
	t.Helper()
	blog := models.NewBlog(title, "content that is long enough", tags, status, author)
	assert.NoError(t, repo.Add(blog))
	return blog
}

func TestFindPagePagination(t *testing.T) {
	repo := NewBlogRepo(setupTestDB())

	for i := 0; i < 12; i++ {
		createTestBlog(t, repo, "Post", "alice", models.StatusPublished, nil)
	}

	blogs, total, err := repo.FindPage(BlogFilter{Status: "published"}, 1, 5)
	assert.NoError(t, err)
	assert.Len(t, blogs, 5)
	assert.EqualValues(t, 12, total)

	blogs, total, err = repo.FindPage(BlogFilter{Status: "published"}, 3, 5)
	assert.NoError(t, err)
	assert.Len(t, blogs, 2)
	assert.EqualValues(t, 12, total)
}

func TestFindPageStatusFilter(t *testing.T) {
	repo := NewBlogRepo(setupTestDB())

	createTestBlog(t, repo, "Draft Post", "alice", models.StatusDraft, nil)
	published := createTestBlog(t, repo, "Public Post", "alice", models.StatusPublished, nil)

	blogs, total, err := repo.FindPage(BlogFilter{Status: "published"}, 1, 10)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, published.ID, blogs[0].ID)

	// no status filter at all returns everything
	_, total, err = repo.FindPage(BlogFilter{}, 1, 10)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestFindPageAuthorFilter(t *testing.T) {
	repo := NewBlogRepo(setupTestDB())

	createTestBlog(t, repo, "Alice Post", "alice", models.StatusPublished, nil)
	createTestBlog(t, repo, "Bob Post", "bob", models.StatusPublished, nil)

	blogs, total, err := repo.FindPage(BlogFilter{Author: "bob"}, 1, 10)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "bob", blogs[0].Author)
}

func TestFindPageTagMembership(t *testing.T) {
	repo := NewBlogRepo(setupTestDB())

	withA := createTestBlog(t, repo, "Post A", "alice", models.StatusPublished, []string{"a", "x"})
	withB := createTestBlog(t, repo, "Post B", "alice", models.StatusPublished, []string{"b"})
	createTestBlog(t, repo, "Post C", "alice", models.StatusPublished, []string{"c"})

	blogs, total, err := repo.FindPage(BlogFilter{Tags: []string{"a", "b"}}, 1, 10)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, total)

	ids := []any{blogs[0].ID, blogs[1].ID}
	assert.Contains(t, ids, withA.ID)
	assert.Contains(t, ids, withB.ID)
}

func TestFindPageOrdersNewestFirst(t *testing.T) {
	db := setupTestDB()
	repo := NewBlogRepo(db)

	older := models.NewBlog("Older", "content that is long enough", nil, models.StatusPublished, "alice")
	older.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	assert.NoError(t, repo.Add(older))

	newer := models.NewBlog("Newer", "content that is long enough", nil, models.StatusPublished, "alice")
	newer.CreatedAt = time.Now().UTC().Add(-1 * time.Hour)
	assert.NoError(t, repo.Add(newer))

	blogs, _, err := repo.FindPage(BlogFilter{}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, newer.ID, blogs[0].ID)
	assert.Equal(t, older.ID, blogs[1].ID)
}

func TestFindByAuthorOrdersByLastEdit(t *testing.T) {
	repo := NewBlogRepo(setupTestDB())

	first := createTestBlog(t, repo, "First", "alice", models.StatusDraft, nil)
	createTestBlog(t, repo, "Second", "alice", models.StatusPublished, nil)
	createTestBlog(t, repo, "Other", "bob", models.StatusPublished, nil)

	time.Sleep(10 * time.Millisecond)
	first.Content = "edited content, long enough"
	assert.NoError(t, repo.Update(first))

	blogs, err := repo.FindByAuthor("alice", "")
	assert.NoError(t, err)
	assert.Len(t, blogs, 2)
	assert.Equal(t, first.ID, blogs[0].ID, "most recently edited post comes first")

	drafts, err := repo.FindByAuthor("alice", "draft")
	assert.NoError(t, err)
	assert.Len(t, drafts, 1)
	assert.Equal(t, first.ID, drafts[0].ID)
}

func TestFindByIDMissing(t *testing.T) {
	repo := NewBlogRepo(setupTestDB())

	blog, err := repo.FindByID(uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, blog)
}

func TestUpdateRewritesTagIndex(t *testing.T) {
	db := setupTestDB()
	repo := NewBlogRepo(db)

	blog := createTestBlog(t, repo, "Tagged", "alice", models.StatusDraft, []string{"go", "web"})

	var count int64
	db.Model(&models.BlogTag{}).Where("blog_id = ?", blog.ID).Count(&count)
	assert.EqualValues(t, 2, count)

	blog.Tags = models.NormalizeTags([]string{"testing"})
	assert.NoError(t, repo.Update(blog))

	var rows []models.BlogTag
	db.Where("blog_id = ?", blog.ID).Find(&rows)
	assert.Len(t, rows, 1)
	assert.Equal(t, "testing", rows[0].Value)
}

func TestDeleteRemovesBlogAndTagIndex(t *testing.T) {
	db := setupTestDB()
	repo := NewBlogRepo(db)

	blog := createTestBlog(t, repo, "Doomed", "alice", models.StatusDraft, []string{"gone"})

	assert.NoError(t, repo.Delete(blog.ID))

	found, err := repo.FindByID(blog.ID)
	assert.NoError(t, err)
	assert.Nil(t, found)

	var count int64
	db.Model(&models.BlogTag{}).Where("blog_id = ?", blog.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestDuplicateSlugSurfacesAsConflict(t *testing.T) {
	repo := NewBlogRepo(setupTestDB())

	published := createTestBlog(t, repo, "Unique Title", "alice", models.StatusPublished, nil)
	other := createTestBlog(t, repo, "Another Title", "alice", models.StatusDraft, nil)

	// force the collision the timestamp suffix normally rules out
	other.Slug = published.Slug
	err := repo.Update(other)

	assert.Error(t, err)
	assert.True(t, errs.IsDuplicateSlug(err))
}
