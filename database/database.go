package database

import (
	"gorm.io/gorm"
)

// Database aggregates the repositories over one shared GORM connection. It is
// constructed once at startup and injected into the API layer.
type Database struct {
	blogRepo *BlogRepo
}

func New(db *gorm.DB) Database {
	return Database{
		blogRepo: NewBlogRepo(db),
	}
}

func (d Database) BlogRepo() *BlogRepo {
	return d.blogRepo
}
