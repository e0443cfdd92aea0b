package api

import (
	"github.com/inkpress/blog-backend/database"
)

// initializeHandlers creates all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database) *routeHandlers {
	return &routeHandlers{
		blogHandler: newBlogHandler(db.BlogRepo()),
	}
}
