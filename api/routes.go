package api

import (
	"github.com/go-chi/chi/v5"
)

// setupBlogRoutes mounts the blog API. Listing and single-post reads are
// public (identity attached when a token happens to be present); everything
// that writes, plus the caller's own listing, requires authentication.
func setupBlogRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware) {
	r.Route("/blogs", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.optional)

			r.Get("/", handlers.blogHandler.listBlogs())
			r.Get("/{blogID}", handlers.blogHandler.getBlog())
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.authenticate)

			r.Get("/user/me", handlers.blogHandler.myBlogs())
			r.Post("/", handlers.blogHandler.createBlog())
			r.Put("/{blogID}", handlers.blogHandler.updateBlog())
			r.Delete("/{blogID}", handlers.blogHandler.deleteBlog())
			r.Post("/autosave", handlers.blogHandler.autosaveBlog())
		})
	})
}
