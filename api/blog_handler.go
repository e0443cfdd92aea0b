package api

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inkpress/blog-backend/database"
	"github.com/inkpress/blog-backend/errs"
	"github.com/inkpress/blog-backend/models"
)

const (
	maxTitleLength   = 200
	minContentLength = 10
	defaultPageLimit = 10
)

type blogHandler struct {
	responder Responder
	logger    zerolog.Logger
	blogRepo  *database.BlogRepo
}

func newBlogHandler(blogRepo *database.BlogRepo) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder: NewResponder(logger),
		logger:    logger,
		blogRepo:  blogRepo,
	}
}

// blogInput is the request body for create, update and autosave. Tags
// distinguishes absent (nil, keep stored value) from present-but-empty
// (clear), which is why it is not normalized at decode time.
type blogInput struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Status  string   `json:"status"`
}

// blogListResponse is the paginated public listing payload.
type blogListResponse struct {
	Blogs       []*models.Blog `json:"blogs"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Total       int64          `json:"total"`
}

// autosaveResponse wraps the saved post with a success flag.
type autosaveResponse struct {
	Success bool         `json:"success"`
	Blog    *models.Blog `json:"blog"`
}

// decodeBlogInput reads the body into a blogInput. An empty body decodes to
// the zero input: autosave accepts payloads with every field omitted.
func decodeBlogInput(r *http.Request) (blogInput, error) {
	var input blogInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		return blogInput{}, errs.NewBadRequestError("malformed request body")
	}
	return input, nil
}

// validateCreate enforces the full entity constraints on a create payload.
func validateCreate(input blogInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return errs.NewMissingRequiredFieldError("title")
	}
	// limits are in characters, not bytes
	if utf8.RuneCountInString(title) > maxTitleLength {
		return errs.NewInvalidFieldError("title", "must be 1-200 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.Content)) < minContentLength {
		return errs.NewInvalidFieldError("content", "must be at least 10 characters")
	}
	if input.Status != "" && !models.Status(input.Status).Valid() {
		return errs.NewInvalidFieldError("status", "must be draft or published")
	}
	return nil
}

// validateUpdate checks only the fields the caller actually supplied; empty
// fields fall through to the stored values.
func validateUpdate(input blogInput) error {
	if input.Title != "" {
		title := strings.TrimSpace(input.Title)
		if title == "" {
			return errs.NewInvalidFieldError("title", "must not be blank")
		}
		if utf8.RuneCountInString(title) > maxTitleLength {
			return errs.NewInvalidFieldError("title", "must be 1-200 characters")
		}
	}
	if input.Content != "" && utf8.RuneCountInString(strings.TrimSpace(input.Content)) < minContentLength {
		return errs.NewInvalidFieldError("content", "must be at least 10 characters")
	}
	if input.Status != "" && !models.Status(input.Status).Valid() {
		return errs.NewInvalidFieldError("status", "must be draft or published")
	}
	return nil
}

// applyPartial copies the supplied fields onto the post, leaving empty ones
// untouched. An omitted tags field keeps the stored tags; an explicit empty
// array clears them.
func applyPartial(blog *models.Blog, input blogInput) {
	if input.Title != "" {
		blog.SetTitle(input.Title)
	}
	if input.Content != "" {
		blog.Content = strings.TrimSpace(input.Content)
	}
	if input.Tags != nil {
		blog.Tags = models.NormalizeTags(input.Tags)
	}
	if input.Status != "" {
		blog.Status = models.Status(input.Status)
	}
}

// storeError passes expected errors (duplicate slug) through and wraps the
// rest as generic store failures.
func storeError(operation string, err error) error {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return err
	}
	return errs.NewDatabaseError(operation, "blog", err)
}

// queryInt parses an integer query parameter, falling back on absence or
// garbage.
func queryInt(q url.Values, key string, defaultValue int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// listBlogs is the public paginated listing: status equality (defaulting to
// published when the parameter is absent), any-of tag membership, author
// equality, newest first.
func (h blogHandler) listBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		page := queryInt(q, "page", 1)
		if page < 1 {
			page = 1
		}
		limit := queryInt(q, "limit", defaultPageLimit)
		if limit < 1 {
			limit = defaultPageLimit
		}

		// The default applies only when the key is absent; an explicitly
		// empty status disables the status filter entirely.
		status := string(models.StatusPublished)
		if _, ok := q["status"]; ok {
			status = q.Get("status")
		}

		var tags []string
		if raw := q.Get("tags"); raw != "" {
			tags = strings.Split(raw, ",")
		}

		filter := database.BlogFilter{
			Status: status,
			Tags:   tags,
			Author: q.Get("author"),
		}

		blogs, total, err := h.blogRepo.FindPage(filter, page, limit)
		if err != nil {
			h.responder.WriteError(w, storeError("list", err))
			return
		}
		if blogs == nil {
			blogs = []*models.Blog{}
		}

		h.responder.WriteJSON(w, blogListResponse{
			Blogs:       blogs,
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			CurrentPage: page,
			Total:       total,
		})
	}
}

// getBlog is the public single-post read. A malformed id denotes a post that
// cannot exist, so it answers 404 like an unknown one.
func (h blogHandler) getBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := uuid.Parse(chi.URLParam(r, "blogID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewNotFoundError("blog not found"))
			return
		}

		blog, err := h.blogRepo.FindByID(blogID)
		if err != nil {
			h.responder.WriteError(w, storeError("find", err))
			return
		}
		if blog == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("blog not found"))
			return
		}

		h.responder.WriteJSON(w, blog)
	}
}

// createBlog creates a post owned by the caller. The author always comes
// from the verified identity, never from the payload.
func (h blogHandler) createBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromCtx(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		input, err := decodeBlogInput(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateCreate(input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		status := models.Status(input.Status)
		if status == "" {
			status = models.StatusDraft
		}

		blog := models.NewBlog(input.Title, input.Content, input.Tags, status, identity.Name())
		if err := h.blogRepo.Add(blog); err != nil {
			h.responder.WriteError(w, storeError("create", err))
			return
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, blog)
	}
}

// updateBlog applies a partial update to a post the caller owns. The slug
// rule re-applies through the model's save hook.
func (h blogHandler) updateBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromCtx(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		input, err := decodeBlogInput(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateUpdate(input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.loadOwnedBlog(r, identity, "update")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		applyPartial(blog, input)

		if err := h.blogRepo.Update(blog); err != nil {
			h.responder.WriteError(w, storeError("update", err))
			return
		}

		h.responder.WriteJSON(w, blog)
	}
}

// deleteBlog permanently removes a post the caller owns.
func (h blogHandler) deleteBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromCtx(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		blog, err := h.loadOwnedBlog(r, identity, "delete")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.blogRepo.Delete(blog.ID); err != nil {
			h.responder.WriteError(w, storeError("delete", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"message": "blog deleted successfully",
		})
	}
}

// autosaveBlog persists an in-progress edit without full validation. With an
// id it updates title/content/tags of an owned post, leaving status alone;
// without one it creates a fresh draft with placeholder defaults.
func (h blogHandler) autosaveBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromCtx(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		input, err := decodeBlogInput(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var blog *models.Blog
		if input.ID != "" {
			blog, err = h.findOwnedBlog(input.ID, identity, "update")
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}

			applyPartial(blog, blogInput{
				Title:   input.Title,
				Content: input.Content,
				Tags:    input.Tags,
			})

			if err := h.blogRepo.Update(blog); err != nil {
				h.logger.Error().Err(err).Str("blogID", input.ID).Msg("auto-save failed")
				h.responder.WriteError(w, storeError("auto-save", err))
				return
			}
		} else {
			title := input.Title
			if title == "" {
				title = "Untitled Draft"
			}

			blog = models.NewBlog(title, input.Content, input.Tags, models.StatusDraft, identity.Name())
			if err := h.blogRepo.Add(blog); err != nil {
				h.logger.Error().Err(err).Msg("auto-save failed")
				h.responder.WriteError(w, storeError("auto-save", err))
				return
			}
		}

		h.responder.WriteJSON(w, autosaveResponse{Success: true, Blog: blog})
	}
}

// myBlogs lists every post of the caller, drafts included, most recently
// edited first. No pagination.
func (h blogHandler) myBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromCtx(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		blogs, err := h.blogRepo.FindByAuthor(identity.Name(), r.URL.Query().Get("status"))
		if err != nil {
			h.responder.WriteError(w, storeError("list", err))
			return
		}
		if blogs == nil {
			blogs = []*models.Blog{}
		}

		h.responder.WriteJSON(w, blogs)
	}
}

// loadOwnedBlog resolves the {blogID} path parameter to a post owned by the
// caller, or the not-found/forbidden error describing why it could not.
func (h blogHandler) loadOwnedBlog(r *http.Request, identity Identity, action string) (*models.Blog, error) {
	return h.findOwnedBlog(chi.URLParam(r, "blogID"), identity, action)
}

func (h blogHandler) findOwnedBlog(idStr string, identity Identity, action string) (*models.Blog, error) {
	blogID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, errs.NewNotFoundError("blog not found")
	}

	blog, err := h.blogRepo.FindByID(blogID)
	if err != nil {
		return nil, storeError("find", err)
	}
	if blog == nil {
		return nil, errs.NewNotFoundError("blog not found")
	}
	if !blog.OwnedBy(identity.Username, identity.Email) {
		return nil, errs.NewForbiddenError("not authorized to " + action + " this blog")
	}
	return blog, nil
}
