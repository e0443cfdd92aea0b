package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsMatchThroughApiErr(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("blog not found")))
	assert.True(t, IsForbidden(NewForbiddenError("not authorized to update this blog")))
	assert.True(t, IsBadRequest(NewMissingRequiredFieldError("title")))
	assert.True(t, IsBadRequest(NewInvalidFieldError("status", "must be draft or published")))
	assert.True(t, IsDuplicateSlug(NewDuplicateSlugError()))

	assert.False(t, IsNotFound(NewForbiddenError("nope")))
	assert.False(t, IsDuplicateSlug(NewNotFoundError("blog not found")))
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("saving blog: %w", NewDuplicateSlugError())
	assert.True(t, IsDuplicateSlug(wrapped))
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("x").StatusCode)
	assert.Equal(t, http.StatusForbidden, NewForbiddenError("x").StatusCode)
	assert.Equal(t, http.StatusBadRequest, NewInvalidFieldError("title", "x").StatusCode)
	assert.Equal(t, http.StatusBadRequest, NewDuplicateSlugError().StatusCode)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized.StatusCode)
	assert.Equal(t, http.StatusInternalServerError, NewDatabaseError("create", "blog", errors.New("boom")).StatusCode)
}

func TestValidationErrorsCarryField(t *testing.T) {
	assert.Equal(t, "title", NewMissingRequiredFieldError("title").Field)
	assert.Equal(t, "content", NewInvalidFieldError("content", "must be at least 10 characters").Field)
}

func TestGetFullErrorIncludesCauseChain(t *testing.T) {
	err := NewDatabaseError("update", "blog", errors.New("connection reset"))

	full := err.GetFullError()
	assert.Contains(t, full, "failed to update blog")
	assert.Contains(t, full, "connection reset")
}
