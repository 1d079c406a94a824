package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsMatchWrappedCopies(t *testing.T) {
	wrapped := fmt.Errorf("request abc donor xyz: %w", ErrDuplicateMatch)
	assert.ErrorIs(t, wrapped, ErrDuplicateMatch)
	assert.NotErrorIs(t, wrapped, ErrInvalidTransition)

	twice := fmt.Errorf("outer: %w", wrapped)
	assert.ErrorIs(t, twice, ErrDuplicateMatch)
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("donor", nil).HTTPStatus())
	assert.Equal(t, http.StatusConflict, ErrDuplicateMatch.HTTPStatus())
	assert.Equal(t, http.StatusConflict, ErrInvalidTransition.HTTPStatus())
	assert.Equal(t, http.StatusUnprocessableEntity, ErrMissingLocation.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal(nil).HTTPStatus())
}

func TestFromError(t *testing.T) {
	appErr := FromError(fmt.Errorf("load: %w", NotFound("match", nil)))
	assert.Equal(t, ErrNotFound, appErr.Code)

	unknown := FromError(errors.New("disk on fire"))
	assert.Equal(t, ErrInternal, unknown.Code)
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("sql: no rows in result set")
	err := NotFound("user", cause)
	assert.ErrorIs(t, err, cause)
}
