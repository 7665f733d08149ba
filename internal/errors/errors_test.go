package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayErrorFormatting(t *testing.T) {
	err := New(CategoryRender, SeverityError, "render failed")
	assert.Equal(t, "render (error): render failed", err.Error())

	wrapped := Wrap(fmt.Errorf("boom"), CategoryRender, SeverityError, "render failed")
	assert.Equal(t, "render (error): render failed: boom", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := StorageWriteFailed(cause)
	require.ErrorIs(t, err, cause)
}

func TestCategoryClassification(t *testing.T) {
	assert.True(t, IsCategory(MissingTemplate(), CategoryValidation))
	assert.False(t, IsCategory(MissingTemplate(), CategoryStorage))
	assert.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
	assert.Equal(t, CategoryEmail, GetCategory(EmailDirectiveInvalid("to is not a list")))
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, MissingTemplate().HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, RenderFailed(fmt.Errorf("engine")).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, StorageWriteFailed(fmt.Errorf("io")).HTTPStatus())
}

func TestWithContext(t *testing.T) {
	err := ConfigRequired("USERNAME")
	require.NotNil(t, err.Context)
	assert.Equal(t, "USERNAME", err.Context["field"])
}
