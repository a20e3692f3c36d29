package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryContext(t *testing.T, rawQuery string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest("GET", "/?"+rawQuery, nil)
	require.NoError(t, err)
	c.Request = req
	return c, w
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("valid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: "42"}}

		id, ok := parseIDParam(c, "id")
		assert.True(t, ok)
		assert.Equal(t, uint(42), id)
	})

	t.Run("non-numeric id responds 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}

		_, ok := parseIDParam(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative id responds 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: "-1"}}

		_, ok := parseIDParam(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestParsePageParams(t *testing.T) {
	t.Run("defaults apply when absent", func(t *testing.T) {
		c, _ := queryContext(t, "")
		page, size, ok := parsePageParams(c)
		assert.True(t, ok)
		assert.Equal(t, 0, page)
		assert.Equal(t, DefaultPageSize, size)
	})

	t.Run("explicit values win", func(t *testing.T) {
		c, _ := queryContext(t, "page=3&size=5")
		page, size, ok := parsePageParams(c)
		assert.True(t, ok)
		assert.Equal(t, 3, page)
		assert.Equal(t, 5, size)
	})

	t.Run("non-numeric page responds 400", func(t *testing.T) {
		c, w := queryContext(t, "page=abc")
		_, _, ok := parsePageParams(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestParseOptionalIntQuery(t *testing.T) {
	t.Run("absent means nil", func(t *testing.T) {
		c, _ := queryContext(t, "")
		v, ok := parseOptionalIntQuery(c, "year")
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("present parses", func(t *testing.T) {
		c, _ := queryContext(t, "year=2010")
		v, ok := parseOptionalIntQuery(c, "year")
		assert.True(t, ok)
		require.NotNil(t, v)
		assert.Equal(t, 2010, *v)
	})

	t.Run("garbage responds 400", func(t *testing.T) {
		c, w := queryContext(t, "year=twenty")
		_, ok := parseOptionalIntQuery(c, "year")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
