package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hardbound/bookshelf/internal/entities"
)

// ReaderStore is the slice of the readers repository the controller uses.
// AddBook/RemoveBook are the only way the book collection is mutated.
type ReaderStore interface {
	GetAll(ctx context.Context) ([]entities.Reader, error)
	GetByID(ctx context.Context, id uint) (*entities.Reader, error)
	Create(ctx context.Context, reader *entities.Reader) error
	Update(ctx context.Context, id uint, reader *entities.Reader) error
	Delete(ctx context.Context, id uint) error
	AddBook(ctx context.Context, readerID, bookID uint) error
	RemoveBook(ctx context.Context, readerID, bookID uint) error
}

type ReadersController struct {
	readers ReaderStore
}

func NewReadersController(readers ReaderStore) *ReadersController {
	return &ReadersController{readers: readers}
}

// GetAllReaders handles GET /users.
func (controller *ReadersController) GetAllReaders(c *gin.Context) {
	list, err := controller.readers.GetAll(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list, "count": len(list)})
}

// GetReader handles GET /users/:id.
func (controller *ReadersController) GetReader(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reader, err := controller.readers.GetByID(c.Request.Context(), id)
	if err != nil {
		respondCatalogueError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, reader)
}

// CreateReader handles POST /users. Username is required; the books
// collection in the payload is ignored.
func (controller *ReadersController) CreateReader(c *gin.Context) {
	var reader entities.Reader
	if err := c.ShouldBindJSON(&reader); err != nil {
		respondBadRequest(c, "invalid user payload: "+err.Error())
		return
	}
	if strings.TrimSpace(reader.Username) == "" {
		respondBadRequest(c, "username is required")
		return
	}

	reader.ID = 0
	if err := controller.readers.Create(c.Request.Context(), &reader); err != nil {
		respondCatalogueError(c, err, "create user")
		return
	}
	c.JSON(http.StatusCreated, reader)
}

// UpdateReader handles PUT /users/:id. Only the reader's own fields are
// replaced; held books cannot be rewritten through this endpoint.
func (controller *ReadersController) UpdateReader(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var reader entities.Reader
	if err := c.ShouldBindJSON(&reader); err != nil {
		respondBadRequest(c, "invalid user payload: "+err.Error())
		return
	}
	if strings.TrimSpace(reader.Username) == "" {
		respondBadRequest(c, "username is required")
		return
	}

	if err := controller.readers.Update(c.Request.Context(), id, &reader); err != nil {
		respondCatalogueError(c, err, "update user")
		return
	}

	updated, err := controller.readers.GetByID(c.Request.Context(), id)
	if err != nil {
		respondCatalogueError(c, err, "reload user")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteReader handles DELETE /users/:id.
func (controller *ReadersController) DeleteReader(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.readers.Delete(c.Request.Context(), id); err != nil {
		respondCatalogueError(c, err, "delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddBook handles PATCH /users/:id/add_books/:bookId. Adding a book the
// reader already holds succeeds without creating a duplicate hold.
func (controller *ReadersController) AddBook(c *gin.Context) {
	readerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if err := controller.readers.AddBook(c.Request.Context(), readerID, bookID); err != nil {
		respondCatalogueError(c, err, "add book to user")
		return
	}
	c.Status(http.StatusCreated)
}

// RemoveBook handles PATCH /users/:id/remove_books/:bookId. Removing a book
// the reader does not hold succeeds with no effect.
func (controller *ReadersController) RemoveBook(c *gin.Context) {
	readerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if err := controller.readers.RemoveBook(c.Request.Context(), readerID, bookID); err != nil {
		respondCatalogueError(c, err, "remove book from user")
		return
	}
	c.Status(http.StatusNoContent)
}
