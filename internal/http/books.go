package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hardbound/bookshelf/internal/database/books"
	"github.com/hardbound/bookshelf/internal/entities"
)

// BookCatalogue is the slice of the books repository the controller uses.
type BookCatalogue interface {
	GetByID(ctx context.Context, id uint) (*entities.Book, error)
	Create(ctx context.Context, book *entities.Book) error
	Update(ctx context.Context, id uint, book *entities.Book) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, criteria books.SearchCriteria, page, pageSize int) (*books.Page, error)
	QuickSearch(ctx context.Context, publisher, genre string, year *int, page, pageSize int) (*books.Page, error)
}

// BookResolver is the find-or-create-by-ISBN entry point.
type BookResolver interface {
	Resolve(ctx context.Context, isbn string) (*entities.Book, bool, error)
}

type BooksController struct {
	catalogue BookCatalogue
	resolver  BookResolver
}

func NewBooksController(catalogue BookCatalogue, resolver BookResolver) *BooksController {
	return &BooksController{
		catalogue: catalogue,
		resolver:  resolver,
	}
}

// GetBook handles GET /books/:id.
func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalogue.GetByID(c.Request.Context(), id)
	if err != nil {
		respondCatalogueError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBook handles POST /books. ISBN is required; everything else may be
// blank and can be filled in later by the metadata refresh.
func (controller *BooksController) CreateBook(c *gin.Context) {
	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid book payload: "+err.Error())
		return
	}
	if strings.TrimSpace(book.ISBN) == "" {
		respondBadRequest(c, "isbn is required")
		return
	}

	book.ID = 0
	if err := controller.catalogue.Create(c.Request.Context(), &book); err != nil {
		respondCatalogueError(c, err, "create book")
		return
	}
	c.JSON(http.StatusCreated, book)
}

// UpdateBook handles PUT /books/:id as a full replacement. The path id is
// the source of truth; an id in the payload is ignored.
func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid book payload: "+err.Error())
		return
	}
	if strings.TrimSpace(book.ISBN) == "" {
		respondBadRequest(c, "isbn is required")
		return
	}

	if err := controller.catalogue.Update(c.Request.Context(), id, &book); err != nil {
		respondCatalogueError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook handles DELETE /books/:id.
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.catalogue.Delete(c.Request.Context(), id); err != nil {
		respondCatalogueError(c, err, "delete book")
		return
	}
	c.Status(http.StatusNoContent)
}

// FindByISBN handles GET /books/find-by-isbn?isbn=. Answers 200 when the
// catalogue already had the book and 201 when it was created from provider
// metadata during this call.
func (controller *BooksController) FindByISBN(c *gin.Context) {
	isbn := strings.TrimSpace(c.Query("isbn"))
	if isbn == "" {
		respondBadRequest(c, "isbn query parameter is required")
		return
	}

	book, created, err := controller.resolver.Resolve(c.Request.Context(), isbn)
	if err != nil {
		respondCatalogueError(c, err, "resolve isbn")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, book)
}

// SearchBooks handles GET /books with the full optional criteria set.
func (controller *BooksController) SearchBooks(c *gin.Context) {
	criteria := books.SearchCriteria{
		Genre:     c.Query("genre"),
		Author:    c.Query("author"),
		Image:     c.Query("image"),
		Title:     c.Query("title"),
		Subtitle:  c.Query("subtitle"),
		Publisher: c.Query("publisher"),
		ISBN:      c.Query("isbn"),
	}

	var ok bool
	if criteria.StartYear, ok = parseOptionalIntQuery(c, "startYear"); !ok {
		return
	}
	if criteria.EndYear, ok = parseOptionalIntQuery(c, "endYear"); !ok {
		return
	}
	if criteria.Pages, ok = parseOptionalIntQuery(c, "pages"); !ok {
		return
	}

	page, size, ok := parsePageParams(c)
	if !ok {
		return
	}

	result, err := controller.catalogue.Search(c.Request.Context(), criteria, page, size)
	if err != nil {
		respondCatalogueError(c, err, "search books")
		return
	}
	c.JSON(http.StatusOK, result)
}

// QuickSearchBooks handles GET /books/findby, the narrow
// publisher/genre/year filter.
func (controller *BooksController) QuickSearchBooks(c *gin.Context) {
	year, ok := parseOptionalIntQuery(c, "year")
	if !ok {
		return
	}
	page, size, ok := parsePageParams(c)
	if !ok {
		return
	}

	result, err := controller.catalogue.QuickSearch(
		c.Request.Context(),
		c.Query("publisher"),
		c.Query("genre"),
		year,
		page,
		size,
	)
	if err != nil {
		respondCatalogueError(c, err, "quick search books")
		return
	}
	c.JSON(http.StatusOK, result)
}
