package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hardbound/bookshelf/internal/database"
)

// RouterConfig carries the router's dependencies. Tasks is optional; the
// refresh endpoints are only registered when a task queue is running.
type RouterConfig struct {
	Database  *database.Database
	Catalogue BookCatalogue
	Gaps      MetadataGapLister
	Resolver  BookResolver
	Readers   ReaderStore
	Tasks     RefreshEnqueuer
	Version   string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Catalogue, cfg.Resolver)
	readersController := NewReadersController(cfg.Readers)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Book catalogue endpoints. The literal segments (find-by-isbn, findby)
	// must be registered on the same tree as :id; gin resolves literal
	// matches before the parameter route.
	router.GET("/books", booksController.SearchBooks)
	router.POST("/books", booksController.CreateBook)
	router.GET("/books/find-by-isbn", booksController.FindByISBN)
	router.GET("/books/findby", booksController.QuickSearchBooks)
	router.GET("/books/:id", booksController.GetBook)
	router.PUT("/books/:id", booksController.UpdateBook)
	router.DELETE("/books/:id", booksController.DeleteBook)

	// Metadata refresh endpoints
	if cfg.Tasks != nil {
		metadataController := NewMetadataController(cfg.Gaps, cfg.Tasks)
		router.POST("/books/refresh-all", metadataController.RefreshAll)
		router.POST("/books/:id/refresh", metadataController.RefreshBook)
	}

	// Reader endpoints
	router.GET("/users", readersController.GetAllReaders)
	router.POST("/users", readersController.CreateReader)
	router.GET("/users/:id", readersController.GetReader)
	router.PUT("/users/:id", readersController.UpdateReader)
	router.DELETE("/users/:id", readersController.DeleteReader)
	router.PATCH("/users/:id/add_books/:bookId", readersController.AddBook)
	router.PATCH("/users/:id/remove_books/:bookId", readersController.RemoveBook)

	return router
}
