package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hardbound/bookshelf/internal/entities"
)

// RefreshEnqueuer hands metadata refresh work to the background task queue.
type RefreshEnqueuer interface {
	EnqueueRefresh(ctx context.Context, bookID uint) error
}

// MetadataGapLister finds books whose bibliographic fields are incomplete.
type MetadataGapLister interface {
	GetByID(ctx context.Context, id uint) (*entities.Book, error)
	GetBooksMissingMetadata(ctx context.Context) ([]entities.Book, error)
}

type MetadataController struct {
	catalogue MetadataGapLister
	tasks     RefreshEnqueuer
}

func NewMetadataController(catalogue MetadataGapLister, tasks RefreshEnqueuer) *MetadataController {
	return &MetadataController{
		catalogue: catalogue,
		tasks:     tasks,
	}
}

// RefreshBook handles POST /books/:id/refresh. The refresh runs in the
// background; missing fields get filled from the provider, caller-supplied
// values are never overwritten.
func (controller *MetadataController) RefreshBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := controller.catalogue.GetByID(c.Request.Context(), id); err != nil {
		respondCatalogueError(c, err, "refresh book")
		return
	}

	if err := controller.tasks.EnqueueRefresh(c.Request.Context(), id); err != nil {
		respondInternalError(c, err, "enqueue refresh")
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse{Message: "metadata refresh queued"})
}

// RefreshAll handles POST /books/refresh-all, queueing a refresh for every
// book with metadata gaps.
func (controller *MetadataController) RefreshAll(c *gin.Context) {
	candidates, err := controller.catalogue.GetBooksMissingMetadata(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list metadata gaps")
		return
	}

	queued := 0
	for _, book := range candidates {
		if err := controller.tasks.EnqueueRefresh(c.Request.Context(), book.ID); err != nil {
			respondInternalError(c, err, "enqueue refresh")
			return
		}
		queued++
	}

	c.JSON(http.StatusAccepted, SuccessResponse{
		Message: "metadata refresh queued",
		Data:    gin.H{"queued": queued},
	})
}
