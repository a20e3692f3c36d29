package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/hardbound/bookshelf/internal/catalogue"
	"github.com/hardbound/bookshelf/internal/entities"
	"github.com/hardbound/bookshelf/internal/metadata"
)

// RefreshBookTask fills a book's blank bibliographic fields from the
// external provider. Caller-supplied values are never overwritten.
type RefreshBookTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for metadata refresh tasks.
func (t RefreshBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BookRefresher is the slice of the books repository the refresh task uses.
type BookRefresher interface {
	GetByID(ctx context.Context, id uint) (*entities.Book, error)
	Update(ctx context.Context, id uint, book *entities.Book) error
}

// RefreshBookProcessor creates a processor function for RefreshBookTask.
func RefreshBookProcessor(store BookRefresher, provider catalogue.MetadataProvider) backlite.QueueProcessor[RefreshBookTask] {
	return func(ctx context.Context, task RefreshBookTask) error {
		book, err := store.GetByID(ctx, task.BookID)
		if err != nil {
			if errors.Is(err, catalogue.ErrBookNotFound) {
				// Deleted between enqueue and execution; nothing to refresh.
				log.Printf("[TASK] Book %d gone, skipping refresh", task.BookID)
				return nil
			}
			return fmt.Errorf("get book %d: %w", task.BookID, err)
		}

		md, err := provider.SearchByISBN(ctx, book.ISBN)
		if err != nil {
			if errors.Is(err, metadata.ErrNotFound) {
				log.Printf("[TASK] Book %d (%s): provider has no record, skipping", task.BookID, book.ISBN)
				return nil
			}
			return fmt.Errorf("fetch metadata for book %d: %w", task.BookID, err)
		}

		updated := fillBlankFields(book, md)
		if len(updated) == 0 {
			log.Printf("[TASK] Book %d (%s): no metadata gaps to fill", task.BookID, book.Title)
			return nil
		}

		if err := store.Update(ctx, task.BookID, book); err != nil {
			return fmt.Errorf("update book %d: %w", task.BookID, err)
		}

		log.Printf("[TASK] Refreshed book %d (%s): filled %v", task.BookID, book.Title, updated)
		return nil
	}
}

// NewRefreshBookQueue creates a backlite queue for metadata refresh tasks.
func NewRefreshBookQueue(store BookRefresher, provider catalogue.MetadataProvider) backlite.Queue {
	return backlite.NewQueue(RefreshBookProcessor(store, provider))
}

// fillBlankFields copies provider values into blank book fields and reports
// which fields changed.
func fillBlankFields(book *entities.Book, md *metadata.BookMetadata) []string {
	var updated []string

	if book.Title == "" && md.Title != "" {
		book.Title = md.Title
		updated = append(updated, "title")
	}
	if book.Subtitle == "" && md.Subtitle != "" {
		book.Subtitle = md.Subtitle
		updated = append(updated, "subtitle")
	}
	if book.Author == "" && md.Author != "" {
		book.Author = md.Author
		updated = append(updated, "author")
	}
	if book.Genre == "" && md.Genre != "" {
		book.Genre = md.Genre
		updated = append(updated, "genre")
	}
	if book.Publisher == "" && md.Publisher != "" {
		book.Publisher = md.Publisher
		updated = append(updated, "publisher")
	}
	if book.Image == "" && md.Image != "" {
		book.Image = md.Image
		updated = append(updated, "image")
	}
	if book.Year == "" && md.Year != "" {
		book.Year = md.Year
		updated = append(updated, "year")
	}
	if book.Pages == 0 && md.Pages != 0 {
		book.Pages = md.Pages
		updated = append(updated, "pages")
	}

	return updated
}
