package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardbound/bookshelf/internal/catalogue"
	"github.com/hardbound/bookshelf/internal/entities"
	"github.com/hardbound/bookshelf/internal/metadata"
)

type fakeRefresher struct {
	books       map[uint]*entities.Book
	updateCalls int
}

func (f *fakeRefresher) GetByID(_ context.Context, id uint) (*entities.Book, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, catalogue.ErrBookNotFound
	}
	copied := *book
	return &copied, nil
}

func (f *fakeRefresher) Update(_ context.Context, id uint, book *entities.Book) error {
	f.updateCalls++
	stored := *book
	stored.ID = id
	f.books[id] = &stored
	return nil
}

type fakeMetadataProvider struct {
	md  *metadata.BookMetadata
	err error
}

func (p *fakeMetadataProvider) SearchByISBN(_ context.Context, _ string) (*metadata.BookMetadata, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.md, nil
}

func TestFillBlankFields(t *testing.T) {
	book := &entities.Book{
		Title: "Kept Title",
		Year:  "1999",
	}
	md := &metadata.BookMetadata{
		Title:     "Provider Title",
		Author:    "Provider Author",
		Publisher: "Provider House",
		Year:      "2020",
		Pages:     300,
	}

	updated := fillBlankFields(book, md)

	assert.ElementsMatch(t, []string{"author", "publisher", "pages"}, updated)
	assert.Equal(t, "Kept Title", book.Title, "existing values are never overwritten")
	assert.Equal(t, "1999", book.Year)
	assert.Equal(t, "Provider Author", book.Author)
	assert.Equal(t, "Provider House", book.Publisher)
	assert.Equal(t, 300, book.Pages)
}

func TestFillBlankFields_NothingToFill(t *testing.T) {
	book := &entities.Book{
		Title: "T", Subtitle: "S", Author: "A", Genre: "G",
		Publisher: "P", Image: "I", Year: "2000", Pages: 1,
	}
	updated := fillBlankFields(book, &metadata.BookMetadata{Title: "Other"})
	assert.Empty(t, updated)
}

func TestRefreshBookProcessor(t *testing.T) {
	t.Run("fills gaps and persists", func(t *testing.T) {
		store := &fakeRefresher{books: map[uint]*entities.Book{
			1: {ID: 1, ISBN: "9780000000001", Title: "Partial"},
		}}
		provider := &fakeMetadataProvider{md: &metadata.BookMetadata{Author: "Found Author"}}

		processor := RefreshBookProcessor(store, provider)
		require.NoError(t, processor(context.Background(), RefreshBookTask{BookID: 1}))

		assert.Equal(t, 1, store.updateCalls)
		assert.Equal(t, "Found Author", store.books[1].Author)
		assert.Equal(t, "Partial", store.books[1].Title)
	})

	t.Run("deleted book is a clean skip", func(t *testing.T) {
		store := &fakeRefresher{books: map[uint]*entities.Book{}}
		provider := &fakeMetadataProvider{}

		processor := RefreshBookProcessor(store, provider)
		require.NoError(t, processor(context.Background(), RefreshBookTask{BookID: 42}))
		assert.Zero(t, store.updateCalls)
	})

	t.Run("unknown isbn is a clean skip", func(t *testing.T) {
		store := &fakeRefresher{books: map[uint]*entities.Book{
			1: {ID: 1, ISBN: "9780000000001"},
		}}
		provider := &fakeMetadataProvider{err: fmt.Errorf("%w: 9780000000001", metadata.ErrNotFound)}

		processor := RefreshBookProcessor(store, provider)
		require.NoError(t, processor(context.Background(), RefreshBookTask{BookID: 1}))
		assert.Zero(t, store.updateCalls)
	})

	t.Run("provider outage is retryable", func(t *testing.T) {
		store := &fakeRefresher{books: map[uint]*entities.Book{
			1: {ID: 1, ISBN: "9780000000001"},
		}}
		provider := &fakeMetadataProvider{err: errors.New("connection refused")}

		processor := RefreshBookProcessor(store, provider)
		err := processor(context.Background(), RefreshBookTask{BookID: 1})
		require.Error(t, err, "transient provider failures must surface so the queue retries")
		assert.Zero(t, store.updateCalls)
	})

	t.Run("no gaps means no write", func(t *testing.T) {
		store := &fakeRefresher{books: map[uint]*entities.Book{
			1: {ID: 1, ISBN: "9780000000001", Title: "T", Subtitle: "S", Author: "A",
				Genre: "G", Publisher: "P", Image: "I", Year: "2000", Pages: 1},
		}}
		provider := &fakeMetadataProvider{md: &metadata.BookMetadata{Title: "Other"}}

		processor := RefreshBookProcessor(store, provider)
		require.NoError(t, processor(context.Background(), RefreshBookTask{BookID: 1}))
		assert.Zero(t, store.updateCalls)
	})
}
