package catalogue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardbound/bookshelf/internal/entities"
	"github.com/hardbound/bookshelf/internal/metadata"
)

type fakeBookStore struct {
	books       map[string]*entities.Book
	createErr   error
	createCalls int
	missFirst   bool // report a miss on the first lookup regardless of contents
	lookupCalls int
	nextID      uint
}

func newFakeBookStore() *fakeBookStore {
	return &fakeBookStore{books: make(map[string]*entities.Book)}
}

func (s *fakeBookStore) FindByISBN(_ context.Context, isbn string) (*entities.Book, error) {
	s.lookupCalls++
	if s.missFirst && s.lookupCalls == 1 {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, isbn)
	}
	book, ok := s.books[isbn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, isbn)
	}
	return book, nil
}

func (s *fakeBookStore) Create(_ context.Context, book *entities.Book) error {
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.books[book.ISBN]; exists {
		return ErrDuplicateISBN
	}
	s.nextID++
	book.ID = s.nextID
	s.books[book.ISBN] = book
	return nil
}

type fakeProvider struct {
	metadata    *metadata.BookMetadata
	err         error
	searchCalls int
}

func (p *fakeProvider) SearchByISBN(_ context.Context, _ string) (*metadata.BookMetadata, error) {
	p.searchCalls++
	if p.err != nil {
		return nil, p.err
	}
	return p.metadata, nil
}

func TestResolve_ExistingBook(t *testing.T) {
	store := newFakeBookStore()
	store.books["9780134685991"] = &entities.Book{ID: 7, ISBN: "9780134685991", Title: "Effective Java"}
	provider := &fakeProvider{}

	resolver := NewResolver(store, provider)

	book, created, err := resolver.Resolve(context.Background(), "9780134685991")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, uint(7), book.ID)
	assert.Equal(t, "Effective Java", book.Title)
	assert.Zero(t, provider.searchCalls, "a catalogue hit must not reach the provider")
}

func TestResolve_CreatesFromProvider(t *testing.T) {
	store := newFakeBookStore()
	provider := &fakeProvider{
		metadata: &metadata.BookMetadata{
			ISBN:      "9780134685991",
			Title:     "Effective Java",
			Subtitle:  "Third Edition",
			Author:    "Joshua Bloch",
			Genre:     "Programming",
			Publisher: "Addison-Wesley",
			Image:     "https://covers.example/9780134685991.jpg",
			Year:      "2018",
			Pages:     416,
		},
	}

	resolver := NewResolver(store, provider)

	book, created, err := resolver.Resolve(context.Background(), "9780134685991")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, book.ID)
	assert.Equal(t, "9780134685991", book.ISBN)
	assert.Equal(t, "Effective Java", book.Title)
	assert.Equal(t, "Joshua Bloch", book.Author)
	assert.Equal(t, "2018", book.Year)
	assert.Equal(t, 416, book.Pages)

	// A second call resolves from the store without the provider.
	again, created, err := resolver.Resolve(context.Background(), "9780134685991")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, book.ID, again.ID)
	assert.Equal(t, 1, provider.searchCalls)
}

func TestResolve_NormalizesISBN(t *testing.T) {
	store := newFakeBookStore()
	provider := &fakeProvider{
		metadata: &metadata.BookMetadata{ISBN: "9780134685991", Title: "Effective Java"},
	}

	resolver := NewResolver(store, provider)

	// Hyphenated input creates the record under the normalized key.
	book, created, err := resolver.Resolve(context.Background(), "978-0-13-468599-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "9780134685991", book.ISBN)
	assert.Contains(t, store.books, "9780134685991")

	// Any spelling of the same ISBN now hits the catalogue.
	for _, isbn := range []string{"978-0-13-468599-1", "9780134685991", "978 0 13 468599 1"} {
		again, created, err := resolver.Resolve(context.Background(), isbn)
		require.NoError(t, err)
		assert.False(t, created, "resolving %q again must not create", isbn)
		assert.Equal(t, book.ID, again.ID)
	}
	assert.Equal(t, 1, provider.searchCalls)
	assert.Equal(t, 1, store.createCalls)
}

func TestResolve_RejectsMalformedISBN(t *testing.T) {
	store := newFakeBookStore()
	provider := &fakeProvider{}

	resolver := NewResolver(store, provider)

	for _, isbn := range []string{"", "123", "not-an-isbn", "12345678901234"} {
		_, _, err := resolver.Resolve(context.Background(), isbn)
		assert.ErrorIs(t, err, ErrInvalidISBN, "input %q", isbn)
	}
	assert.Zero(t, store.lookupCalls)
	assert.Zero(t, provider.searchCalls)
}

func TestResolve_MetadataNotFound(t *testing.T) {
	store := newFakeBookStore()
	provider := &fakeProvider{err: fmt.Errorf("%w: 9999999999999", metadata.ErrNotFound)}

	resolver := NewResolver(store, provider)

	_, _, err := resolver.Resolve(context.Background(), "9999999999999")
	assert.ErrorIs(t, err, ErrBookMetadataNotFound)
	assert.Zero(t, store.createCalls)
}

func TestResolve_ProviderUnavailable(t *testing.T) {
	store := newFakeBookStore()
	provider := &fakeProvider{err: errors.New("connection refused")}

	resolver := NewResolver(store, provider)

	_, _, err := resolver.Resolve(context.Background(), "9780134685991")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.NotErrorIs(t, err, ErrBookMetadataNotFound)
	assert.Zero(t, store.createCalls)
}

func TestResolve_LostInsertRace(t *testing.T) {
	store := newFakeBookStore()
	winner := &entities.Book{ID: 42, ISBN: "9780134685991", Title: "Effective Java"}
	provider := &fakeProvider{
		metadata: &metadata.BookMetadata{ISBN: "9780134685991", Title: "Effective Java"},
	}

	resolver := NewResolver(store, provider)

	// Simulate a concurrent caller inserting between our miss and our insert:
	// the first lookup misses, Create reports a conflict, and the retry lookup
	// finds the winner's record.
	store.missFirst = true
	store.createErr = ErrDuplicateISBN
	store.books["9780134685991"] = winner

	book, created, err := resolver.Resolve(context.Background(), "9780134685991")
	require.NoError(t, err)
	assert.False(t, created, "losing the race must not report a creation")
	assert.Equal(t, uint(42), book.ID)
}

func TestResolve_StorageErrorPropagates(t *testing.T) {
	store := newFakeBookStore()
	store.createErr = errors.New("disk full")
	provider := &fakeProvider{
		metadata: &metadata.BookMetadata{ISBN: "9780134685991", Title: "Effective Java"},
	}

	resolver := NewResolver(store, provider)

	_, _, err := resolver.Resolve(context.Background(), "9780134685991")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProviderUnavailable)
}
