// Package catalogue holds the domain logic that sits between the HTTP layer
// and the storage/provider edges: the find-or-create-by-ISBN resolver and
// the shared error taxonomy.
package catalogue

import (
	"context"
	"errors"
	"fmt"

	"github.com/hardbound/bookshelf/internal/entities"
	"github.com/hardbound/bookshelf/internal/metadata"
)

// BookStore is the slice of the books repository the resolver needs.
type BookStore interface {
	FindByISBN(ctx context.Context, isbn string) (*entities.Book, error)
	Create(ctx context.Context, book *entities.Book) error
}

// MetadataProvider fetches bibliographic metadata for an ISBN.
type MetadataProvider interface {
	SearchByISBN(ctx context.Context, isbn string) (*metadata.BookMetadata, error)
}

// Resolver implements find-or-create-by-ISBN over the catalogue store and an
// external metadata provider. The store is effectively a cache keyed by
// ISBN; the provider is the source of truth on a miss.
type Resolver struct {
	store    BookStore
	provider MetadataProvider
}

// NewResolver creates a resolver over the given store and provider.
func NewResolver(store BookStore, provider MetadataProvider) *Resolver {
	return &Resolver{store: store, provider: provider}
}

// Resolve returns the book with the given ISBN, creating it from provider
// metadata when the catalogue does not have it yet. The second return value
// reports whether this call created the record.
//
// The ISBN is normalized up front so the store lookup, the insert and the
// conflict retry all use the same key; stored records only ever carry the
// normalized form. Hyphenation differences in the input cannot produce a
// second record or a failed retry.
//
// Check-then-insert is not atomic across concurrent callers; the unique
// index on isbn is the safety net. When the insert loses that race the
// resolver retries the lookup once instead of surfacing the conflict, so
// every caller sees the same single record.
func (r *Resolver) Resolve(ctx context.Context, isbn string) (*entities.Book, bool, error) {
	isbn = metadata.NormalizeISBN(isbn)
	if isbn == "" {
		return nil, false, fmt.Errorf("%w: must be 10 or 13 characters", ErrInvalidISBN)
	}

	book, err := r.store.FindByISBN(ctx, isbn)
	if err == nil {
		return book, false, nil
	}
	if !errors.Is(err, ErrBookNotFound) {
		return nil, false, fmt.Errorf("lookup by isbn: %w", err)
	}

	md, err := r.provider.SearchByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: %s", ErrBookMetadataNotFound, isbn)
		}
		return nil, false, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	book = bookFromMetadata(md)
	if err := r.store.Create(ctx, book); err != nil {
		if errors.Is(err, ErrDuplicateISBN) {
			// A concurrent resolution inserted first; its record wins.
			existing, lookupErr := r.store.FindByISBN(ctx, isbn)
			if lookupErr != nil {
				return nil, false, fmt.Errorf("lookup after conflict: %w", lookupErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create book: %w", err)
	}

	return book, true, nil
}

// bookFromMetadata maps a provider record onto a new Book. Fields the
// provider omitted stay blank.
func bookFromMetadata(md *metadata.BookMetadata) *entities.Book {
	return &entities.Book{
		ISBN:      md.ISBN,
		Title:     md.Title,
		Subtitle:  md.Subtitle,
		Author:    md.Author,
		Genre:     md.Genre,
		Publisher: md.Publisher,
		Image:     md.Image,
		Year:      md.Year,
		Pages:     md.Pages,
	}
}
