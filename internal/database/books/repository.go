// Package books provides database operations for the book catalogue.
//
// This package implements the catalogue.BookStore interface consumed by the
// ISBN resolver; see internal/interfaces/checks.go.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID(ctx, 123)
package books

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hardbound/bookshelf/internal/catalogue"
	"github.com/hardbound/bookshelf/internal/entities"
)

// MaxPageSize caps pageSize; larger requests are clamped, not rejected.
const MaxPageSize = 100

// Page is one bounded slice of a search result plus position metadata.
// Pages are zero-based.
type Page struct {
	Items      []entities.Book `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// SearchCriteria is the optional-field configuration for a filtered search.
// Blank strings and nil pointers mean "do not filter on this field". String
// criteria match by case-insensitive containment; year bounds are inclusive
// and independently omittable; pages matches exactly.
type SearchCriteria struct {
	Genre     string
	Author    string
	Image     string
	Title     string
	Subtitle  string
	Publisher string
	ISBN      string
	StartYear *int
	EndYear   *int
	Pages     *int
}

// Repository handles all book catalogue database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a book by its surrogate id.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogue.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// FindByISBN retrieves a book by its ISBN business key.
func (r *Repository) FindByISBN(ctx context.Context, isbn string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogue.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Create inserts a new book. A collision on the isbn unique index comes
// back as catalogue.ErrDuplicateISBN so the resolver can retry its lookup.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return catalogue.ErrDuplicateISBN
		}
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// Update replaces all fields of the book identified by id. The id from the
// path is the source of truth; any id in the payload is ignored.
func (r *Repository) Update(ctx context.Context, id uint, book *entities.Book) error {
	var existing entities.Book
	if err := r.db.WithContext(ctx).First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalogue.ErrBookNotFound
		}
		return err
	}

	book.ID = id
	book.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return catalogue.ErrDuplicateISBN
		}
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

// Delete removes a book by id.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.Book{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return catalogue.ErrBookNotFound
	}
	return nil
}

// Search runs a filtered, paginated scan over the catalogue. Criteria that
// are unset contribute no condition; the result is ordered by id so
// repeated calls with the same criteria paginate identically. An empty
// result is not an error.
func (r *Repository) Search(ctx context.Context, criteria SearchCriteria, page, pageSize int) (*Page, error) {
	if page < 0 || pageSize < 1 {
		return nil, catalogue.ErrInvalidPageRequest
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	// The session makes the chain safe to execute twice (count, then fetch).
	query := applyCriteria(r.db.WithContext(ctx).Model(&entities.Book{}), criteria).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count search results: %w", err)
	}

	items := make([]entities.Book, 0, pageSize)
	err := query.
		Order("id ASC").
		Limit(pageSize).
		Offset(page * pageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// QuickSearch is the narrow three-field variant (publisher, genre, year)
// expressed through the same predicate builder. A supplied year collapses
// to an inclusive range with identical bounds, i.e. an exact match.
func (r *Repository) QuickSearch(ctx context.Context, publisher, genre string, year *int, page, pageSize int) (*Page, error) {
	criteria := SearchCriteria{
		Publisher: publisher,
		Genre:     genre,
		StartYear: year,
		EndYear:   year,
	}
	return r.Search(ctx, criteria, page, pageSize)
}

// GetBooksMissingMetadata returns books with at least one blank
// bibliographic field, candidates for a provider refresh. The predicate is
// the SQL form of entities.Book.MissingMetadata; the two must stay in sync.
func (r *Repository) GetBooksMissingMetadata(ctx context.Context) ([]entities.Book, error) {
	var list []entities.Book
	err := r.db.WithContext(ctx).
		Where("title = '' OR author = '' OR publisher = '' OR image = '' OR year = '' OR pages = 0").
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("books missing metadata: %w", err)
	}
	return list, nil
}

// applyCriteria ANDs one condition per supplied criterion onto the query.
// Blank year rows are excluded whenever a year bound is supplied, since a
// blank cannot satisfy a numeric comparison.
func applyCriteria(db *gorm.DB, c SearchCriteria) *gorm.DB {
	stringFilters := []struct {
		column string
		value  string
	}{
		{"genre", c.Genre},
		{"author", c.Author},
		{"image", c.Image},
		{"title", c.Title},
		{"subtitle", c.Subtitle},
		{"publisher", c.Publisher},
		{"isbn", c.ISBN},
	}
	for _, f := range stringFilters {
		if f.value == "" {
			continue
		}
		db = db.Where("LOWER("+f.column+") LIKE LOWER(?)", "%"+f.value+"%")
	}

	if c.StartYear != nil {
		db = db.Where("year <> '' AND CAST(year AS INTEGER) >= ?", *c.StartYear)
	}
	if c.EndYear != nil {
		db = db.Where("year <> '' AND CAST(year AS INTEGER) <= ?", *c.EndYear)
	}
	if c.Pages != nil {
		db = db.Where("pages = ?", *c.Pages)
	}

	return db
}
