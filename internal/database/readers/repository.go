// Package readers provides database operations for readers and the
// reader↔book relation.
//
// The Books collection is only ever mutated through AddBook/RemoveBook.
// Generic record updates deliberately cannot touch it, so the relation's
// set semantics (at most one hold per book per reader) cannot be bypassed.
package readers

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hardbound/bookshelf/internal/catalogue"
	"github.com/hardbound/bookshelf/internal/entities"
)

// Repository handles all reader database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new readers repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAll retrieves all readers with their held books.
func (r *Repository) GetAll(ctx context.Context) ([]entities.Reader, error) {
	var list []entities.Reader
	err := r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB {
			return db.Order("books.id ASC")
		}).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list readers: %w", err)
	}
	return list, nil
}

// GetByID retrieves a reader by id with their held books.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Reader, error) {
	var reader entities.Reader
	err := r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB {
			return db.Order("books.id ASC")
		}).
		First(&reader, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogue.ErrReaderNotFound
		}
		return nil, err
	}
	return &reader, nil
}

// FindByUsername retrieves a reader by their username business key.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*entities.Reader, error) {
	var reader entities.Reader
	err := r.db.WithContext(ctx).
		Preload("Books").
		Where("username = ?", username).
		First(&reader).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogue.ErrReaderNotFound
		}
		return nil, err
	}
	return &reader, nil
}

// Create inserts a new reader. The books collection in the payload is
// ignored; holds are only established through AddBook.
func (r *Repository) Create(ctx context.Context, reader *entities.Reader) error {
	reader.Books = nil
	if err := r.db.WithContext(ctx).Create(reader).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return catalogue.ErrDuplicateUsername
		}
		return fmt.Errorf("create reader: %w", err)
	}
	return nil
}

// Update replaces the reader's own fields (username, name, birthdate). The
// books collection is not replaceable through this path.
func (r *Repository) Update(ctx context.Context, id uint, reader *entities.Reader) error {
	var existing entities.Reader
	if err := r.db.WithContext(ctx).First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalogue.ErrReaderNotFound
		}
		return err
	}

	updates := map[string]any{
		"username":  reader.Username,
		"name":      reader.Name,
		"birthdate": reader.Birthdate,
	}
	err := r.db.WithContext(ctx).Model(&entities.Reader{ID: id}).Updates(updates).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return catalogue.ErrDuplicateUsername
		}
		return fmt.Errorf("update reader: %w", err)
	}
	reader.ID = id
	return nil
}

// Delete removes a reader and their hold records.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reader entities.Reader
		if err := tx.First(&reader, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return catalogue.ErrReaderNotFound
			}
			return err
		}
		if err := tx.Exec("DELETE FROM reader_books WHERE reader_id = ?", id).Error; err != nil {
			return fmt.Errorf("clear holds: %w", err)
		}
		if err := tx.Delete(&entities.Reader{}, id).Error; err != nil {
			return fmt.Errorf("delete reader: %w", err)
		}
		return nil
	})
}

// AddBook records that the reader holds the book. Adding a book the reader
// already holds is a no-op, so repeated calls converge to the same state.
// Both endpoints are verified inside one transaction; a failed lookup
// leaves nothing mutated.
func (r *Repository) AddBook(ctx context.Context, readerID, bookID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reader, book, err := lookupEndpoints(tx, readerID, bookID)
		if err != nil {
			return err
		}
		if reader.HoldsBook(bookID) {
			return nil
		}
		if err := tx.Model(reader).Association("Books").Append(book); err != nil {
			return fmt.Errorf("add book %d to reader %d: %w", bookID, readerID, err)
		}
		return nil
	})
}

// RemoveBook releases the reader's hold on the book. Removing a book the
// reader does not hold succeeds with no effect.
func (r *Repository) RemoveBook(ctx context.Context, readerID, bookID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reader, book, err := lookupEndpoints(tx, readerID, bookID)
		if err != nil {
			return err
		}
		if !reader.HoldsBook(bookID) {
			return nil
		}
		if err := tx.Model(reader).Association("Books").Delete(book); err != nil {
			return fmt.Errorf("remove book %d from reader %d: %w", bookID, readerID, err)
		}
		return nil
	})
}

// lookupEndpoints loads both sides of the relation, translating misses
// into the domain's not-found errors.
func lookupEndpoints(tx *gorm.DB, readerID, bookID uint) (*entities.Reader, *entities.Book, error) {
	var reader entities.Reader
	if err := tx.Preload("Books").First(&reader, readerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, catalogue.ErrReaderNotFound
		}
		return nil, nil, err
	}
	var book entities.Book
	if err := tx.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, catalogue.ErrBookNotFound
		}
		return nil, nil, err
	}
	return &reader, &book, nil
}
