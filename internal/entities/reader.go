package entities

import (
	"time"
)

// Reader is a library member identified by a unique username. The Books
// collection is the reader↔book relation backed by the reader_books join
// table; it behaves as a set (one hold per book per reader) and is only
// mutated through the readers repository's AddBook/RemoveBook, never by a
// generic record update.
type Reader struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Name      string    `gorm:"size:256" json:"name,omitempty"`
	Birthdate string    `gorm:"size:10" json:"birthdate,omitempty"` // YYYY-MM-DD
	Books     []Book    `gorm:"many2many:reader_books" json:"books"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HoldsBook reports whether the reader currently holds the given book.
func (r *Reader) HoldsBook(bookID uint) bool {
	for _, b := range r.Books {
		if b.ID == bookID {
			return true
		}
	}
	return false
}
