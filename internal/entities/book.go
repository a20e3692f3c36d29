package entities

import (
	"time"
)

// Book is a catalogued title. ISBN is the business key: the unique index
// backs the find-or-create path, so there is never more than one row per
// ISBN regardless of how many concurrent resolutions race on it.
type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ISBN      string    `gorm:"uniqueIndex;size:20;not null" json:"isbn"`
	Title     string    `gorm:"index;size:512" json:"title,omitempty"`
	Subtitle  string    `gorm:"size:512" json:"subtitle,omitempty"`
	Author    string    `gorm:"index;size:256" json:"author,omitempty"`
	Genre     string    `gorm:"size:100" json:"genre,omitempty"`
	Publisher string    `gorm:"size:256" json:"publisher,omitempty"`
	Image     string    `gorm:"size:2048" json:"image,omitempty"`
	Year      string    `gorm:"size:10" json:"year,omitempty"` // text column, blank or a decimal year
	Pages     int       `json:"pages,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MissingMetadata reports whether any bibliographic field a provider could
// supply is still blank. Used by the refresh sweep to pick candidates. The
// books repository's GetBooksMissingMetadata predicate is the SQL form of
// this check; changes here must be mirrored there.
func (b *Book) MissingMetadata() bool {
	return b.Title == "" || b.Author == "" || b.Publisher == "" ||
		b.Image == "" || b.Year == "" || b.Pages == 0
}
