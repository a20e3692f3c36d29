// Package database owns the gorm connection to the catalogue store and its
// schema migration. Entity-specific operations live in the sub-packages
// (books, readers); this package only opens, migrates and closes.
package database
