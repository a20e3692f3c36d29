package config

const (
	// DefaultDatabasePath is the default path for the catalogue database
	DefaultDatabasePath = "./bookshelf.db"
)
