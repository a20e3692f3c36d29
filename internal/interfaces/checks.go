package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/hardbound/bookshelf/internal/catalogue"
	"github.com/hardbound/bookshelf/internal/database/books"
	"github.com/hardbound/bookshelf/internal/database/readers"
	"github.com/hardbound/bookshelf/internal/http"
	"github.com/hardbound/bookshelf/internal/metadata"
	"github.com/hardbound/bookshelf/internal/scheduler"
	"github.com/hardbound/bookshelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ catalogue.BookStore = (*books.Repository)(nil)
var _ http.BookCatalogue = (*books.Repository)(nil)
var _ http.MetadataGapLister = (*books.Repository)(nil)
var _ http.ReaderStore = (*readers.Repository)(nil)
var _ scheduler.GapLister = (*books.Repository)(nil)
var _ tasks.BookRefresher = (*books.Repository)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ catalogue.MetadataProvider = (*metadata.OpenLibraryClient)(nil)

// =============================================================================
// Domain Services
// =============================================================================

var _ http.BookResolver = (*catalogue.Resolver)(nil)
var _ http.RefreshEnqueuer = (*tasks.Client)(nil)
var _ scheduler.RefreshEnqueuer = (*tasks.Client)(nil)
