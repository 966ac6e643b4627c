package domain

import "time"

// CatalogEntry is the shared shape of the simple catalog resources:
// categories, operating systems, tags, and locations. Each lives in its own
// table but carries the same fields.
type CatalogEntry struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Deleted reports whether the entry is soft-deleted.
func (e CatalogEntry) Deleted() bool { return e.DeletedAt != nil }

// Server represents a cataloged server and its catalog references.
type Server struct {
	ID          int64
	Name        string
	IPAddress   string
	CategoryID  int64
	OSID        int64
	LocationID  int64
	TagIDs      []int64
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Deleted reports whether the server is soft-deleted.
func (s Server) Deleted() bool { return s.DeletedAt != nil }
