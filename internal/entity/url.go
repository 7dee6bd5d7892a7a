// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL, along with its
// associated metadata, and any relevant error definitions.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrShortCodeExists is returned when attempting to create a URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when a URL with the specified short code cannot be found.
	ErrURLNotFound = errors.New("url not found")
	// ErrMaxAttemptsExceeded is returned when the collision retry loop runs out of attempts.
	ErrMaxAttemptsExceeded = errors.New("maximum attempts exceeded for generating short code")
)

// URL represents a shortened URL.
type URL struct {
	ShortCode   string    // ShortCode is the code used to shorten the original URL.
	OriginalURL string    // OriginalURL is the full URL that the short code resolves to.
	AccessCount int64     // AccessCount is the number of times the shortened URL has been accessed.
	CreatedAt   time.Time // CreatedAt is the timestamp when the URL was created.
}

// AccessRecord pairs a short code with its access count. It is the element
// type of the most/least accessed rankings in URLStats.
type AccessRecord struct {
	ShortCode   string
	AccessCount int64
}

// URLStats aggregates statistics over the whole store.
//
// MostAccessed is the head and LeastAccessed the tail of the same sequence of
// entries sorted by access count in descending order, five elements each.
// When five or fewer entries exist the two rankings overlap.
type URLStats struct {
	TotalURLs     int
	TotalAccesses int64
	MostAccessed  []AccessRecord
	LeastAccessed []AccessRecord
}

// BulkDeleteResult reports the outcome of a bulk delete. Every requested code
// lands in exactly one of the two buckets.
type BulkDeleteResult struct {
	DeletedCount int
	FailedCodes  []string
}
