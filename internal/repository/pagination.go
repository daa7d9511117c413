package repository

import "github.com/maxviazov/tracker-dashboard/internal/model"

// Page represents a simple limit/offset window for listing operations.
// A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// PageResult carries a slice of items and the total count matching the query.
// I return the total so clients can compute pagination without an extra round trip.
type PageResult[T any] struct {
	Items []T
	Total int
}

// Query selects rows of one object. Empty Columns selects every column,
// empty Where matches every row. Rows come back in _id order.
type Query struct {
	Columns []string
	Where   model.Row
	Page    Page
}
