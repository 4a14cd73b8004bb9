package customer

import "context"

// Directory defines the interface for the upstream customer directory
type Directory interface {
	// List returns one page of customers matching the query
	List(ctx context.Context, q Query) (QueryResult, error)

	// All returns every customer, unfiltered
	All(ctx context.Context) ([]Customer, error)

	// Delete removes a customer by ID
	Delete(ctx context.Context, id string) error
}
