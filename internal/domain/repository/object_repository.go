package repository

import "context"

// ObjectRepository reads billing export objects from their storage.
type ObjectRepository interface {
	// ListObjects returns the names under prefix in lexicographic order.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
	// ReadObject returns the object content or types.ErrObjectNotFound.
	ReadObject(ctx context.Context, name string) ([]byte, error)
}
