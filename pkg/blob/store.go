package blob

import (
	"context"
	"fmt"
)

// Query is a selection criterion over the blob namespace. Delimiter, when
// set, makes the listing non-recursive at that separator.
type Query struct {
	Prefix    string
	Delimiter string
}

// Store lists and downloads binary assets addressed by hierarchical keys.
type Store interface {
	List(ctx context.Context, query Query) ([]string, error)
	Download(ctx context.Context, name string) ([]byte, error)
}

// NoAssetError reports a listing that was empty after filtering out the
// directory marker object.
type NoAssetError struct {
	Prefix string
}

func (e *NoAssetError) Error() string {
	return fmt.Sprintf("no assets found under %q", e.Prefix)
}
