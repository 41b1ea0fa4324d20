package media

import "context"

// Repository persists asset records. Implementations return ErrNotFound for
// unknown ids. The repository is constructor-injected; there is no global
// model indirection.
type Repository interface {
	// Create inserts the asset and returns it with its assigned id.
	Create(ctx context.Context, asset Asset) (Asset, error)
	// GetByID loads one asset.
	GetByID(ctx context.Context, id int64) (Asset, error)
	// FindWhere returns all assets of the given kind matching the extra
	// column equality filters (supported keys: "source", "disk").
	FindWhere(ctx context.Context, kind Kind, extra map[string]string) ([]Asset, error)
	// DeleteByID removes one asset record.
	DeleteByID(ctx context.Context, id int64) error
}
