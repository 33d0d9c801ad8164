package ports

import (
	"context"

	"gostat/domain/dataset"
)

// DatasetSource loads a dataset into memory. Implementations are used once at
// startup; the returned dataset is treated as immutable afterwards.
type DatasetSource interface {
	// Load reads the whole dataset
	Load(ctx context.Context) (*dataset.Dataset, error)

	// Describe returns a short human-readable location for logs and errors
	Describe() string
}
