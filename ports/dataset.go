package ports

import (
	"context"

	"switchlens/domain/survey"
)

// DatasetSource hands the core a cleaned, flat tabular dataset. Parsing,
// column normalization and derived-field computation happen upstream;
// the core never reads raw files itself.
type DatasetSource interface {
	Load(ctx context.Context) (*survey.Dataset, error)
}
