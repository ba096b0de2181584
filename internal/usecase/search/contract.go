package search

import (
	"context"

	"github.com/kailas-cloud/prospector/internal/domain/entity"
	"github.com/kailas-cloud/prospector/internal/domain/search/request"
	"github.com/kailas-cloud/prospector/internal/domain/upstream"
)

// Searcher runs an assembled query against the enrichment service.
type Searcher interface {
	Search(ctx context.Context, kind entity.Kind, body request.Body) (upstream.Response, error)
}
