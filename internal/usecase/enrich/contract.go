package enrich

import (
	"context"
	"net/url"

	"github.com/kailas-cloud/prospector/internal/domain/bulk"
	"github.com/kailas-cloud/prospector/internal/domain/lookup"
	"github.com/kailas-cloud/prospector/internal/domain/upstream"
)

// Lookuper fetches one enrichment response body from a GET endpoint.
type Lookuper interface {
	Lookup(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

// Identifier resolves a person from identity signals.
type Identifier interface {
	Identify(ctx context.Context, id lookup.Identity) (upstream.Response, error)
}

// BulkEnricher enriches a batch of people in one upstream call.
type BulkEnricher interface {
	BulkEnrich(ctx context.Context, body bulk.Body) ([]upstream.BulkItem, error)
}
