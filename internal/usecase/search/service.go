package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/prospector/internal/domain"
	"github.com/kailas-cloud/prospector/internal/domain/entity"
	"github.com/kailas-cloud/prospector/internal/domain/search/filter"
	"github.com/kailas-cloud/prospector/internal/domain/search/predicate"
	"github.com/kailas-cloud/prospector/internal/domain/search/request"
	"github.com/kailas-cloud/prospector/internal/domain/search/result"
	"github.com/kailas-cloud/prospector/internal/domain/upstream"
)

// Page selects one page of a search.
type Page struct {
	Size        *float64 // nil uses the configured default
	ScrollToken string
}

// Service assembles search queries and normalizes their results.
type Service struct {
	upstream    Searcher
	defaultSize int
}

// New creates a search service. defaultSize <= 0 uses request.DefaultSize.
func New(s Searcher, defaultSize int) *Service {
	if defaultSize <= 0 {
		defaultSize = request.DefaultSize
	}
	return &Service{upstream: s, defaultSize: defaultSize}
}

// SearchPeople finds people matching f.
func (s *Service) SearchPeople(ctx context.Context, f filter.People, page Page) (result.People, error) {
	req, err := request.New(entity.Person, predicate.ForPeople(f), s.size(page), page.ScrollToken)
	if err != nil {
		return result.People{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	resp, err := s.run(ctx, req)
	if err != nil {
		return result.People{}, err
	}
	return result.NewPeople(resp), nil
}

// SearchCompanies finds organizations matching f.
func (s *Service) SearchCompanies(ctx context.Context, f filter.Companies, page Page) (result.Companies, error) {
	req, err := request.New(entity.Company, predicate.ForCompanies(f), s.size(page), page.ScrollToken)
	if err != nil {
		return result.Companies{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	resp, err := s.run(ctx, req)
	if err != nil {
		return result.Companies{}, err
	}
	return result.NewCompanies(resp), nil
}

// RunRawPeopleQuery sends a caller-supplied person query verbatim.
// The query bypasses the predicate builder and is not escaped.
func (s *Service) RunRawPeopleQuery(ctx context.Context, sql string, page Page) (result.People, error) {
	req, err := request.NewRaw(entity.Person, sql, s.size(page), page.ScrollToken)
	if err != nil {
		return result.People{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	resp, err := s.run(ctx, req)
	if err != nil {
		return result.People{}, err
	}
	return result.NewPeople(resp), nil
}

// RunRawCompanyQuery sends a caller-supplied company query verbatim.
func (s *Service) RunRawCompanyQuery(ctx context.Context, sql string, page Page) (result.Companies, error) {
	req, err := request.NewRaw(entity.Company, sql, s.size(page), page.ScrollToken)
	if err != nil {
		return result.Companies{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	resp, err := s.run(ctx, req)
	if err != nil {
		return result.Companies{}, err
	}
	return result.NewCompanies(resp), nil
}

func (s *Service) size(page Page) int {
	return request.ClampSize(page.Size, s.defaultSize)
}

// run executes req. The service answers an empty search with 404, which becomes an empty page.
func (s *Service) run(ctx context.Context, req request.Request) (upstream.Response, error) {
	resp, err := s.upstream.Search(ctx, req.Kind(), req.Body())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return upstream.Response{}, nil
		}
		return upstream.Response{}, fmt.Errorf("search %s: %w", req.Kind(), err)
	}
	return resp, nil
}
