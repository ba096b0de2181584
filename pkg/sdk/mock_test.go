package prospector

import (
	"context"

	"github.com/kailas-cloud/prospector/internal/domain/bulk"
	"github.com/kailas-cloud/prospector/internal/domain/lookup"
	"github.com/kailas-cloud/prospector/internal/domain/search/filter"
	"github.com/kailas-cloud/prospector/internal/domain/search/result"
	enrichuc "github.com/kailas-cloud/prospector/internal/usecase/enrich"
	healthuc "github.com/kailas-cloud/prospector/internal/usecase/health"
	searchuc "github.com/kailas-cloud/prospector/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	peopleFn    func(ctx context.Context, f filter.People, page searchuc.Page) (result.People, error)
	companiesFn func(ctx context.Context, f filter.Companies, page searchuc.Page) (result.Companies, error)
	rawPeopleFn func(ctx context.Context, sql string, page searchuc.Page) (result.People, error)
	rawCompFn   func(ctx context.Context, sql string, page searchuc.Page) (result.Companies, error)
}

func (m *mockSearchUC) SearchPeople(ctx context.Context, f filter.People, page searchuc.Page) (result.People, error) {
	return m.peopleFn(ctx, f, page)
}

func (m *mockSearchUC) SearchCompanies(
	ctx context.Context, f filter.Companies, page searchuc.Page,
) (result.Companies, error) {
	return m.companiesFn(ctx, f, page)
}

func (m *mockSearchUC) RunRawPeopleQuery(ctx context.Context, sql string, page searchuc.Page) (result.People, error) {
	return m.rawPeopleFn(ctx, sql, page)
}

func (m *mockSearchUC) RunRawCompanyQuery(
	ctx context.Context, sql string, page searchuc.Page,
) (result.Companies, error) {
	return m.rawCompFn(ctx, sql, page)
}

// --- enrichUseCase mock ---

type mockEnrichUC struct {
	personFn   func(ctx context.Context, p lookup.Person) (enrichuc.PersonMatch, error)
	companyFn  func(ctx context.Context, c lookup.Company) (enrichuc.CompanyMatch, error)
	identifyFn func(ctx context.Context, id lookup.Identity) (enrichuc.Identification, error)
	ipFn       func(ctx context.Context, ip string) (enrichuc.Passthrough, error)
	jobTitleFn func(ctx context.Context, title string) (enrichuc.Passthrough, error)
	bulkFn     func(ctx context.Context, params []bulk.Params) (enrichuc.BulkResult, error)
}

func (m *mockEnrichUC) EnrichPerson(ctx context.Context, p lookup.Person) (enrichuc.PersonMatch, error) {
	return m.personFn(ctx, p)
}

func (m *mockEnrichUC) EnrichCompany(ctx context.Context, c lookup.Company) (enrichuc.CompanyMatch, error) {
	return m.companyFn(ctx, c)
}

func (m *mockEnrichUC) IdentifyPerson(ctx context.Context, id lookup.Identity) (enrichuc.Identification, error) {
	return m.identifyFn(ctx, id)
}

func (m *mockEnrichUC) EnrichIP(ctx context.Context, ip string) (enrichuc.Passthrough, error) {
	return m.ipFn(ctx, ip)
}

func (m *mockEnrichUC) EnrichJobTitle(ctx context.Context, title string) (enrichuc.Passthrough, error) {
	return m.jobTitleFn(ctx, title)
}

func (m *mockEnrichUC) BulkEnrichPeople(ctx context.Context, params []bulk.Params) (enrichuc.BulkResult, error) {
	return m.bulkFn(ctx, params)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
