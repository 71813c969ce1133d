// Package store is the persistence gateway for the outreach pipeline. Every
// artifact mutation is a single-entity upsert keyed on the SME's 1:1
// ownership of its website and email rows, so re-running any stage is safe.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sme-outreach/internal/model"
)

// ErrNotFound marks lookups for absent countries, SMEs, or artifacts.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence operations the pipeline controller needs.
type Store interface {
	// Countries
	InsertCountry(ctx context.Context, name, code, flag string) (*model.Country, error)
	ListCountries(ctx context.Context) ([]model.Country, error)
	GetCountry(ctx context.Context, id string) (*model.Country, error)
	// DeleteCountry cascades to the country's SMEs and their artifacts.
	DeleteCountry(ctx context.Context, id string) error

	// SMEs
	InsertSMEs(ctx context.Context, countryID string, candidates []model.Candidate) ([]model.SME, error)
	ListSMEs(ctx context.Context, countryID string) ([]model.SME, error)
	GetSME(ctx context.Context, id string) (*model.SME, error)
	// SetStatus updates the advisory status label; a non-nil deployedURL is
	// mirrored onto the SME row in the same statement.
	SetStatus(ctx context.Context, smeID string, status model.Status, deployedURL *string) error

	// Website artifact (at most one row per SME)
	// UpsertWebsite replaces any prior html and clears deployment fields:
	// a rebuilt site invalidates the previous deployment.
	UpsertWebsite(ctx context.Context, smeID, html string) (*model.Website, error)
	// UpsertWebsiteDeployment requires an existing website row.
	UpsertWebsiteDeployment(ctx context.Context, smeID, url, slug string) error
	GetWebsite(ctx context.Context, smeID string) (*model.Website, error)

	// Email artifact (at most one row per SME)
	UpsertEmail(ctx context.Context, smeID, subject, body string) (*model.Email, error)
	GetEmail(ctx context.Context, smeID string) (*model.Email, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Candidate field defaults applied at insert time.
const (
	DefaultIndustry         = "General"
	DefaultEmployeeCount    = "1-5"
	DefaultOpportunityScore = 75
)

// applyDefaults fills absent optional candidate fields before insertion.
// Collection-valued fields default to empty (never nil) so the stored blobs
// round-trip as [] / {}.
func applyDefaults(c model.Candidate) model.Candidate {
	if c.Industry == "" {
		c.Industry = DefaultIndustry
	}
	if c.EmployeeCount == "" {
		c.EmployeeCount = DefaultEmployeeCount
	}
	if c.OpportunityScore == 0 {
		c.OpportunityScore = DefaultOpportunityScore
	}
	if c.SocialMedia == nil {
		c.SocialMedia = map[string]string{}
	}
	if c.Followers == nil {
		c.Followers = map[string]int{}
	}
	if c.Products == nil {
		c.Products = []string{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Languages == nil {
		c.Languages = []string{}
	}
	return c
}
