package model

import "time"

// Status tracks how far an SME has progressed through the outreach pipeline.
// It is an advisory label, not a guarded state machine: each stage checks its
// own artifact preconditions at call time instead of gating on status.
type Status string

const (
	StatusDiscovered   Status = "discovered"
	StatusWebsiteBuilt Status = "website_built"
	StatusDeployed     Status = "deployed"
	StatusEmailReady   Status = "email_ready"
)

// Country is an operator-created market to discover SMEs in. Deleting a
// country cascades to its SMEs and their artifacts.
type Country struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	Flag      string    `json:"flag,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SME is a small-business candidate without a website, produced in batches by
// the discovery stage and mutated in place by each later stage.
type SME struct {
	ID          string `json:"id"`
	CountryID   string `json:"country_id"`
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	ProductType string `json:"product_type,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	FoundedYear int    `json:"founded_year,omitempty"`

	EmployeeCount  string `json:"employee_count"`
	MonthlyRevenue string `json:"monthly_revenue,omitempty"`
	PriceRange     string `json:"price_range,omitempty"`

	SocialMedia  map[string]string `json:"social_media,omitempty"`
	Followers    map[string]int    `json:"followers,omitempty"`
	ContactEmail string            `json:"contact_email,omitempty"`
	OwnerName    string            `json:"owner_name,omitempty"`

	Products  []string `json:"products,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Languages []string `json:"languages,omitempty"`

	NoWebsiteReason  string `json:"no_website_reason,omitempty"`
	OpportunityScore int    `json:"opportunity_score"`

	Status      Status    `json:"status"`
	DeployedURL string    `json:"deployed_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Candidate is the raw shape the discovery model returns for one business.
// Optional fields get defaults applied at insert time.
type Candidate struct {
	Name             string            `json:"name"`
	Industry         string            `json:"industry,omitempty"`
	ProductType      string            `json:"product_type,omitempty"`
	Description      string            `json:"description,omitempty"`
	Location         string            `json:"location,omitempty"`
	FoundedYear      int               `json:"founded_year,omitempty"`
	EmployeeCount    string            `json:"employee_count,omitempty"`
	MonthlyRevenue   string            `json:"monthly_revenue,omitempty"`
	PriceRange       string            `json:"price_range,omitempty"`
	SocialMedia      map[string]string `json:"social_media,omitempty"`
	Followers        map[string]int    `json:"followers,omitempty"`
	ContactEmail     string            `json:"contact_email,omitempty"`
	OwnerName        string            `json:"owner_name,omitempty"`
	Products         []string          `json:"products,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	Languages        []string          `json:"languages,omitempty"`
	NoWebsiteReason  string            `json:"no_website_reason,omitempty"`
	OpportunityScore int               `json:"opportunity_score,omitempty"`
}

// Website is the generated site artifact, at most one per SME. Rebuilding
// replaces the html and clears any prior deployment fields.
type Website struct {
	SMEID       string     `json:"sme_id"`
	HTML        string     `json:"html"`
	DeployedURL string     `json:"deployed_url,omitempty"`
	Slug        string     `json:"slug,omitempty"`
	BuiltAt     time.Time  `json:"built_at"`
	DeployedAt  *time.Time `json:"deployed_at,omitempty"`
}

// Email is the outreach email artifact, at most one per SME.
type Email struct {
	SMEID     string    `json:"sme_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
