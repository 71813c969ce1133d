package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sme-outreach/internal/config"
	"github.com/sells-group/sme-outreach/internal/extract"
	"github.com/sells-group/sme-outreach/internal/model"
	"github.com/sells-group/sme-outreach/internal/store"
	"github.com/sells-group/sme-outreach/pkg/anthropic"
	"github.com/sells-group/sme-outreach/pkg/deploy"
)

// Discoverer produces a batch of candidate businesses for a country.
type Discoverer interface {
	Discover(ctx context.Context, countryName string) ([]model.Candidate, error)
}

// Controller sequences the outreach stages for one SME at a time. Every stage
// is independently callable; persistence is upsert-based so re-invoking a
// stage after a failure is always safe.
type Controller struct {
	store    store.Store
	ai       anthropic.Client
	driver   Discoverer
	deployer deploy.Target
	cfg      config.AnthropicConfig
}

func NewController(st store.Store, ai anthropic.Client, driver Discoverer, deployer deploy.Target, cfg config.AnthropicConfig) *Controller {
	return &Controller{
		store:    st,
		ai:       ai,
		driver:   driver,
		deployer: deployer,
		cfg:      cfg,
	}
}

// CreateCountry validates and persists a new country.
func (c *Controller) CreateCountry(ctx context.Context, name, code, flag string) (*model.Country, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, eris.Wrap(ErrValidation, "country name is required")
	}
	return c.store.InsertCountry(ctx, name, code, flag)
}

// Discover runs the discovery stage for a country and inserts the resulting
// batch of SMEs, each starting at status discovered.
func (c *Controller) Discover(ctx context.Context, countryID string) ([]model.SME, error) {
	country, err := c.store.GetCountry(ctx, countryID)
	if err != nil {
		return nil, err
	}

	candidates, err := c.driver.Discover(ctx, country.Name)
	if err != nil {
		return nil, err
	}

	smes, err := c.store.InsertSMEs(ctx, countryID, candidates)
	if err != nil {
		return nil, err
	}

	zap.L().Info("discovery complete",
		zap.String("country", country.Name),
		zap.Int("smes", len(smes)),
	)
	return smes, nil
}

// BuildWebsite generates a single-file site for the SME and upserts it,
// replacing any prior build. A rebuild invalidates any prior deployment.
func (c *Controller) BuildWebsite(ctx context.Context, smeID string) (*model.Website, error) {
	sme, err := c.store.GetSME(ctx, smeID)
	if err != nil {
		return nil, err
	}

	resp, err := c.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.cfg.BuilderModel,
		MaxTokens: c.cfg.SiteMaxTokens,
		System:    []anthropic.SystemBlock{{Text: websiteSystem}},
		Messages:  []anthropic.Message{{Role: "user", Content: websitePrompt(sme)}},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: build website for %s", sme.Name)
	}
	resp.Usage.LogCost(c.cfg.BuilderModel, "build_website")

	html := extract.Document(resp.Text())
	if strings.TrimSpace(html) == "" {
		return nil, eris.Wrapf(extract.ErrParse, "empty website document for %s", sme.Name)
	}

	website, err := c.store.UpsertWebsite(ctx, smeID, html)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetStatus(ctx, smeID, model.StatusWebsiteBuilt, nil); err != nil {
		return nil, err
	}
	return website, nil
}

// DeployResult reports a successful deployment.
type DeployResult struct {
	OK   bool   `json:"ok"`
	URL  string `json:"url"`
	Slug string `json:"slug"`
}

// Deploy publishes the SME's built website under a slug derived from the
// business name and mirrors the resulting URL onto the SME row.
func (c *Controller) Deploy(ctx context.Context, smeID string) (*DeployResult, error) {
	sme, err := c.store.GetSME(ctx, smeID)
	if err != nil {
		return nil, err
	}

	website, err := c.store.GetWebsite(ctx, smeID)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			return nil, eris.Wrapf(ErrPrecondition, "no website built for %s yet", sme.Name)
		}
		return nil, err
	}

	slug := Slugify(sme.Name)
	if slug == "" {
		slug = sme.ID
	}

	url, err := c.deployer.Publish(ctx, slug, website.HTML)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: deploy %s", sme.Name)
	}

	if err := c.store.UpsertWebsiteDeployment(ctx, smeID, url, slug); err != nil {
		return nil, err
	}
	if err := c.store.SetStatus(ctx, smeID, model.StatusDeployed, &url); err != nil {
		return nil, err
	}

	zap.L().Info("deployed website",
		zap.String("sme", sme.Name),
		zap.String("url", url),
	)
	return &DeployResult{OK: true, URL: url, Slug: slug}, nil
}

// GenerateEmail produces the outreach email for the SME from a single-turn
// model call. An undeployed SME gets a placeholder token instead of a URL.
func (c *Controller) GenerateEmail(ctx context.Context, smeID string) (*model.Email, error) {
	sme, err := c.store.GetSME(ctx, smeID)
	if err != nil {
		return nil, err
	}

	resp, err := c.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.cfg.EmailModel,
		MaxTokens: c.cfg.MaxTokens,
		System:    []anthropic.SystemBlock{{Text: emailSystem}},
		Messages:  []anthropic.Message{{Role: "user", Content: emailPrompt(sme)}},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: generate email for %s", sme.Name)
	}
	resp.Usage.LogCost(c.cfg.EmailModel, "generate_email")

	raw, err := extract.JSONObject(resp.Text())
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse email for %s", sme.Name)
	}

	var parsed struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, eris.Wrapf(extract.ErrParse, "email shape for %s: %v", sme.Name, err)
	}
	if parsed.Subject == "" || parsed.Body == "" {
		return nil, eris.Wrapf(extract.ErrParse, "email missing subject or body for %s", sme.Name)
	}

	email, err := c.store.UpsertEmail(ctx, smeID, parsed.Subject, parsed.Body)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetStatus(ctx, smeID, model.StatusEmailReady, nil); err != nil {
		return nil, err
	}
	return email, nil
}
