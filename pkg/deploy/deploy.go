// Package deploy abstracts the site deployment target. The pipeline only
// needs a name for the published site; the static target derives it from the
// slug without touching any hosting provider.
package deploy

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
)

// Target publishes a built site and returns its public URL.
type Target interface {
	Publish(ctx context.Context, slug, html string) (string, error)
}

// StaticTarget names sites under a fixed parent domain without uploading
// anything. Used for simulated deployments and local development.
type StaticTarget struct {
	Domain string
}

// NewStaticTarget creates a StaticTarget for the given parent domain.
func NewStaticTarget(domain string) *StaticTarget {
	if domain == "" {
		domain = "smesites.dev"
	}
	return &StaticTarget{Domain: domain}
}

// Publish returns the deterministic URL the site would live at.
func (t *StaticTarget) Publish(_ context.Context, slug, html string) (string, error) {
	if slug == "" {
		return "", eris.New("deploy: empty slug")
	}
	if html == "" {
		return "", eris.New("deploy: empty document")
	}
	return fmt.Sprintf("https://%s.%s", slug, t.Domain), nil
}
