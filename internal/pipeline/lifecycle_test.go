package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sme-outreach/internal/config"
	"github.com/sells-group/sme-outreach/internal/model"
	"github.com/sells-group/sme-outreach/internal/store"
	"github.com/sells-group/sme-outreach/pkg/anthropic"
	"github.com/sells-group/sme-outreach/pkg/deploy"
)

// Walks one SME through all four stages against a real store, asserting the
// status progression and the deployed URL flowing from deploy into the
// outreach email.
func TestSMELifecycle(t *testing.T) {
	ctx := context.Background()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	ai := new(mockAI)
	d := new(mockDiscoverer)
	d.On("Discover", mock.Anything, "Armenia").Return([]model.Candidate{
		{Name: "Anush's Jams & Co.", Industry: "Food", Location: "Yerevan"},
	}, nil)

	c := NewController(st, ai, d, deploy.NewStaticTarget(""), config.AnthropicConfig{
		BuilderModel:  "claude-sonnet-4-5-20250929",
		EmailModel:    "claude-haiku-4-5-20251001",
		MaxTokens:     4096,
		SiteMaxTokens: 16384,
	})

	country, err := c.CreateCountry(ctx, "Armenia", "AM", "🇦🇲")
	require.NoError(t, err)

	// Stage 1: discover.
	smes, err := c.Discover(ctx, country.ID)
	require.NoError(t, err)
	require.Len(t, smes, 1)
	sme := smes[0]
	assert.Equal(t, model.StatusDiscovered, sme.Status)

	// Stage 2: build the website.
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-sonnet-4-5-20250929"
	})).Return(textResponse("<!DOCTYPE html><html><body>Jams</body></html>"), nil).Once()

	website, err := c.BuildWebsite(ctx, sme.ID)
	require.NoError(t, err)
	assert.Empty(t, website.DeployedURL)

	got, err := st.GetSME(ctx, sme.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWebsiteBuilt, got.Status)
	assert.Empty(t, got.DeployedURL)

	// Stage 3: deploy.
	result, err := c.Deploy(ctx, sme.ID)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "anush-s-jams-co", result.Slug)
	assert.Equal(t, "https://anush-s-jams-co.smesites.dev", result.URL)

	got, err = st.GetSME(ctx, sme.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeployed, got.Status)
	assert.Equal(t, result.URL, got.DeployedURL)

	deployed, err := st.GetWebsite(ctx, sme.ID)
	require.NoError(t, err)
	assert.Equal(t, result.URL, deployed.DeployedURL)
	require.NotNil(t, deployed.DeployedAt)

	// Stage 4: generate the email. The prompt must carry the deployed URL,
	// not the placeholder, and the stored body keeps the link.
	var emailPrompt string
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001"
	})).Run(func(args mock.Arguments) {
		emailPrompt = args.Get(1).(anthropic.MessageRequest).Messages[0].Content
	}).Return(textResponse(`{"subject": "Your new website is live", "body": "Hi Anush, your site is at https://anush-s-jams-co.smesites.dev, take a look."}`), nil).Once()

	email, err := c.GenerateEmail(ctx, sme.ID)
	require.NoError(t, err)
	assert.Contains(t, emailPrompt, result.URL)
	assert.NotContains(t, emailPrompt, urlPlaceholder)
	assert.Contains(t, email.Body, result.URL)

	got, err = st.GetSME(ctx, sme.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEmailReady, got.Status)

	stored, err := st.GetEmail(ctx, sme.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.Body, result.URL)

	ai.AssertExpectations(t)
	d.AssertExpectations(t)
}
