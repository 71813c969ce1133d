package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/sme-outreach/internal/model"
	"github.com/sells-group/sme-outreach/pkg/anthropic"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) InsertCountry(ctx context.Context, name, code, flag string) (*model.Country, error) {
	args := m.Called(ctx, name, code, flag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Country), args.Error(1)
}

func (m *mockStore) ListCountries(ctx context.Context) ([]model.Country, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Country), args.Error(1)
}

func (m *mockStore) GetCountry(ctx context.Context, id string) (*model.Country, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Country), args.Error(1)
}

func (m *mockStore) DeleteCountry(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) InsertSMEs(ctx context.Context, countryID string, candidates []model.Candidate) ([]model.SME, error) {
	args := m.Called(ctx, countryID, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SME), args.Error(1)
}

func (m *mockStore) ListSMEs(ctx context.Context, countryID string) ([]model.SME, error) {
	args := m.Called(ctx, countryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SME), args.Error(1)
}

func (m *mockStore) GetSME(ctx context.Context, id string) (*model.SME, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SME), args.Error(1)
}

func (m *mockStore) SetStatus(ctx context.Context, smeID string, status model.Status, deployedURL *string) error {
	return m.Called(ctx, smeID, status, deployedURL).Error(0)
}

func (m *mockStore) UpsertWebsite(ctx context.Context, smeID, html string) (*model.Website, error) {
	args := m.Called(ctx, smeID, html)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Website), args.Error(1)
}

func (m *mockStore) UpsertWebsiteDeployment(ctx context.Context, smeID, url, slug string) error {
	return m.Called(ctx, smeID, url, slug).Error(0)
}

func (m *mockStore) GetWebsite(ctx context.Context, smeID string) (*model.Website, error) {
	args := m.Called(ctx, smeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Website), args.Error(1)
}

func (m *mockStore) UpsertEmail(ctx context.Context, smeID, subject, body string) (*model.Email, error) {
	args := m.Called(ctx, smeID, subject, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Email), args.Error(1)
}

func (m *mockStore) GetEmail(ctx context.Context, smeID string) (*model.Email, error) {
	args := m.Called(ctx, smeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Email), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

type mockAI struct {
	mock.Mock
}

func (m *mockAI) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func (m *mockAI) CreateMessageWithTools(ctx context.Context, req anthropic.ToolMessageRequest, runner anthropic.ToolRunner) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req, runner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

type mockDiscoverer struct {
	mock.Mock
}

func (m *mockDiscoverer) Discover(ctx context.Context, countryName string) ([]model.Candidate, error) {
	args := m.Called(ctx, countryName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Candidate), args.Error(1)
}

type mockDeployer struct {
	mock.Mock
}

func (m *mockDeployer) Publish(ctx context.Context, slug, html string) (string, error) {
	args := m.Called(ctx, slug, html)
	return args.String(0), args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}
