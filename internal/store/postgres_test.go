package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sme-outreach/internal/model"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresInsertCountry(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO countries`).
		WithArgs(pgxmock.AnyArg(), "Armenia", "AM", "🇦🇲", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	c, err := s.InsertCountry(context.Background(), "Armenia", "AM", "🇦🇲")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Armenia", c.Name)
	assert.Equal(t, "AM", c.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetCountryNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, code, flag, created_at FROM countries`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "code", "flag", "created_at"}))

	_, err := s.GetCountry(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteCountry(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM countries`).
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, s.DeleteCountry(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteCountryNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM countries`).
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteCountry(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertSMEsAppliesDefaults(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO smes`).
		WithArgs(
			pgxmock.AnyArg(), "c1", "Anush's Jams", "General", "", "", "",
			0, "1-5", "", "", pgxmock.AnyArg(), pgxmock.AnyArg(), "", "",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "", 75,
			"discovered", pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	smes, err := s.InsertSMEs(context.Background(), "c1", []model.Candidate{
		{Name: "Anush's Jams"},
	})
	require.NoError(t, err)
	require.Len(t, smes, 1)

	sme := smes[0]
	assert.Equal(t, "General", sme.Industry)
	assert.Equal(t, "1-5", sme.EmployeeCount)
	assert.Equal(t, 75, sme.OpportunityScore)
	assert.Equal(t, model.StatusDiscovered, sme.Status)
	assert.NotNil(t, sme.SocialMedia)
	assert.NotNil(t, sme.Products)
	assert.NotNil(t, sme.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetSME(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM smes WHERE id`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "country_id", "name", "industry", "product_type", "description",
			"location", "founded_year", "employee_count", "monthly_revenue",
			"price_range", "social_media", "followers", "contact_email",
			"owner_name", "products", "tags", "languages", "no_website_reason",
			"opportunity_score", "status", "deployed_url", "created_at",
		}).AddRow(
			"s1", "c1", "Anush's Jams", "Food", "jams", "homemade preserves",
			"Yerevan", 2019, "1-5", "", "$", []byte(`{"instagram":"@anushjams"}`),
			[]byte(`{"instagram":1200}`), "anush@example.com", "Anush",
			[]byte(`["apricot jam"]`), []byte(`["food"]`), []byte(`["hy","en"]`),
			"no time", 82, "deployed", (*string)(nil), now,
		))

	sme, err := s.GetSME(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Anush's Jams", sme.Name)
	assert.Equal(t, "@anushjams", sme.SocialMedia["instagram"])
	assert.Equal(t, 1200, sme.Followers["instagram"])
	assert.Equal(t, []string{"apricot jam"}, sme.Products)
	assert.Equal(t, model.StatusDeployed, sme.Status)
	assert.Empty(t, sme.DeployedURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetSMENotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM smes WHERE id`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := s.GetSME(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE smes SET status = \$1 WHERE id`).
		WithArgs("website_built", "s1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.SetStatus(context.Background(), "s1", model.StatusWebsiteBuilt, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetStatusWithDeployedURL(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	url := "https://anush-s-jams.smesites.dev"
	mock.ExpectExec(`UPDATE smes SET status = \$1, deployed_url = \$2`).
		WithArgs("deployed", url, "s1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.SetStatus(context.Background(), "s1", model.StatusDeployed, &url))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetStatusNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE smes SET status`).
		WithArgs("discovered", "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SetStatus(context.Background(), "ghost", model.StatusDiscovered, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertWebsiteClearsDeployment(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT \(sme_id\) DO UPDATE SET\s+html = \$2, built_at = \$3, deployed_url = NULL, slug = NULL, deployed_at = NULL`).
		WithArgs("s1", "<html></html>", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	w, err := s.UpsertWebsite(context.Background(), "s1", "<html></html>")
	require.NoError(t, err)
	assert.Equal(t, "s1", w.SMEID)
	assert.Empty(t, w.DeployedURL)
	assert.Nil(t, w.DeployedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertWebsiteDeployment(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE websites SET deployed_url`).
		WithArgs("https://anush-s-jams.smesites.dev", "anush-s-jams", pgxmock.AnyArg(), "s1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpsertWebsiteDeployment(context.Background(), "s1", "https://anush-s-jams.smesites.dev", "anush-s-jams"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertWebsiteDeploymentNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE websites SET deployed_url`).
		WithArgs("https://x.smesites.dev", "x", pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpsertWebsiteDeployment(context.Background(), "ghost", "https://x.smesites.dev", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetWebsite(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	built := time.Now().UTC()
	deployed := built.Add(time.Minute)
	url := "https://anush-s-jams.smesites.dev"
	slug := "anush-s-jams"

	mock.ExpectQuery(`SELECT sme_id, html, deployed_url, slug, built_at, deployed_at FROM websites`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{
			"sme_id", "html", "deployed_url", "slug", "built_at", "deployed_at",
		}).AddRow("s1", "<html></html>", &url, &slug, built, &deployed))

	w, err := s.GetWebsite(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, url, w.DeployedURL)
	assert.Equal(t, slug, w.Slug)
	require.NotNil(t, w.DeployedAt)
	assert.Equal(t, deployed, *w.DeployedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetWebsiteNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT sme_id, html, deployed_url, slug, built_at, deployed_at FROM websites`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"sme_id"}))

	_, err := s.GetWebsite(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertEmail(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO emails .+ ON CONFLICT \(sme_id\) DO UPDATE`).
		WithArgs("s1", "Your new website", "Hi Anush,", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	e, err := s.UpsertEmail(context.Background(), "s1", "Your new website", "Hi Anush,")
	require.NoError(t, err)
	assert.Equal(t, "Your new website", e.Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetEmailNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT sme_id, subject, body, created_at FROM emails`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"sme_id"}))

	_, err := s.GetEmail(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
