package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sme-outreach/internal/db"
	"github.com/sells-group/sme-outreach/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS countries (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	code       TEXT NOT NULL DEFAULT '',
	flag       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS smes (
	id                TEXT PRIMARY KEY,
	country_id        TEXT NOT NULL REFERENCES countries(id) ON DELETE CASCADE,
	name              TEXT NOT NULL,
	industry          TEXT NOT NULL DEFAULT 'General',
	product_type      TEXT NOT NULL DEFAULT '',
	description       TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	founded_year      INTEGER NOT NULL DEFAULT 0,
	employee_count    TEXT NOT NULL DEFAULT '1-5',
	monthly_revenue   TEXT NOT NULL DEFAULT '',
	price_range       TEXT NOT NULL DEFAULT '',
	social_media      JSONB NOT NULL DEFAULT '{}',
	followers         JSONB NOT NULL DEFAULT '{}',
	contact_email     TEXT NOT NULL DEFAULT '',
	owner_name        TEXT NOT NULL DEFAULT '',
	products          JSONB NOT NULL DEFAULT '[]',
	tags              JSONB NOT NULL DEFAULT '[]',
	languages         JSONB NOT NULL DEFAULT '[]',
	no_website_reason TEXT NOT NULL DEFAULT '',
	opportunity_score INTEGER NOT NULL DEFAULT 75,
	status            TEXT NOT NULL DEFAULT 'discovered',
	deployed_url      TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_smes_country_id ON smes(country_id);
CREATE INDEX IF NOT EXISTS idx_smes_status ON smes(status);

CREATE TABLE IF NOT EXISTS websites (
	sme_id       TEXT PRIMARY KEY REFERENCES smes(id) ON DELETE CASCADE,
	html         TEXT NOT NULL,
	deployed_url TEXT,
	slug         TEXT,
	built_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	deployed_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS emails (
	sme_id     TEXT PRIMARY KEY REFERENCES smes(id) ON DELETE CASCADE,
	subject    TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) InsertCountry(ctx context.Context, name, code, flag string) (*model.Country, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO countries (id, name, code, flag, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, name, code, flag, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert country")
	}

	return &model.Country{ID: id, Name: name, Code: code, Flag: flag, CreatedAt: now}, nil
}

func (s *PostgresStore) ListCountries(ctx context.Context) ([]model.Country, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, code, flag, created_at FROM countries ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list countries")
	}
	defer rows.Close()

	var countries []model.Country
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.Flag, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan country")
		}
		countries = append(countries, c)
	}
	return countries, eris.Wrap(rows.Err(), "postgres: list countries iterate")
}

func (s *PostgresStore) GetCountry(ctx context.Context, id string) (*model.Country, error) {
	var c model.Country
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, code, flag, created_at FROM countries WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Code, &c.Flag, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "country %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get country %s", id)
	}
	return &c, nil
}

func (s *PostgresStore) DeleteCountry(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM countries WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete country %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "country %s", id)
	}
	return nil
}

const insertSMESQL = `INSERT INTO smes (
	id, country_id, name, industry, product_type, description, location,
	founded_year, employee_count, monthly_revenue, price_range, social_media,
	followers, contact_email, owner_name, products, tags, languages,
	no_website_reason, opportunity_score, status, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

func (s *PostgresStore) InsertSMEs(ctx context.Context, countryID string, candidates []model.Candidate) ([]model.SME, error) {
	now := time.Now().UTC()
	inserted := make([]model.SME, 0, len(candidates))

	for _, raw := range candidates {
		c := applyDefaults(raw)

		socialJSON, err := json.Marshal(c.SocialMedia)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal social media")
		}
		followersJSON, err := json.Marshal(c.Followers)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal followers")
		}
		productsJSON, err := json.Marshal(c.Products)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal products")
		}
		tagsJSON, err := json.Marshal(c.Tags)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal tags")
		}
		languagesJSON, err := json.Marshal(c.Languages)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal languages")
		}

		id := uuid.New().String()
		_, err = s.pool.Exec(ctx, insertSMESQL,
			id, countryID, c.Name, c.Industry, c.ProductType, c.Description,
			c.Location, c.FoundedYear, c.EmployeeCount, c.MonthlyRevenue,
			c.PriceRange, socialJSON, followersJSON, c.ContactEmail,
			c.OwnerName, productsJSON, tagsJSON, languagesJSON,
			c.NoWebsiteReason, c.OpportunityScore, string(model.StatusDiscovered), now,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: insert sme %s", c.Name)
		}

		inserted = append(inserted, model.SME{
			ID:               id,
			CountryID:        countryID,
			Name:             c.Name,
			Industry:         c.Industry,
			ProductType:      c.ProductType,
			Description:      c.Description,
			Location:         c.Location,
			FoundedYear:      c.FoundedYear,
			EmployeeCount:    c.EmployeeCount,
			MonthlyRevenue:   c.MonthlyRevenue,
			PriceRange:       c.PriceRange,
			SocialMedia:      c.SocialMedia,
			Followers:        c.Followers,
			ContactEmail:     c.ContactEmail,
			OwnerName:        c.OwnerName,
			Products:         c.Products,
			Tags:             c.Tags,
			Languages:        c.Languages,
			NoWebsiteReason:  c.NoWebsiteReason,
			OpportunityScore: c.OpportunityScore,
			Status:           model.StatusDiscovered,
			CreatedAt:        now,
		})
	}
	return inserted, nil
}

const selectSMEColumns = `id, country_id, name, industry, product_type, description, location,
	founded_year, employee_count, monthly_revenue, price_range, social_media,
	followers, contact_email, owner_name, products, tags, languages,
	no_website_reason, opportunity_score, status, deployed_url, created_at`

func scanSME(row pgx.Row) (*model.SME, error) {
	var sme model.SME
	var socialJSON, followersJSON, productsJSON, tagsJSON, languagesJSON []byte
	var deployedURL *string

	err := row.Scan(
		&sme.ID, &sme.CountryID, &sme.Name, &sme.Industry, &sme.ProductType,
		&sme.Description, &sme.Location, &sme.FoundedYear, &sme.EmployeeCount,
		&sme.MonthlyRevenue, &sme.PriceRange, &socialJSON, &followersJSON,
		&sme.ContactEmail, &sme.OwnerName, &productsJSON, &tagsJSON,
		&languagesJSON, &sme.NoWebsiteReason, &sme.OpportunityScore,
		&sme.Status, &deployedURL, &sme.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deployedURL != nil {
		sme.DeployedURL = *deployedURL
	}
	for _, blob := range []struct {
		data []byte
		dst  any
	}{
		{socialJSON, &sme.SocialMedia},
		{followersJSON, &sme.Followers},
		{productsJSON, &sme.Products},
		{tagsJSON, &sme.Tags},
		{languagesJSON, &sme.Languages},
	} {
		if len(blob.data) == 0 {
			continue
		}
		if err := json.Unmarshal(blob.data, blob.dst); err != nil {
			return nil, eris.Wrap(err, "unmarshal sme blob")
		}
	}
	return &sme, nil
}

func (s *PostgresStore) ListSMEs(ctx context.Context, countryID string) ([]model.SME, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectSMEColumns+` FROM smes WHERE country_id = $1 ORDER BY created_at, id`,
		countryID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list smes")
	}
	defer rows.Close()

	var smes []model.SME
	for rows.Next() {
		sme, err := scanSME(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan sme")
		}
		smes = append(smes, *sme)
	}
	return smes, eris.Wrap(rows.Err(), "postgres: list smes iterate")
}

func (s *PostgresStore) GetSME(ctx context.Context, id string) (*model.SME, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectSMEColumns+` FROM smes WHERE id = $1`,
		id,
	)
	sme, err := scanSME(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "sme %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get sme %s", id)
	}
	return sme, nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, smeID string, status model.Status, deployedURL *string) error {
	var tagRows int64
	if deployedURL != nil {
		tag, err := s.pool.Exec(ctx,
			`UPDATE smes SET status = $1, deployed_url = $2 WHERE id = $3`,
			string(status), *deployedURL, smeID,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: set status %s", smeID)
		}
		tagRows = tag.RowsAffected()
	} else {
		tag, err := s.pool.Exec(ctx,
			`UPDATE smes SET status = $1 WHERE id = $2`,
			string(status), smeID,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: set status %s", smeID)
		}
		tagRows = tag.RowsAffected()
	}
	if tagRows == 0 {
		return eris.Wrapf(ErrNotFound, "sme %s", smeID)
	}
	return nil
}

func (s *PostgresStore) UpsertWebsite(ctx context.Context, smeID, html string) (*model.Website, error) {
	now := time.Now().UTC()

	// Replacing the html invalidates any prior deployment, so the deployment
	// fields are cleared in the same statement.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO websites (sme_id, html, built_at) VALUES ($1, $2, $3)
		 ON CONFLICT (sme_id) DO UPDATE SET
		   html = $2, built_at = $3, deployed_url = NULL, slug = NULL, deployed_at = NULL`,
		smeID, html, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert website %s", smeID)
	}

	return &model.Website{SMEID: smeID, HTML: html, BuiltAt: now}, nil
}

func (s *PostgresStore) UpsertWebsiteDeployment(ctx context.Context, smeID, url, slug string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE websites SET deployed_url = $1, slug = $2, deployed_at = $3 WHERE sme_id = $4`,
		url, slug, time.Now().UTC(), smeID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert website deployment %s", smeID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "website for sme %s", smeID)
	}
	return nil
}

func (s *PostgresStore) GetWebsite(ctx context.Context, smeID string) (*model.Website, error) {
	var w model.Website
	var deployedURL, slug *string

	err := s.pool.QueryRow(ctx,
		`SELECT sme_id, html, deployed_url, slug, built_at, deployed_at FROM websites WHERE sme_id = $1`,
		smeID,
	).Scan(&w.SMEID, &w.HTML, &deployedURL, &slug, &w.BuiltAt, &w.DeployedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "website for sme %s", smeID)
		}
		return nil, eris.Wrapf(err, "postgres: get website %s", smeID)
	}

	if deployedURL != nil {
		w.DeployedURL = *deployedURL
	}
	if slug != nil {
		w.Slug = *slug
	}
	return &w, nil
}

func (s *PostgresStore) UpsertEmail(ctx context.Context, smeID, subject, body string) (*model.Email, error) {
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO emails (sme_id, subject, body, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (sme_id) DO UPDATE SET subject = $2, body = $3, created_at = $4`,
		smeID, subject, body, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert email %s", smeID)
	}

	return &model.Email{SMEID: smeID, Subject: subject, Body: body, CreatedAt: now}, nil
}

func (s *PostgresStore) GetEmail(ctx context.Context, smeID string) (*model.Email, error) {
	var e model.Email
	err := s.pool.QueryRow(ctx,
		`SELECT sme_id, subject, body, created_at FROM emails WHERE sme_id = $1`,
		smeID,
	).Scan(&e.SMEID, &e.Subject, &e.Body, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "email for sme %s", smeID)
		}
		return nil, eris.Wrapf(err, "postgres: get email %s", smeID)
	}
	return &e, nil
}
