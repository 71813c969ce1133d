package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/sme-outreach/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Intended for local
// development; upsert semantics mirror the Postgres store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS countries (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	code       TEXT NOT NULL DEFAULT '',
	flag       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
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
	social_media      TEXT NOT NULL DEFAULT '{}',
	followers         TEXT NOT NULL DEFAULT '{}',
	contact_email     TEXT NOT NULL DEFAULT '',
	owner_name        TEXT NOT NULL DEFAULT '',
	products          TEXT NOT NULL DEFAULT '[]',
	tags              TEXT NOT NULL DEFAULT '[]',
	languages         TEXT NOT NULL DEFAULT '[]',
	no_website_reason TEXT NOT NULL DEFAULT '',
	opportunity_score INTEGER NOT NULL DEFAULT 75,
	status            TEXT NOT NULL DEFAULT 'discovered',
	deployed_url      TEXT,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_smes_country_id ON smes(country_id);
CREATE INDEX IF NOT EXISTS idx_smes_status ON smes(status);

CREATE TABLE IF NOT EXISTS websites (
	sme_id       TEXT PRIMARY KEY REFERENCES smes(id) ON DELETE CASCADE,
	html         TEXT NOT NULL,
	deployed_url TEXT,
	slug         TEXT,
	built_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	deployed_at  DATETIME
);

CREATE TABLE IF NOT EXISTS emails (
	sme_id     TEXT PRIMARY KEY REFERENCES smes(id) ON DELETE CASCADE,
	subject    TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertCountry(ctx context.Context, name, code, flag string) (*model.Country, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO countries (id, name, code, flag, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, code, flag, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert country")
	}
	return &model.Country{ID: id, Name: name, Code: code, Flag: flag, CreatedAt: now}, nil
}

func (s *SQLiteStore) ListCountries(ctx context.Context) ([]model.Country, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, code, flag, created_at FROM countries ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list countries")
	}
	defer rows.Close()

	var countries []model.Country
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.Flag, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan country")
		}
		countries = append(countries, c)
	}
	return countries, eris.Wrap(rows.Err(), "sqlite: list countries iterate")
}

func (s *SQLiteStore) GetCountry(ctx context.Context, id string) (*model.Country, error) {
	var c model.Country
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, code, flag, created_at FROM countries WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.Code, &c.Flag, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, eris.Wrapf(ErrNotFound, "country %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get country %s", id)
	}
	return &c, nil
}

func (s *SQLiteStore) DeleteCountry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM countries WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete country %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: delete country rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "country %s", id)
	}
	return nil
}

func (s *SQLiteStore) InsertSMEs(ctx context.Context, countryID string, candidates []model.Candidate) ([]model.SME, error) {
	now := time.Now().UTC()
	inserted := make([]model.SME, 0, len(candidates))

	for _, raw := range candidates {
		c := applyDefaults(raw)

		socialJSON, _ := json.Marshal(c.SocialMedia)
		followersJSON, _ := json.Marshal(c.Followers)
		productsJSON, _ := json.Marshal(c.Products)
		tagsJSON, _ := json.Marshal(c.Tags)
		languagesJSON, _ := json.Marshal(c.Languages)

		id := uuid.New().String()
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO smes (
				id, country_id, name, industry, product_type, description, location,
				founded_year, employee_count, monthly_revenue, price_range, social_media,
				followers, contact_email, owner_name, products, tags, languages,
				no_website_reason, opportunity_score, status, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, countryID, c.Name, c.Industry, c.ProductType, c.Description,
			c.Location, c.FoundedYear, c.EmployeeCount, c.MonthlyRevenue,
			c.PriceRange, string(socialJSON), string(followersJSON),
			c.ContactEmail, c.OwnerName, string(productsJSON), string(tagsJSON),
			string(languagesJSON), c.NoWebsiteReason, c.OpportunityScore,
			string(model.StatusDiscovered), now,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert sme %s", c.Name)
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

func (s *SQLiteStore) scanSMERow(scan func(dest ...any) error) (*model.SME, error) {
	var sme model.SME
	var socialJSON, followersJSON, productsJSON, tagsJSON, languagesJSON string
	var deployedURL sql.NullString

	err := scan(
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

	if deployedURL.Valid {
		sme.DeployedURL = deployedURL.String
	}
	for _, blob := range []struct {
		data string
		dst  any
	}{
		{socialJSON, &sme.SocialMedia},
		{followersJSON, &sme.Followers},
		{productsJSON, &sme.Products},
		{tagsJSON, &sme.Tags},
		{languagesJSON, &sme.Languages},
	} {
		if blob.data == "" {
			continue
		}
		if err := json.Unmarshal([]byte(blob.data), blob.dst); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal sme blob")
		}
	}
	return &sme, nil
}

func (s *SQLiteStore) ListSMEs(ctx context.Context, countryID string) ([]model.SME, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectSMEColumns+` FROM smes WHERE country_id = ? ORDER BY created_at, id`,
		countryID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list smes")
	}
	defer rows.Close()

	var smes []model.SME
	for rows.Next() {
		sme, err := s.scanSMERow(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sme")
		}
		smes = append(smes, *sme)
	}
	return smes, eris.Wrap(rows.Err(), "sqlite: list smes iterate")
}

func (s *SQLiteStore) GetSME(ctx context.Context, id string) (*model.SME, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectSMEColumns+` FROM smes WHERE id = ?`,
		id,
	)
	sme, err := s.scanSMERow(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, eris.Wrapf(ErrNotFound, "sme %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get sme %s", id)
	}
	return sme, nil
}

func (s *SQLiteStore) SetStatus(ctx context.Context, smeID string, status model.Status, deployedURL *string) error {
	var res sql.Result
	var err error
	if deployedURL != nil {
		res, err = s.db.ExecContext(ctx,
			`UPDATE smes SET status = ?, deployed_url = ? WHERE id = ?`,
			string(status), *deployedURL, smeID,
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE smes SET status = ? WHERE id = ?`,
			string(status), smeID,
		)
	}
	if err != nil {
		return eris.Wrapf(err, "sqlite: set status %s", smeID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: set status rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sme %s", smeID)
	}
	return nil
}

func (s *SQLiteStore) UpsertWebsite(ctx context.Context, smeID, html string) (*model.Website, error) {
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO websites (sme_id, html, built_at) VALUES (?, ?, ?)
		 ON CONFLICT (sme_id) DO UPDATE SET
		   html = excluded.html, built_at = excluded.built_at,
		   deployed_url = NULL, slug = NULL, deployed_at = NULL`,
		smeID, html, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert website %s", smeID)
	}
	return &model.Website{SMEID: smeID, HTML: html, BuiltAt: now}, nil
}

func (s *SQLiteStore) UpsertWebsiteDeployment(ctx context.Context, smeID, url, slug string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE websites SET deployed_url = ?, slug = ?, deployed_at = ? WHERE sme_id = ?`,
		url, slug, time.Now().UTC(), smeID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert website deployment %s", smeID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: website deployment rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "website for sme %s", smeID)
	}
	return nil
}

func (s *SQLiteStore) GetWebsite(ctx context.Context, smeID string) (*model.Website, error) {
	var w model.Website
	var deployedURL, slug sql.NullString
	var deployedAt sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT sme_id, html, deployed_url, slug, built_at, deployed_at FROM websites WHERE sme_id = ?`,
		smeID,
	).Scan(&w.SMEID, &w.HTML, &deployedURL, &slug, &w.BuiltAt, &deployedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, eris.Wrapf(ErrNotFound, "website for sme %s", smeID)
		}
		return nil, eris.Wrapf(err, "sqlite: get website %s", smeID)
	}

	if deployedURL.Valid {
		w.DeployedURL = deployedURL.String
	}
	if slug.Valid {
		w.Slug = slug.String
	}
	if deployedAt.Valid {
		t := deployedAt.Time
		w.DeployedAt = &t
	}
	return &w, nil
}

func (s *SQLiteStore) UpsertEmail(ctx context.Context, smeID, subject, body string) (*model.Email, error) {
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO emails (sme_id, subject, body, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (sme_id) DO UPDATE SET
		   subject = excluded.subject, body = excluded.body, created_at = excluded.created_at`,
		smeID, subject, body, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert email %s", smeID)
	}
	return &model.Email{SMEID: smeID, Subject: subject, Body: body, CreatedAt: now}, nil
}

func (s *SQLiteStore) GetEmail(ctx context.Context, smeID string) (*model.Email, error) {
	var e model.Email
	err := s.db.QueryRowContext(ctx,
		`SELECT sme_id, subject, body, created_at FROM emails WHERE sme_id = ?`,
		smeID,
	).Scan(&e.SMEID, &e.Subject, &e.Body, &e.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, eris.Wrapf(ErrNotFound, "email for sme %s", smeID)
		}
		return nil, eris.Wrapf(err, "sqlite: get email %s", smeID)
	}
	return &e, nil
}
