package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/internal/leads/query"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation = "23505"

	constraintEmail      = "leads_email_lower_key"
	constraintExternalID = "leads_external_id_key"
)

const leadColumns = `id, external_id, name, email, phone, company, job_title, score, priority, status, source,
	estimated_value, conversion_probability, marketing_consent, has_responded, interaction_count, last_contact_date,
	notes, tags, source_data, capture_ip, capture_user_agent, created_at, updated_at, deleted_at, is_active`

// Repository is the PostgreSQL lead store.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead                     domain.Lead
		priority, status, source string
	)
	err := row.Scan(
		&lead.ID, &lead.ExternalID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company, &lead.JobTitle,
		&lead.Score, &priority, &status, &source,
		&lead.EstimatedValue, &lead.ConversionProbability, &lead.MarketingConsent, &lead.HasResponded,
		&lead.InteractionCount, &lead.LastContactDate,
		&lead.Notes, &lead.Tags, &lead.SourceData, &lead.CaptureIP, &lead.CaptureUserAgent,
		&lead.CreatedAt, &lead.UpdatedAt, &lead.DeletedAt, &lead.IsActive,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Priority = domain.Priority(priority)
	lead.Status = domain.Status(status)
	lead.Source = domain.Source(source)
	return lead, nil
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

// mapWriteError turns unique violations into the named duplicate errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case constraintEmail:
			return ErrDuplicateEmail
		case constraintExternalID:
			return ErrDuplicateExternalID
		}
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			external_id, name, email, phone, company, job_title, score, priority, status, source,
			estimated_value, conversion_probability, marketing_consent, has_responded, interaction_count, last_contact_date,
			notes, tags, source_data, capture_ip, capture_user_agent, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING `+leadColumns,
		lead.ExternalID, lead.Name, lead.Email, lead.Phone, lead.Company, lead.JobTitle,
		lead.Score, string(lead.Priority), string(lead.Status), string(lead.Source),
		lead.EstimatedValue, lead.ConversionProbability, lead.MarketingConsent, lead.HasResponded, lead.InteractionCount, lead.LastContactDate,
		lead.Notes, lead.Tags, lead.SourceData, lead.CaptureIP, lead.CaptureUserAgent, lead.CreatedAt, lead.UpdatedAt,
	)

	created, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, mapWriteError(err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64, includeInactive bool) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id = $1 AND ($2 OR deleted_at IS NULL)
	`, id, includeInactive)

	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, notFound(err)
	}
	return lead, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE lower(email) = lower($1)
	`, email)

	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, notFound(err)
	}
	return lead, nil
}

func (r *Repository) GetByExternalID(ctx context.Context, externalID string) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE external_id = $1
	`, externalID)

	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, notFound(err)
	}
	return lead, nil
}

func (r *Repository) Update(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			external_id = $2, name = $3, email = $4, phone = $5, company = $6, job_title = $7,
			score = $8, priority = $9, status = $10, source = $11,
			estimated_value = $12, conversion_probability = $13, marketing_consent = $14, has_responded = $15,
			interaction_count = $16, last_contact_date = $17,
			notes = $18, tags = $19, source_data = $20, updated_at = $21
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		lead.ID, lead.ExternalID, lead.Name, lead.Email, lead.Phone, lead.Company, lead.JobTitle,
		lead.Score, string(lead.Priority), string(lead.Status), string(lead.Source),
		lead.EstimatedValue, lead.ConversionProbability, lead.MarketingConsent, lead.HasResponded,
		lead.InteractionCount, lead.LastContactDate,
		lead.Notes, lead.Tags, lead.SourceData, lead.UpdatedAt,
	)

	updated, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, notFound(mapWriteError(err))
	}
	return updated, nil
}

func (r *Repository) UpdateScore(ctx context.Context, id int64, score int, priority domain.Priority, at time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET score = $2, priority = $3, updated_at = $4 WHERE id = $1
	`, id, score, string(priority), at)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SoftDelete(ctx context.Context, id int64, at time.Time) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+leadColumns, id, at)

	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, notFound(err)
	}
	return lead, nil
}

func (r *Repository) Restore(ctx context.Context, id int64, at time.Time) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET deleted_at = NULL, updated_at = $2
		WHERE id = $1 AND deleted_at IS NOT NULL
		RETURNING `+leadColumns, id, at)

	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, notFound(err)
	}
	return lead, nil
}

func (r *Repository) ListAll(ctx context.Context, includeInactive bool) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE $1 OR deleted_at IS NULL
		ORDER BY id ASC
	`, includeInactive)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func (r *Repository) ListBatch(ctx context.Context, afterID int64, limit int, includeInactive bool) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id > $1 AND ($3 OR deleted_at IS NULL)
		ORDER BY id ASC
		LIMIT $2
	`, afterID, limit, includeInactive)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// List runs the filter, sort and page in SQL. spec must already be normalized.
func (r *Repository) List(ctx context.Context, spec query.Spec) ([]domain.Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(spec.Criteria)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads l WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortExpr := mapLeadSortColumn(spec.SortBy)
	sortOrder := "DESC"
	if spec.Direction == query.Ascending {
		sortOrder = "ASC"
	}

	args = append(args, spec.PageSize, spec.Offset())
	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		WHERE %s
		ORDER BY %s %s, l.id ASC
		LIMIT $%d OFFSET $%d
	`, prefixedLeadColumns, whereClause, sortExpr, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *Repository) AddActivity(ctx context.Context, leadID int64, action string, meta map[string]interface{}) error {
	metaJSON := []byte("{}")
	if meta != nil {
		encoded, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		metaJSON = encoded
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_activity (lead_id, action, meta)
		VALUES ($1, $2, $3)
	`, leadID, action, metaJSON)
	return err
}

func (r *Repository) ListActivity(ctx context.Context, leadID int64, limit int) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, action, meta, created_at
		FROM lead_activity
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		var (
			item    Activity
			rawMeta []byte
		)
		if err := rows.Scan(&item.ID, &item.LeadID, &item.Action, &rawMeta, &item.CreatedAt); err != nil {
			return nil, err
		}
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &item.Meta); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

var _ Store = (*Repository)(nil)
