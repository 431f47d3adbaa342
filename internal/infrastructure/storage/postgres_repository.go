package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"TrialsLoader/internal/domain"
	"TrialsLoader/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository is the persistence gateway: the primary-table write and
// the search-vector write for one trial always share a transaction.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.TrialStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Ping verifies the store is reachable before a run starts.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

// EnsureSchema creates both tables and their indexes if absent.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// GetExisting loads the bookkeeping view of a persisted trial, or nil when
// the key is absent.
func (r *PostgresRepository) GetExisting(ctx context.Context, nctID string) (*domain.StoredTrial, error) {
	query, args, err := psql.
		Select("nct_id", "content_hash", "COALESCE(last_seen_run_id, '')", "updated_at").
		From("clinical_trials").
		Where(sq.Eq{"nct_id": nctID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build existing query: %w", err)
	}

	var stored domain.StoredTrial
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&stored.NCTID, &stored.ContentHash, &stored.LastSeenRunID, &stored.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query existing %s: %w", nctID, err)
	}
	return &stored, nil
}

// UpsertTrial writes the denormalized row and its search vector in one
// transaction. The outcome distinguishes a fresh insert from a replacement
// of an existing row.
func (r *PostgresRepository) UpsertTrial(ctx context.Context, trial domain.CanonicalTrial, doc domain.SearchDocument, runID string) (domain.WriteOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := upsertPrimaryRow(ctx, tx, trial, runID)
	if err != nil {
		return "", err
	}

	if err := upsertSearchVector(ctx, tx, doc); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit %s: %w", trial.NCTID, err)
	}

	if inserted {
		return domain.OutcomeInserted, nil
	}
	return domain.OutcomeUpdated, nil
}

func upsertPrimaryRow(ctx context.Context, tx *sql.Tx, trial domain.CanonicalTrial, runID string) (bool, error) {
	errMap := trial.FieldErrors
	if errMap == nil {
		errMap = map[string]string{}
	}
	fieldErrors, err := json.Marshal(errMap)
	if err != nil {
		return false, fmt.Errorf("marshal field errors: %w", err)
	}
	interventions, err := marshalInterventions(trial.Interventions)
	if err != nil {
		return false, fmt.Errorf("marshal interventions: %w", err)
	}

	primary, _ := trial.PrimaryLocation()
	startDate, startPrecision := dateColumns(trial.StartDate)
	completionDate, completionPrecision := dateColumns(trial.CompletionDate)

	query, args, err := psql.
		Insert("clinical_trials").
		Columns(
			"nct_id", "brief_title", "official_title", "overall_status", "study_type", "phase",
			"start_date", "start_date_precision", "completion_date", "completion_date_precision",
			"enrollment_count", "lead_sponsor_name", "lead_sponsor_class", "healthy_volunteers",
			"min_age_years", "max_age_years", "conditions", "interventions",
			"primary_location_city", "primary_location_state", "primary_location_country",
			"contact_phones", "brief_summary", "detailed_description", "has_results",
			"field_errors", "content_hash", "last_seen_run_id",
		).
		Values(
			trial.NCTID, trial.BriefTitle, trial.OfficialTitle, trial.OverallStatus, trial.StudyType, trial.Phase,
			startDate, startPrecision, completionDate, completionPrecision,
			nullableInt(trial.EnrollmentCount), trial.LeadSponsorName, trial.LeadSponsorClass, trial.HealthyVolunteers,
			nullableInt(trial.MinAgeYears), nullableInt(trial.MaxAgeYears), textArray(trial.Conditions), interventions,
			primary.City, primary.State, primary.Country,
			textArray(trial.ContactPhones), trial.BriefSummary, trial.DetailedDescription, trial.HasResults,
			fieldErrors, trial.ContentHash(), runID,
		).
		Suffix(`ON CONFLICT (nct_id) DO UPDATE SET
			brief_title = EXCLUDED.brief_title,
			official_title = EXCLUDED.official_title,
			overall_status = EXCLUDED.overall_status,
			study_type = EXCLUDED.study_type,
			phase = EXCLUDED.phase,
			start_date = EXCLUDED.start_date,
			start_date_precision = EXCLUDED.start_date_precision,
			completion_date = EXCLUDED.completion_date,
			completion_date_precision = EXCLUDED.completion_date_precision,
			enrollment_count = EXCLUDED.enrollment_count,
			lead_sponsor_name = EXCLUDED.lead_sponsor_name,
			lead_sponsor_class = EXCLUDED.lead_sponsor_class,
			healthy_volunteers = EXCLUDED.healthy_volunteers,
			min_age_years = EXCLUDED.min_age_years,
			max_age_years = EXCLUDED.max_age_years,
			conditions = EXCLUDED.conditions,
			interventions = EXCLUDED.interventions,
			primary_location_city = EXCLUDED.primary_location_city,
			primary_location_state = EXCLUDED.primary_location_state,
			primary_location_country = EXCLUDED.primary_location_country,
			contact_phones = EXCLUDED.contact_phones,
			brief_summary = EXCLUDED.brief_summary,
			detailed_description = EXCLUDED.detailed_description,
			has_results = EXCLUDED.has_results,
			field_errors = EXCLUDED.field_errors,
			content_hash = EXCLUDED.content_hash,
			last_seen_run_id = EXCLUDED.last_seen_run_id,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted`).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build trial upsert: %w", err)
	}

	var inserted bool
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&inserted); err != nil {
		return false, fmt.Errorf("upsert trial %s: %w", trial.NCTID, err)
	}
	return inserted, nil
}

func upsertSearchVector(ctx context.Context, tx *sql.Tx, doc domain.SearchDocument) error {
	vectorSQL, vectorArgs, err := documentExpr(doc.Sections)
	if err != nil {
		return err
	}

	query, args, err := psql.
		Insert("search_vectors").
		Columns(
			"nct_id", "document", "all_conditions", "all_interventions",
			"all_locations", "all_sponsors", "all_descriptions",
			"term_count", "vector_version",
		).
		Values(
			doc.NCTID, sq.Expr(vectorSQL, vectorArgs...), doc.AllConditions, doc.AllInterventions,
			doc.AllLocations, doc.AllSponsors, doc.AllDescriptions,
			doc.TermCount, doc.VectorVersion,
		).
		Suffix(`ON CONFLICT (nct_id) DO UPDATE SET
			document = EXCLUDED.document,
			all_conditions = EXCLUDED.all_conditions,
			all_interventions = EXCLUDED.all_interventions,
			all_locations = EXCLUDED.all_locations,
			all_sponsors = EXCLUDED.all_sponsors,
			all_descriptions = EXCLUDED.all_descriptions,
			term_count = EXCLUDED.term_count,
			vector_version = EXCLUDED.vector_version,
			last_updated = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build vector upsert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert search vector %s: %w", doc.NCTID, err)
	}
	return nil
}

// documentExpr builds the weighted tsvector expression, one setweight term
// per non-empty section. Weight labels come from the projector and must be
// valid tsvector weights since they are spliced into the SQL text.
func documentExpr(sections []domain.SearchSection) (string, []interface{}, error) {
	if len(sections) == 0 {
		return "''::tsvector", nil, nil
	}

	terms := make([]string, 0, len(sections))
	args := make([]interface{}, 0, len(sections))
	for _, s := range sections {
		switch s.Weight {
		case "A", "B", "C", "D":
		default:
			return "", nil, fmt.Errorf("invalid tsvector weight %q", s.Weight)
		}
		terms = append(terms, fmt.Sprintf("setweight(to_tsvector('english', ?), '%s')", s.Weight))
		args = append(args, s.Text)
	}
	return strings.Join(terms, " || "), args, nil
}

type interventionRow struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func marshalInterventions(list []domain.Intervention) ([]byte, error) {
	rows := make([]interventionRow, 0, len(list))
	for _, iv := range list {
		rows = append(rows, interventionRow{Type: iv.Type, Name: iv.Name, Description: iv.Description})
	}
	return json.Marshal(rows)
}

// textArray coerces a nil slice to an empty array. A record with no
// conditions or no resolvable phones still persists; its array columns are
// NOT NULL and must receive '{}', not SQL NULL.
func textArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}

func dateColumns(d *domain.DateValue) (interface{}, interface{}) {
	if d == nil {
		return nil, nil
	}
	return d.Time(), string(d.Precision)
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
