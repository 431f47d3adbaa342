package storage

// Write-side layout: one denormalized row per trial plus a 1:1 derived
// full-text table. The GIN index carries query-time search; the primary
// table favors faceted reads over normal form.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS clinical_trials (
    nct_id                    TEXT PRIMARY KEY,
    brief_title               TEXT,
    official_title            TEXT,
    overall_status            TEXT,
    study_type                TEXT,
    phase                     TEXT,
    start_date                DATE,
    start_date_precision      TEXT,
    completion_date           DATE,
    completion_date_precision TEXT,
    enrollment_count          INTEGER,
    lead_sponsor_name         TEXT,
    lead_sponsor_class        TEXT,
    healthy_volunteers        BOOLEAN NOT NULL DEFAULT FALSE,
    min_age_years             INTEGER,
    max_age_years             INTEGER,
    conditions                TEXT[] NOT NULL DEFAULT '{}',
    interventions             JSONB NOT NULL DEFAULT '[]',
    primary_location_city     TEXT,
    primary_location_state    TEXT,
    primary_location_country  TEXT,
    contact_phones            TEXT[] NOT NULL DEFAULT '{}',
    brief_summary             TEXT,
    detailed_description      TEXT,
    has_results               BOOLEAN NOT NULL DEFAULT FALSE,
    field_errors              JSONB NOT NULL DEFAULT '{}',
    content_hash              TEXT NOT NULL,
    last_seen_run_id          TEXT,
    created_at                TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at                TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_clinical_trials_status ON clinical_trials (overall_status);
CREATE INDEX IF NOT EXISTS idx_clinical_trials_sponsor ON clinical_trials (lead_sponsor_name);

CREATE TABLE IF NOT EXISTS search_vectors (
    nct_id            TEXT PRIMARY KEY REFERENCES clinical_trials (nct_id) ON DELETE CASCADE,
    document          TSVECTOR,
    all_conditions    TEXT,
    all_interventions TEXT,
    all_locations     TEXT,
    all_sponsors      TEXT,
    all_descriptions  TEXT,
    term_count        INTEGER NOT NULL DEFAULT 0,
    vector_version    INTEGER NOT NULL DEFAULT 1,
    last_updated      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_search_vectors_document ON search_vectors USING GIN (document);
`
