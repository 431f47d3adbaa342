package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DatePrecision tags how much of a calendar date the source actually gave us.
type DatePrecision string

const (
	PrecisionDay   DatePrecision = "day"
	PrecisionMonth DatePrecision = "month"
)

// Field error reason codes recorded when a normalizer rejects a value.
const (
	CodeAgeUnparseable    = "AGE_UNPARSEABLE"
	CodeDateInvalid       = "DATE_INVALID"
	CodePhoneUnresolvable = "PHONE_UNRESOLVABLE"
	CodeEnrollmentInvalid = "ENROLLMENT_INVALID"
)

// DateValue is a normalized calendar date; Day is zero for month precision.
type DateValue struct {
	Year      int
	Month     time.Month
	Day       int
	Precision DatePrecision
}

// Time returns the value as a UTC time, anchored to the first of the month
// when only month precision is known.
func (d DateValue) Time() time.Time {
	day := d.Day
	if d.Precision == PrecisionMonth {
		day = 1
	}
	return time.Date(d.Year, d.Month, day, 0, 0, 0, 0, time.UTC)
}

// String renders the value in its source precision.
func (d DateValue) String() string {
	if d.Precision == PrecisionMonth {
		return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Intervention is a normalized study intervention.
type Intervention struct {
	Type        string
	Name        string
	Description string
}

// TrialLocation is a normalized study site; the first one is primary.
type TrialLocation struct {
	Facility string
	City     string
	State    string
	Country  string
}

// CanonicalTrial is a study record after field normalization. Fields that
// failed normalization are left at their zero value and listed in
// FieldErrors; the record as a whole still persists.
type CanonicalTrial struct {
	NCTID               string
	BriefTitle          string
	OfficialTitle       string
	OverallStatus       string
	StudyType           string
	Phase               string
	StartDate           *DateValue
	CompletionDate      *DateValue
	EnrollmentCount     *int
	LeadSponsorName     string
	LeadSponsorClass    string
	HealthyVolunteers   bool
	MinAgeYears         *int
	MaxAgeYears         *int
	Conditions          []string
	Interventions       []Intervention
	Locations           []TrialLocation
	ContactPhones       []string
	BriefSummary        string
	DetailedDescription string
	HasResults          bool
	FieldErrors         map[string]string
}

// PrimaryLocation returns the primary site, if any.
func (t CanonicalTrial) PrimaryLocation() (TrialLocation, bool) {
	if len(t.Locations) == 0 {
		return TrialLocation{}, false
	}
	return t.Locations[0], true
}

// ContentHash digests every denormalized column in a stable order. Two
// records with equal hashes produce byte-identical rows, which is what the
// reconciler keys its no-op decision on. Bookkeeping columns are excluded.
func (t CanonicalTrial) ContentHash() string {
	h := sha256.New()

	write := func(parts ...string) {
		for _, p := range parts {
			h.Write([]byte(p))
			h.Write([]byte{0})
		}
	}

	write(t.NCTID, t.BriefTitle, t.OfficialTitle, t.OverallStatus, t.StudyType, t.Phase)
	write(dateKey(t.StartDate), dateKey(t.CompletionDate))
	write(intKey(t.EnrollmentCount), intKey(t.MinAgeYears), intKey(t.MaxAgeYears))
	write(t.LeadSponsorName, t.LeadSponsorClass)
	write(boolKey(t.HealthyVolunteers), boolKey(t.HasResults))
	write(t.Conditions...)
	for _, iv := range t.Interventions {
		write(iv.Type, iv.Name, iv.Description)
	}
	for _, loc := range t.Locations {
		write(loc.Facility, loc.City, loc.State, loc.Country)
	}
	write(t.ContactPhones...)
	write(t.BriefSummary, t.DetailedDescription)

	codes := make([]string, 0, len(t.FieldErrors))
	for field, code := range t.FieldErrors {
		codes = append(codes, field+"="+code)
	}
	sort.Strings(codes)
	write(codes...)

	return hex.EncodeToString(h.Sum(nil))
}

func dateKey(d *DateValue) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func intKey(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func boolKey(v bool) string {
	if v {
		return "t"
	}
	return "f"
}

// StoredTrial is the bookkeeping view of a persisted row, enough for the
// reconciler to decide insert/update/no-op without reloading every column.
type StoredTrial struct {
	NCTID         string
	ContentHash   string
	LastSeenRunID string
	UpdatedAt     time.Time
}

// WriteOutcome reports what the persistence gateway did for one record.
type WriteOutcome string

const (
	OutcomeInserted WriteOutcome = "inserted"
	OutcomeUpdated  WriteOutcome = "updated"
	OutcomeNoop     WriteOutcome = "noop"
)

// SearchSection is one weighted slice of a search document. Weight is a
// Postgres tsvector weight label (A strongest, D weakest).
type SearchSection struct {
	Weight string
	Text   string
}

// SearchDocument is the derived full-text representation for one trial,
// written only alongside its primary row and never independently.
type SearchDocument struct {
	NCTID            string
	Sections         []SearchSection
	AllConditions    string
	AllInterventions string
	AllLocations     string
	AllSponsors      string
	AllDescriptions  string
	TermCount        int
	VectorVersion    int
}

// RunSummary is the per-run report handed to the scheduler/observability
// layer. Rejected and field errors are data-quality signals; Failed counts
// records whose writes kept failing after retries.
type RunSummary struct {
	RunID       string
	Total       int
	Inserted    int
	Updated     int
	Noops       int
	Rejected    int
	Failed      int
	FieldErrors map[string]int
	RejectedIDs []string
	FailedIDs   []string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// AddFieldErrors folds one record's error codes into the run totals.
func (s *RunSummary) AddFieldErrors(errs map[string]string) {
	if len(errs) == 0 {
		return
	}
	if s.FieldErrors == nil {
		s.FieldErrors = map[string]int{}
	}
	for _, code := range errs {
		s.FieldErrors[code]++
	}
}

// String renders a single-line digest for logs and notifications.
func (s RunSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d records, %d inserted, %d updated, %d unchanged, %d rejected, %d failed",
		s.RunID, s.Total, s.Inserted, s.Updated, s.Noops, s.Rejected, s.Failed)
	if len(s.FieldErrors) > 0 {
		codes := make([]string, 0, len(s.FieldErrors))
		for code, n := range s.FieldErrors {
			codes = append(codes, fmt.Sprintf("%s=%d", code, n))
		}
		sort.Strings(codes)
		fmt.Fprintf(&b, ", field errors: %s", strings.Join(codes, " "))
	}
	return b.String()
}
