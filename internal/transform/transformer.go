// Package transform maps one raw registry study onto the canonical trial
// record by running every field normalizer and collecting their rejections.
package transform

import (
	"errors"
	"sort"
	"strings"

	"TrialsLoader/internal/domain"
	"TrialsLoader/internal/normalize"
)

// ErrMissingNCTID marks a study without an identity key. Such a record can
// never be upserted and must be surfaced as rejected, not silently dropped.
var ErrMissingNCTID = errors.New("study has no nct id")

// Transformer converts raw studies into canonical trial records. It performs
// no I/O; a record with bad field values still comes back as a value, with
// the failures listed in FieldErrors.
type Transformer struct {
	textLimit int
}

// New builds a transformer; textLimit <= 0 falls back to the package default.
func New(textLimit int) *Transformer {
	if textLimit <= 0 {
		textLimit = normalize.DefaultTextLimit
	}
	return &Transformer{textLimit: textLimit}
}

// Transform normalizes one study. The only error it returns is
// ErrMissingNCTID; every other problem is recorded per field.
func (t *Transformer) Transform(raw domain.RawStudy) (domain.CanonicalTrial, error) {
	p := raw.ProtocolSection
	if p == nil || p.Identification == nil || strings.TrimSpace(p.Identification.NCTID) == "" {
		return domain.CanonicalTrial{}, ErrMissingNCTID
	}

	trial := domain.CanonicalTrial{
		NCTID:       strings.TrimSpace(p.Identification.NCTID),
		HasResults:  raw.HasResults,
		FieldErrors: map[string]string{},
	}

	trial.BriefTitle = normalize.Text(p.Identification.BriefTitle, t.textLimit)
	trial.OfficialTitle = normalize.Text(p.Identification.OfficialTitle, t.textLimit)

	if p.Status != nil {
		trial.OverallStatus = strings.TrimSpace(p.Status.OverallStatus)
		if p.Status.StartDateStruct != nil {
			trial.StartDate = t.date(&trial, "startDate", p.Status.StartDateStruct.Date)
		}
		if p.Status.CompletionDateStruct != nil {
			trial.CompletionDate = t.date(&trial, "completionDate", p.Status.CompletionDateStruct.Date)
		}
	}

	if p.Design != nil {
		trial.StudyType = strings.TrimSpace(p.Design.StudyType)
		trial.Phase = strings.Join(p.Design.Phases, ", ")
		if p.Design.EnrollmentInfo != nil && p.Design.EnrollmentInfo.Count != nil {
			count := *p.Design.EnrollmentInfo.Count
			if count < 0 {
				trial.FieldErrors["enrollmentCount"] = domain.CodeEnrollmentInvalid
			} else {
				trial.EnrollmentCount = &count
			}
		}
	}

	if p.Description != nil {
		trial.BriefSummary = normalize.Text(p.Description.BriefSummary, t.textLimit)
		trial.DetailedDescription = normalize.Text(p.Description.DetailedDescription, t.textLimit)
	}

	if p.Eligibility != nil {
		trial.HealthyVolunteers = p.Eligibility.HealthyVolunteers
		trial.MinAgeYears = t.age(&trial, "minimumAge", p.Eligibility.MinimumAge)
		trial.MaxAgeYears = t.age(&trial, "maximumAge", p.Eligibility.MaximumAge)
	}

	if p.Conditions != nil {
		for _, c := range p.Conditions.Conditions {
			if c = strings.TrimSpace(c); c != "" {
				trial.Conditions = append(trial.Conditions, c)
			}
		}
	}

	if p.ArmsInterventions != nil {
		for _, iv := range p.ArmsInterventions.Interventions {
			// Interventions without both a type and a name carry no signal.
			if strings.TrimSpace(iv.Type) == "" || strings.TrimSpace(iv.Name) == "" {
				continue
			}
			trial.Interventions = append(trial.Interventions, domain.Intervention{
				Type:        strings.TrimSpace(iv.Type),
				Name:        strings.TrimSpace(iv.Name),
				Description: normalize.Text(iv.Description, t.textLimit),
			})
		}
	}

	if p.ContactsLocations != nil {
		for _, loc := range p.ContactsLocations.Locations {
			trial.Locations = append(trial.Locations, domain.TrialLocation{
				Facility: strings.TrimSpace(loc.Facility),
				City:     strings.TrimSpace(loc.City),
				State:    strings.TrimSpace(loc.State),
				Country:  strings.TrimSpace(loc.Country),
			})
		}
		trial.ContactPhones = t.phones(&trial, p.ContactsLocations)
	}

	if p.SponsorCollaborators != nil && p.SponsorCollaborators.LeadSponsor != nil {
		trial.LeadSponsorName = strings.TrimSpace(p.SponsorCollaborators.LeadSponsor.Name)
		trial.LeadSponsorClass = strings.TrimSpace(p.SponsorCollaborators.LeadSponsor.Class)
	}

	return trial, nil
}

func (t *Transformer) age(trial *domain.CanonicalTrial, field, raw string) *int {
	years, code := normalize.Age(raw)
	if code != "" {
		trial.FieldErrors[field] = code
	}
	return years
}

func (t *Transformer) date(trial *domain.CanonicalTrial, field, raw string) *domain.DateValue {
	value, code := normalize.Date(raw)
	if code != "" {
		trial.FieldErrors[field] = code
	}
	return value
}

// phones normalizes every contact number from central contacts and site
// contacts into a deduplicated, sorted E.164 set. Unresolvable numbers are
// dropped and flagged once under the contactPhones field.
func (t *Transformer) phones(trial *domain.CanonicalTrial, m *domain.ContactsLocationsModule) []string {
	seen := map[string]struct{}{}
	var result []string
	dropped := false

	add := func(raw string) {
		number, code := normalize.Phone(raw)
		if code != "" {
			dropped = true
			return
		}
		if number == "" {
			return
		}
		if _, ok := seen[number]; ok {
			return
		}
		seen[number] = struct{}{}
		result = append(result, number)
	}

	for _, c := range m.CentralContacts {
		add(c.Phone)
	}
	for _, loc := range m.Locations {
		for _, c := range loc.Contacts {
			add(c.Phone)
		}
	}

	if dropped {
		trial.FieldErrors["contactPhones"] = domain.CodePhoneUnresolvable
	}

	sort.Strings(result)
	return result
}
