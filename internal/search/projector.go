// Package search derives the full-text representation of a trial. The
// projector only runs for records the reconciler actually inserted or
// updated, so untouched rows never pay for a vector rebuild.
package search

import (
	"strings"

	"TrialsLoader/internal/domain"
)

// vectorVersion is bumped whenever the document composition changes, so a
// backfill can find stale vectors.
const vectorVersion = 1

// Section weights, strongest to weakest: titles dominate, clinical facets
// follow, long descriptions trail.
const (
	weightTitle        = "A"
	weightCondition    = "B"
	weightIntervention = "B"
	weightSponsor      = "C"
	weightLocation     = "C"
	weightDescription  = "D"
)

// Projector builds search documents from canonical trials.
type Projector struct{}

// NewProjector returns a projector for the current vector version.
func NewProjector() *Projector {
	return &Projector{}
}

// Project concatenates the indexable fields into weighted sections plus the
// denormalized convenience texts the search UI reads back directly.
func (p *Projector) Project(trial domain.CanonicalTrial) domain.SearchDocument {
	titleText := joinNonEmpty(" ", trial.BriefTitle, trial.OfficialTitle)
	conditionText := strings.Join(trial.Conditions, ", ")

	names := make([]string, 0, len(trial.Interventions))
	for _, iv := range trial.Interventions {
		if iv.Name != "" {
			names = append(names, iv.Name)
		}
	}
	interventionText := strings.Join(names, ", ")

	cities := make([]string, 0, len(trial.Locations))
	for _, loc := range trial.Locations {
		if loc.City != "" {
			cities = append(cities, loc.City)
		}
	}
	locationText := strings.Join(cities, ", ")

	sponsorText := trial.LeadSponsorName
	descriptionText := joinNonEmpty(" ", trial.BriefSummary, trial.DetailedDescription)

	doc := domain.SearchDocument{
		NCTID:            trial.NCTID,
		AllConditions:    conditionText,
		AllInterventions: interventionText,
		AllLocations:     locationText,
		AllSponsors:      sponsorText,
		AllDescriptions:  descriptionText,
		VectorVersion:    vectorVersion,
	}

	for _, s := range []domain.SearchSection{
		{Weight: weightTitle, Text: titleText},
		{Weight: weightCondition, Text: conditionText},
		{Weight: weightIntervention, Text: interventionText},
		{Weight: weightSponsor, Text: sponsorText},
		{Weight: weightLocation, Text: locationText},
		{Weight: weightDescription, Text: descriptionText},
	} {
		if s.Text == "" {
			continue
		}
		doc.Sections = append(doc.Sections, s)
	}

	for _, text := range []string{conditionText, interventionText, locationText, sponsorText, descriptionText} {
		if text != "" {
			doc.TermCount++
		}
	}

	return doc
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
