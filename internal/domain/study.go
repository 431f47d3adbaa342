package domain

// RawStudy is one study record as delivered by the registry snapshot. The
// payload is shape-validated upstream; field values are still raw strings
// and get cleaned by the normalizers.
type RawStudy struct {
	ProtocolSection *ProtocolSection `json:"protocolSection"`
	HasResults      bool             `json:"hasResults"`
}

// ProtocolSection groups the registry modules this loader consumes.
type ProtocolSection struct {
	Identification       *IdentificationModule       `json:"identificationModule"`
	Status               *StatusModule               `json:"statusModule"`
	Design               *DesignModule               `json:"designModule"`
	Description          *DescriptionModule          `json:"descriptionModule"`
	Eligibility          *EligibilityModule          `json:"eligibilityModule"`
	Conditions           *ConditionsModule           `json:"conditionsModule"`
	ArmsInterventions    *ArmsInterventionsModule    `json:"armsInterventionsModule"`
	ContactsLocations    *ContactsLocationsModule    `json:"contactsLocationsModule"`
	SponsorCollaborators *SponsorCollaboratorsModule `json:"sponsorCollaboratorsModule"`
}

// IdentificationModule carries the study identity and titles.
type IdentificationModule struct {
	NCTID         string           `json:"nctId"`
	BriefTitle    string           `json:"briefTitle"`
	OfficialTitle string           `json:"officialTitle"`
	Organization  *RawOrganization `json:"organization"`
}

// RawOrganization names a sponsor or responsible organization.
type RawOrganization struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

// RawDateStruct wraps a registry date string.
type RawDateStruct struct {
	Date string `json:"date"`
	Type string `json:"type"`
}

// StatusModule carries recruitment status and the study date fields.
type StatusModule struct {
	OverallStatus        string         `json:"overallStatus"`
	StartDateStruct      *RawDateStruct `json:"startDateStruct"`
	CompletionDateStruct *RawDateStruct `json:"completionDateStruct"`
}

// DesignModule carries study type, phases and enrollment.
type DesignModule struct {
	StudyType      string             `json:"studyType"`
	Phases         []string           `json:"phases"`
	EnrollmentInfo *RawEnrollmentInfo `json:"enrollmentInfo"`
}

// RawEnrollmentInfo holds the declared participant count.
type RawEnrollmentInfo struct {
	Count *int   `json:"count"`
	Type  string `json:"type"`
}

// DescriptionModule carries the free-text study descriptions.
type DescriptionModule struct {
	BriefSummary        string `json:"briefSummary"`
	DetailedDescription string `json:"detailedDescription"`
}

// EligibilityModule carries enrollment criteria including raw age bounds.
type EligibilityModule struct {
	MinimumAge        string `json:"minimumAge"`
	MaximumAge        string `json:"maximumAge"`
	HealthyVolunteers bool   `json:"healthyVolunteers"`
	Sex               string `json:"sex"`
}

// ConditionsModule lists the studied conditions.
type ConditionsModule struct {
	Conditions []string `json:"conditions"`
}

// RawIntervention is one study arm intervention.
type RawIntervention struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ArmsInterventionsModule lists interventions.
type ArmsInterventionsModule struct {
	Interventions []RawIntervention `json:"interventions"`
}

// RawContact is a study contact with an unnormalized phone number.
type RawContact struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// RawLocation is one study site.
type RawLocation struct {
	Facility string       `json:"facility"`
	Status   string       `json:"status"`
	City     string       `json:"city"`
	State    string       `json:"state"`
	Country  string       `json:"country"`
	Contacts []RawContact `json:"contacts"`
}

// ContactsLocationsModule lists central contacts and study sites.
type ContactsLocationsModule struct {
	CentralContacts []RawContact  `json:"centralContacts"`
	Locations       []RawLocation `json:"locations"`
}

// SponsorCollaboratorsModule names the lead sponsor.
type SponsorCollaboratorsModule struct {
	LeadSponsor *RawOrganization `json:"leadSponsor"`
}
