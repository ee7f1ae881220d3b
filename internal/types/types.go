// Package types provides the domain record types shared across the
// careerflow system: experiences, tracked jobs, chat messages, and the
// structured shapes produced by the generation gateway.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EndDatePresent is the sentinel end date for an ongoing role.
const EndDatePresent = "Present"

// ApplicationStatus is the tracking state of a job application.
// Any value may be set directly; there is no enforced transition order.
type ApplicationStatus string

// Application status values, in the order they appear on the tracker board.
const (
	StatusBookmarked   ApplicationStatus = "Bookmarked"
	StatusApplying     ApplicationStatus = "Applying"
	StatusApplied      ApplicationStatus = "Applied"
	StatusInterviewing ApplicationStatus = "Interviewing"
	StatusNegotiating  ApplicationStatus = "Negotiating"
	StatusAccepted     ApplicationStatus = "Accepted"
	StatusRejected     ApplicationStatus = "Rejected"
)

// AllStatuses lists every valid application status.
func AllStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		StatusBookmarked,
		StatusApplying,
		StatusApplied,
		StatusInterviewing,
		StatusNegotiating,
		StatusAccepted,
		StatusRejected,
	}
}

// Valid reports whether s is one of the known status values.
func (s ApplicationStatus) Valid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// StructuredData is the normalized shape produced by job-description analysis.
type StructuredData struct {
	Skills          []string `json:"skills"`
	TangibleSkills  []string `json:"tangibleSkills,omitempty"`
	Competencies    []string `json:"competencies"`
	Qualifications  []string `json:"qualifications,omitempty"`
	Tools           []string `json:"tools"`
	ExperienceLevel string   `json:"experienceLevel"`
	Seniority       string   `json:"seniority"`
	SummaryBullets  []string `json:"summaryBullets,omitempty"`
	Industry        string   `json:"industry,omitempty"`
	JobType         string   `json:"jobType,omitempty"`
}

// Experience is one professional role in the user's career vault.
type Experience struct {
	ID             string `json:"id" validate:"required"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	RawDescription string `json:"rawDescription"`

	// AI-derived fields
	Industry     string   `json:"industry,omitempty"`
	Sector       string   `json:"sector,omitempty"`
	Products     []string `json:"products,omitempty"`
	AboutCompany string   `json:"aboutCompany,omitempty"`
	StarBullets  []string `json:"starBullets,omitempty"`
	HardSkills   []string `json:"hardSkills,omitempty"`
	SoftSkills   []string `json:"softSkills,omitempty"`

	// Legacy fields kept for documents written by earlier versions.
	// Not authoritative.
	ProfessionalBullets     []string        `json:"professionalBullets,omitempty"`
	ProfessionalDescription string          `json:"professionalDescription,omitempty"`
	StructuredData          *StructuredData `json:"structuredData,omitempty"`
}

// RecordID implements collection.Record.
func (e Experience) RecordID() string { return e.ID }

// Ongoing reports whether the role has no end date yet.
func (e Experience) Ongoing() bool { return e.EndDate == EndDatePresent }

// ExperienceDraft is a partially-filled experience as returned by the
// generation gateway (career-history parsing and enrichment). It carries no
// id; the caller assigns one when folding the draft into the collection.
type ExperienceDraft struct {
	Title          string   `json:"title,omitempty"`
	Company        string   `json:"company,omitempty"`
	StartDate      string   `json:"startDate,omitempty"`
	EndDate        string   `json:"endDate,omitempty"`
	RawDescription string   `json:"rawDescription,omitempty"`
	Industry       string   `json:"industry,omitempty"`
	Sector         string   `json:"sector,omitempty"`
	Products       []string `json:"products,omitempty"`
	AboutCompany   string   `json:"aboutCompany,omitempty"`
	StarBullets    []string `json:"starBullets,omitempty"`
	HardSkills     []string `json:"hardSkills,omitempty"`
	SoftSkills     []string `json:"softSkills,omitempty"`
}

// IsZero reports whether the draft carries no extracted content.
func (d ExperienceDraft) IsZero() bool {
	return d.Title == "" && d.Company == "" && d.RawDescription == "" &&
		d.Industry == "" && d.Sector == "" && d.AboutCompany == "" &&
		len(d.Products) == 0 && len(d.StarBullets) == 0 &&
		len(d.HardSkills) == 0 && len(d.SoftSkills) == 0
}

// Apply copies the draft's non-empty fields onto an experience.
func (d ExperienceDraft) Apply(e *Experience) {
	if d.Industry != "" {
		e.Industry = d.Industry
	}
	if d.Sector != "" {
		e.Sector = d.Sector
	}
	if len(d.Products) > 0 {
		e.Products = d.Products
	}
	if d.AboutCompany != "" {
		e.AboutCompany = d.AboutCompany
	}
	if len(d.StarBullets) > 0 {
		e.StarBullets = d.StarBullets
	}
	if len(d.HardSkills) > 0 {
		e.HardSkills = d.HardSkills
	}
	if len(d.SoftSkills) > 0 {
		e.SoftSkills = d.SoftSkills
	}
}

// FitAnalysisResult scores a candidate profile against one job description.
// All fields come from a single generation call; it is never produced
// partially.
type FitAnalysisResult struct {
	Score              float64  `json:"score"`
	GapAnalysis        []string `json:"gapAnalysis"`
	Strengths          []string `json:"strengths"`
	Summary            string   `json:"summary"`
	RecommendedActions []string `json:"recommendedActions,omitempty"`
}

// Job is one tracked application.
type Job struct {
	ID             string             `json:"id" validate:"required"`
	Title          string             `json:"title"`
	Company        string             `json:"company"`
	URL            string             `json:"url,omitempty"`
	Description    string             `json:"description"`
	Status         ApplicationStatus  `json:"status"`
	StructuredData *StructuredData    `json:"structuredData,omitempty"`
	FitAnalysis    *FitAnalysisResult `json:"fitAnalysis,omitempty"`
	TailoredResume string             `json:"tailoredResume,omitempty"`
	TailoredCover  string             `json:"tailoredCoverLetter,omitempty"`
	CreatedAt      int64              `json:"createdAt"`
	Industry       string             `json:"industry,omitempty"`
	JobType        string             `json:"jobType,omitempty"`
}

// RecordID implements collection.Record.
func (j Job) RecordID() string { return j.ID }

// ChatRole identifies the author of a chat turn.
type ChatRole string

// Chat roles.
const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// Message is one chat turn. Ordering is insertion order within the
// collection.
type Message struct {
	ID        string   `json:"id" validate:"required"`
	Role      ChatRole `json:"role"`
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp"`
}

// RecordID implements collection.Record.
func (m Message) RecordID() string { return m.ID }

// ATSReport is the result of applicant-tracking-system compatibility
// analysis of a generated resume.
type ATSReport struct {
	Score       float64  `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// FailedATSReport is the degraded report returned when analysis fails.
func FailedATSReport() ATSReport {
	return ATSReport{Score: 0, Issues: []string{"Analysis failed"}, Suggestions: []string{}}
}

var (
	idMu     sync.Mutex
	lastID   string
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// NewID returns a fresh record id. Ids are millisecond-timestamp strings,
// matching documents written by earlier versions. Ids are assigned once at
// creation and never reassigned; two creations within the same millisecond
// would collide on the remote primary key, so the collision case falls back
// to a UUID.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()

	id := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if id == lastID {
		return uuid.NewString()
	}
	lastID = id
	return id
}

// Validate checks a record decoded at a storage boundary. Records failing
// validation are skipped by the loader rather than propagated.
func Validate(rec any) error {
	return validate.Struct(rec)
}
