package report

import (
	"time"

	"github.com/google/uuid"
)

// Failure is a roll that could not be downloaded, parsed, or persisted.
type Failure struct {
	RollID        string `json:"roll_id"`
	Message       string `json:"message"`
	URL           string `json:"url,omitempty"`
	Destination   string `json:"destination,omitempty"`
	ContentLength int    `json:"content_length,omitempty"`
}

// MissingLegislator is a ballot whose LIS member id did not resolve.
type MissingLegislator struct {
	RollID     string `json:"roll_id"`
	LisID      string `json:"lis_id"`
	MemberFull string `json:"member_full"`
	Number     int    `json:"number"`
}

// MissingReference is a bill, amendment, or nomination id not found in the corpus.
type MissingReference struct {
	RollID string `json:"roll_id"`
	ID     string `json:"id"`
}

// Outcome accumulates everything a run observed. It is not safe for
// concurrent use; the durable runner builds one per roll and merges them.
type Outcome struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Congress  int       `json:"congress"`

	DownloadFailures    []Failure           `json:"download_failures,omitempty"`
	ParseFailures       []Failure           `json:"parse_failures,omitempty"`
	PersistenceFailures []Failure           `json:"persistence_failures,omitempty"`
	MissingLegislators  []MissingLegislator `json:"missing_legislators,omitempty"`
	MissingBills        []MissingReference  `json:"missing_bills,omitempty"`
	MissingAmendments   []MissingReference  `json:"missing_amendments,omitempty"`
	MissingNominations  []MissingReference  `json:"missing_nominations,omitempty"`
	DiscoveryNotes      []string            `json:"discovery_notes,omitempty"`

	NotPublished int `json:"not_published"`
	Synced       int `json:"synced"`
}

// NewOutcome starts an outcome with a fresh run id.
func NewOutcome(congress int, now time.Time) *Outcome {
	return &Outcome{
		RunID:     uuid.NewString(),
		StartedAt: now.UTC(),
		Congress:  congress,
	}
}

func (o *Outcome) AddDownloadFailure(f Failure)    { o.DownloadFailures = append(o.DownloadFailures, f) }
func (o *Outcome) AddParseFailure(f Failure)       { o.ParseFailures = append(o.ParseFailures, f) }
func (o *Outcome) AddPersistenceFailure(f Failure) { o.PersistenceFailures = append(o.PersistenceFailures, f) }
func (o *Outcome) AddDiscoveryNote(note string)    { o.DiscoveryNotes = append(o.DiscoveryNotes, note) }

func (o *Outcome) AddMissingLegislator(m MissingLegislator) {
	o.MissingLegislators = append(o.MissingLegislators, m)
}

func (o *Outcome) AddMissingBill(rollID, billID string) {
	o.MissingBills = append(o.MissingBills, MissingReference{RollID: rollID, ID: billID})
}

func (o *Outcome) AddMissingAmendment(rollID, amendmentID string) {
	o.MissingAmendments = append(o.MissingAmendments, MissingReference{RollID: rollID, ID: amendmentID})
}

func (o *Outcome) AddMissingNomination(rollID, nominationID string) {
	o.MissingNominations = append(o.MissingNominations, MissingReference{RollID: rollID, ID: nominationID})
}

func (o *Outcome) MarkNotPublished() { o.NotPublished++ }
func (o *Outcome) MarkSynced()       { o.Synced++ }

// Merge appends other's observations. Identity fields of o are kept.
func (o *Outcome) Merge(other *Outcome) {
	if other == nil {
		return
	}
	o.DownloadFailures = append(o.DownloadFailures, other.DownloadFailures...)
	o.ParseFailures = append(o.ParseFailures, other.ParseFailures...)
	o.PersistenceFailures = append(o.PersistenceFailures, other.PersistenceFailures...)
	o.MissingLegislators = append(o.MissingLegislators, other.MissingLegislators...)
	o.MissingBills = append(o.MissingBills, other.MissingBills...)
	o.MissingAmendments = append(o.MissingAmendments, other.MissingAmendments...)
	o.MissingNominations = append(o.MissingNominations, other.MissingNominations...)
	o.DiscoveryNotes = append(o.DiscoveryNotes, other.DiscoveryNotes...)
	o.NotPublished += other.NotPublished
	o.Synced += other.Synced
}
