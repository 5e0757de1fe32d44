package votes

import (
	"time"
)

const VotesTableName = "votes"

// Canonical vote types produced by the classifier.
const (
	TypePassage    = "passage"
	TypeCloture    = "cloture"
	TypeNomination = "nomination"
	TypeAmendment  = "amendment"
	TypeProcedural = "procedural"
	TypeOther      = "other"
)

// VoteColumns defines the ClickHouse schema for the votes table.
// Maps and snapshots are stored as JSON strings; empty strings mean "not enriched".
var VoteColumns = []ColumnDef{
	{Name: "roll_id", Type: "String", Codec: "ZSTD(1)"},
	{Name: "vote_type", Type: "LowCardinality(String)"},
	{Name: "chamber", Type: "LowCardinality(String)"},
	{Name: "year", Type: "UInt16"},
	{Name: "number", Type: "UInt32", Codec: "Delta, ZSTD(3)"},
	{Name: "congress", Type: "UInt16"},
	{Name: "session", Type: "UInt8"},
	{Name: "roll_type", Type: "String", Codec: "ZSTD(1)"},
	{Name: "question", Type: "String", Codec: "ZSTD(1)"},
	{Name: "result", Type: "String", Codec: "ZSTD(1)"},
	{Name: "required", Type: "String", Codec: "ZSTD(1)"},
	{Name: "voted_at", Type: "DateTime64(3)"},
	{Name: "voter_ids", Type: "String", Codec: "ZSTD(3)"},
	{Name: "voters", Type: "String", Codec: "ZSTD(3)"},
	{Name: "breakdown", Type: "String", Codec: "ZSTD(1)"},
	{Name: "source", Type: "String", Codec: "ZSTD(1)"},
	{Name: "url", Type: "String", Codec: "ZSTD(1)"},
	{Name: "bill_id", Type: "String"},
	{Name: "bill", Type: "String", Codec: "ZSTD(1)"},
	{Name: "amendment_id", Type: "String"},
	{Name: "amendment", Type: "String", Codec: "ZSTD(1)"},
	{Name: "nomination_id", Type: "String"},
	{Name: "nomination", Type: "String", Codec: "ZSTD(1)"},
	{Name: "created_at", Type: "DateTime64(3)"},
	{Name: "updated_at", Type: "DateTime64(3)"},
	// version drives ReplacingMergeTree deduplication, newest write wins
	{Name: "version", Type: "UInt64"},
}

// Voter is one resolved ballot with the legislator as they were at sync time.
type Voter struct {
	Vote  string     `json:"vote"`
	Voter Legislator `json:"voter"`
}

// Breakdown aggregates resolved ballots, overall and per party.
type Breakdown struct {
	Total map[string]int            `json:"total"`
	Party map[string]map[string]int `json:"party"`
}

// Vote is the canonical roll call record, unique by RollID.
type Vote struct {
	RollID   string `json:"roll_id"`
	VoteType string `json:"vote_type"`
	Chamber  string `json:"chamber"`
	Year     int    `json:"year"`
	Number   int    `json:"number"`
	Congress int    `json:"congress"`
	Session  int    `json:"session"`

	RollType string `json:"roll_type"`
	Question string `json:"question"`
	Result   string `json:"result"`
	Required string `json:"required"`

	VotedAt  time.Time         `json:"voted_at"`
	VoterIDs map[string]string `json:"voter_ids"`
	Voters   map[string]Voter  `json:"voters"`

	Breakdown Breakdown `json:"breakdown"`

	Source string `json:"source"`
	URL    string `json:"url"`

	// Enrichment. An empty id means the reference was absent or could not be resolved.
	BillID       string      `json:"bill_id,omitempty"`
	Bill         *Bill       `json:"bill,omitempty"`
	AmendmentID  string      `json:"amendment_id,omitempty"`
	Amendment    *Amendment  `json:"amendment,omitempty"`
	NominationID string      `json:"nomination_id,omitempty"`
	Nomination   *Nomination `json:"nomination,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
