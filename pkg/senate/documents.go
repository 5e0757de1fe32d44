package senate

import "encoding/xml"

// VoteMenu is the vote_menu_{congress}_{session}.xml index. Votes are listed
// newest first.
type VoteMenu struct {
	XMLName      xml.Name   `xml:"vote_summary"`
	Congress     string     `xml:"congress"`
	Session      string     `xml:"session"`
	CongressYear string     `xml:"congress_year"`
	Votes        []MenuVote `xml:"votes>vote"`
}

// MenuVote is one entry of the index.
type MenuVote struct {
	VoteNumber string `xml:"vote_number"`
	VoteDate   string `xml:"vote_date"`
	Issue      string `xml:"issue"`
	Question   string `xml:"question"`
	Result     string `xml:"result"`
	Title      string `xml:"title"`
}

// RollCallVote is a single roll call document.
type RollCallVote struct {
	XMLName             xml.Name   `xml:"roll_call_vote"`
	Congress            string     `xml:"congress"`
	Session             string     `xml:"session"`
	CongressYear        string     `xml:"congress_year"`
	VoteNumber          string     `xml:"vote_number"`
	VoteDate            string     `xml:"vote_date"`
	ModifyDate          string     `xml:"modify_date"`
	VoteQuestionText    string     `xml:"vote_question_text"`
	VoteDocumentText    string     `xml:"vote_document_text"`
	VoteResultText      string     `xml:"vote_result_text"`
	Question            string     `xml:"question"`
	VoteTitle           string     `xml:"vote_title"`
	MajorityRequirement string     `xml:"majority_requirement"`
	VoteResult          string     `xml:"vote_result"`
	Document            *Document  `xml:"document"`
	Amendment           *Amendment `xml:"amendment"`
	Count               Count      `xml:"count"`
	Members             []Member   `xml:"members>member"`
}

// Document is the measure the vote was held on.
type Document struct {
	DocumentCongress   string `xml:"document_congress"`
	DocumentType       string `xml:"document_type"`
	DocumentNumber     string `xml:"document_number"`
	DocumentName       string `xml:"document_name"`
	DocumentTitle      string `xml:"document_title"`
	DocumentShortTitle string `xml:"document_short_title"`
}

// Amendment is the amendment the vote was held on, if any.
type Amendment struct {
	AmendmentNumber                 string `xml:"amendment_number"`
	AmendmentToAmendmentNumber      string `xml:"amendment_to_amendment_number"`
	AmendmentToAmendmentToAmendment string `xml:"amendment_to_amendment_to_amendment_number"`
	AmendmentToDocumentNumber       string `xml:"amendment_to_document_number"`
	AmendmentToDocumentShortTitle   string `xml:"amendment_to_document_short_title"`
	AmendmentPurpose                string `xml:"amendment_purpose"`
}

// Count is the upstream tally. It is informational; breakdowns are computed
// from resolved ballots.
type Count struct {
	Yeas    string `xml:"yeas"`
	Nays    string `xml:"nays"`
	Present string `xml:"present"`
	Absent  string `xml:"absent"`
}

// Member is one senator's ballot.
type Member struct {
	MemberFull  string `xml:"member_full"`
	LastName    string `xml:"last_name"`
	FirstName   string `xml:"first_name"`
	Party       string `xml:"party"`
	State       string `xml:"state"`
	VoteCast    string `xml:"vote_cast"`
	LisMemberID string `xml:"lis_member_id"`
}
