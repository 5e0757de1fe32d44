// Package senatetest builds upstream LIS documents and a fake upstream host for tests.
package senatetest

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Member is one ballot in a generated vote document.
type Member struct {
	LisID string
	Full  string
	First string
	Last  string
	Party string
	State string
	Cast  string
}

// Vote describes a roll call document to render.
type Vote struct {
	Congress     int
	Session      int
	Number       int
	Date         string
	RollType     string
	QuestionText string
	Result       string
	Majority     string

	DocumentType string
	DocumentName string

	AmendmentNumber     string
	AmendmentToDocument string

	Members []Member
}

var states = []string{"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA"}

// Senators returns n members with LIS ids S001..Snnn, alternating Yea/Nay and D/R.
func Senators(n int) []Member {
	out := make([]Member, 0, n)
	for i := 1; i <= n; i++ {
		party, cast := "D", "Yea"
		if i%2 == 0 {
			party, cast = "R", "Nay"
		}
		state := states[i%len(states)]
		last := fmt.Sprintf("Senator%03d", i)
		out = append(out, Member{
			LisID: fmt.Sprintf("S%03d", i),
			Full:  fmt.Sprintf("%s (%s-%s)", last, party, state),
			First: "Pat",
			Last:  last,
			Party: party,
			State: state,
			Cast:  cast,
		})
	}
	return out
}

// PassageVote returns the s5-2009 style passage vote with n members.
func PassageVote(n int) Vote {
	return Vote{
		Congress:     111,
		Session:      1,
		Number:       5,
		Date:         "January 15, 2009,  12:24 PM",
		RollType:     "On Passage of the Bill",
		QuestionText: "On Passage of the Bill (S. 181)",
		Result:       "Bill Passed",
		Majority:     "1/2",
		DocumentType: "S.",
		DocumentName: "S. 181",
		Members:      Senators(n),
	}
}

func esc(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// XML renders the vote in the upstream vocabulary.
func (v Vote) XML() []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<roll_call_vote>\n")
	fmt.Fprintf(&b, "  <congress>%d</congress>\n  <session>%d</session>\n", v.Congress, v.Session)
	fmt.Fprintf(&b, "  <vote_number>%d</vote_number>\n", v.Number)
	fmt.Fprintf(&b, "  <vote_date>%s</vote_date>\n", esc(v.Date))
	fmt.Fprintf(&b, "  <vote_question_text>%s</vote_question_text>\n", esc(v.QuestionText))
	fmt.Fprintf(&b, "  <question> %s </question>\n", esc(v.RollType))
	fmt.Fprintf(&b, "  <majority_requirement>%s</majority_requirement>\n", esc(v.Majority))
	fmt.Fprintf(&b, "  <vote_result>%s</vote_result>\n", esc(v.Result))
	b.WriteString("  <document>\n")
	fmt.Fprintf(&b, "    <document_congress>%d</document_congress>\n", v.Congress)
	fmt.Fprintf(&b, "    <document_type>%s</document_type>\n", esc(v.DocumentType))
	fmt.Fprintf(&b, "    <document_name>%s</document_name>\n", esc(v.DocumentName))
	b.WriteString("  </document>\n")
	b.WriteString("  <amendment>\n")
	fmt.Fprintf(&b, "    <amendment_number>%s</amendment_number>\n", esc(v.AmendmentNumber))
	fmt.Fprintf(&b, "    <amendment_to_document_number>%s</amendment_to_document_number>\n", esc(v.AmendmentToDocument))
	b.WriteString("  </amendment>\n")
	b.WriteString("  <members>\n")
	for _, m := range v.Members {
		b.WriteString("    <member>\n")
		fmt.Fprintf(&b, "      <member_full>%s</member_full>\n", esc(m.Full))
		fmt.Fprintf(&b, "      <last_name>%s</last_name>\n", esc(m.Last))
		fmt.Fprintf(&b, "      <first_name>%s</first_name>\n", esc(m.First))
		fmt.Fprintf(&b, "      <party>%s</party>\n", esc(m.Party))
		fmt.Fprintf(&b, "      <state>%s</state>\n", esc(m.State))
		fmt.Fprintf(&b, "      <vote_cast>%s</vote_cast>\n", esc(m.Cast))
		fmt.Fprintf(&b, "      <lis_member_id>%s</lis_member_id>\n", esc(m.LisID))
		b.WriteString("    </member>\n")
	}
	b.WriteString("  </members>\n")
	b.WriteString("</roll_call_vote>\n")
	return b.Bytes()
}

// MenuXML renders a vote menu listing latest..1, newest first.
func MenuXML(congress, session, latest int) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<vote_summary>\n")
	fmt.Fprintf(&b, "  <congress>%d</congress>\n  <session>%d</session>\n", congress, session)
	b.WriteString("  <votes>\n")
	for n := latest; n >= 1; n-- {
		fmt.Fprintf(&b, "    <vote><vote_number>%05d</vote_number><question>On the Motion</question></vote>\n", n)
	}
	b.WriteString("  </votes>\n")
	b.WriteString("</vote_summary>\n")
	return b.Bytes()
}
