package votes

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/civicdata/rollcall/pkg/congress"
	"github.com/civicdata/rollcall/pkg/senate"
)

var billTypes = map[string]bool{
	"hr": true, "hres": true, "hjres": true, "hconres": true,
	"s": true, "sres": true, "sjres": true, "sconres": true,
}

// BillID derives "{type}{number}-{congress}" from the document name, falling
// back to the document an amendment amends. Unknown types yield "".
func BillID(doc *senate.RollCallVote, congressNum int) string {
	var raw string
	if doc.Document != nil {
		raw = strings.TrimSpace(doc.Document.DocumentName)
	}
	if raw == "" && doc.Amendment != nil {
		raw = strings.TrimSpace(doc.Amendment.AmendmentToDocumentNumber)
	}
	if raw == "" {
		return ""
	}

	code := strings.ToLower(strings.NewReplacer(" ", "", ".", "").Replace(raw))
	var typ, number strings.Builder
	for _, r := range code {
		if unicode.IsDigit(r) {
			number.WriteRune(r)
		} else {
			typ.WriteRune(r)
		}
	}
	if !billTypes[typ.String()] || number.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("%s%s-%d", typ.String(), number.String(), congressNum)
}

// AmendmentID derives "samdt{number}-{congress}" from the amendment number.
func AmendmentID(doc *senate.RollCallVote, congressNum int) string {
	if doc.Amendment == nil {
		return ""
	}
	n, ok := digits(doc.Amendment.AmendmentNumber)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%samdt%d-%d", congress.Senate.Prefix(), n, congressNum)
}

// NominationID derives "{number}-{congress}" for votes on a PN document. A
// dashed part number is padded to two digits: "PN64-2" becomes "PN64-02".
func NominationID(doc *senate.RollCallVote, congressNum int) string {
	if doc.Document == nil || strings.TrimSpace(doc.Document.DocumentType) != "PN" {
		return ""
	}
	number := strings.TrimSpace(doc.Document.DocumentName)
	if number == "" {
		return ""
	}
	if pieces := strings.Split(number, "-"); len(pieces) > 1 {
		number = pieces[0] + "-" + congress.ShortZeroPrefix(leadingInt(pieces[1]))
	}
	return fmt.Sprintf("%s-%d", number, congressNum)
}

// digits keeps only the digits of s.
func digits(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	return n, err == nil
}

// leadingInt parses the leading run of digits, 0 when there is none.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}
