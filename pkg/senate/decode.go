package senate

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DecodeVoteMenu decodes a vote menu index document.
func DecodeVoteMenu(b []byte) (*VoteMenu, error) {
	var menu VoteMenu
	if err := newDecoder(b).Decode(&menu); err != nil {
		return nil, fmt.Errorf("decode vote menu: %w", err)
	}
	return &menu, nil
}

// Latest returns the highest roll call number listed in the menu, or 0 when
// the session has no votes yet.
func (m *VoteMenu) Latest() (int, error) {
	latest := 0
	for _, v := range m.Votes {
		raw := strings.TrimSpace(v.VoteNumber)
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("bad vote_number %q in vote menu", raw)
		}
		latest = max(latest, n)
	}
	return latest, nil
}

// DecodeRollCallVote decodes a roll call vote document.
func DecodeRollCallVote(b []byte) (*RollCallVote, error) {
	var v RollCallVote
	if err := newDecoder(b).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode roll call vote: %w", err)
	}
	return &v, nil
}

// StrictResult is the outcome of a strict well-formedness check.
type StrictResult struct {
	OK  bool
	Err error
}

// TryParseStrict walks every token of b and reports whether it is a complete,
// well-formed XML document. Truncated downloads fail with an unexpected EOF.
func TryParseStrict(b []byte) StrictResult {
	d := newDecoder(b)
	d.Strict = true
	depth, roots := 0, 0
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return StrictResult{Err: err}
		}
		switch tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if roots != 1 || depth != 0 {
		return StrictResult{Err: fmt.Errorf("expected one closed root element, saw %d (depth %d)", roots, depth)}
	}
	return StrictResult{OK: true}
}

func newDecoder(b []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(b))
	d.CharsetReader = charsetReader
	return d
}
