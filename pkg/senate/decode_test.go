package senate

import (
	"testing"

	"github.com/civicdata/rollcall/pkg/senate/senatetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteMenuLatest(t *testing.T) {
	menu, err := DecodeVoteMenu(senatetest.MenuXML(111, 1, 397))
	require.NoError(t, err)
	latest, err := menu.Latest()
	require.NoError(t, err)
	require.Equal(t, 397, latest)
}

func TestVoteMenuLatestEmptySession(t *testing.T) {
	menu, err := DecodeVoteMenu(senatetest.MenuXML(111, 2, 0))
	require.NoError(t, err)
	latest, err := menu.Latest()
	require.NoError(t, err)
	require.Zero(t, latest)
}

func TestVoteMenuLatestBadNumber(t *testing.T) {
	menu, err := DecodeVoteMenu([]byte(`<vote_summary><votes><vote><vote_number>abc</vote_number></vote></votes></vote_summary>`))
	require.NoError(t, err)
	_, err = menu.Latest()
	require.Error(t, err)
}

func TestDecodeRollCallVote(t *testing.T) {
	v := senatetest.PassageVote(3)
	v.AmendmentNumber = "S.Amdt. 21"
	doc, err := DecodeRollCallVote(v.XML())
	require.NoError(t, err)

	assert.Equal(t, "5", doc.VoteNumber)
	assert.Equal(t, " On Passage of the Bill ", doc.Question)
	assert.Equal(t, "On Passage of the Bill (S. 181)", doc.VoteQuestionText)
	require.NotNil(t, doc.Document)
	assert.Equal(t, "S. 181", doc.Document.DocumentName)
	require.NotNil(t, doc.Amendment)
	assert.Equal(t, "S.Amdt. 21", doc.Amendment.AmendmentNumber)
	require.Len(t, doc.Members, 3)
	assert.Equal(t, "S001", doc.Members[0].LisMemberID)
	assert.Equal(t, "Yea", doc.Members[0].VoteCast)
}

func TestDecodeRollCallVoteWithoutDocument(t *testing.T) {
	doc, err := DecodeRollCallVote([]byte(`<roll_call_vote><vote_number>7</vote_number></roll_call_vote>`))
	require.NoError(t, err)
	assert.Nil(t, doc.Document)
	assert.Nil(t, doc.Amendment)
}

func TestTryParseStrict(t *testing.T) {
	full := senatetest.PassageVote(2).XML()

	res := TryParseStrict(full)
	require.True(t, res.OK)
	require.NoError(t, res.Err)

	truncated := TryParseStrict(full[:len(full)/2])
	require.False(t, truncated.OK)
	require.Error(t, truncated.Err)

	empty := TryParseStrict(nil)
	require.False(t, empty.OK)

	html := TryParseStrict([]byte("<html><body><br></body></html>"))
	require.False(t, html.OK)
}

func TestDecodeLatin1(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><roll_call_vote><vote_number>1</vote_number>" +
		"<members><member><member_full>Mu\xf1oz (D-NM)</member_full></member></members></roll_call_vote>")
	v, err := DecodeRollCallVote(doc)
	require.NoError(t, err)
	require.Len(t, v.Members, 1)
	require.Equal(t, "Muñoz (D-NM)", v.Members[0].MemberFull)
}

func TestDecodeWindows1252(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"windows-1252\"?><roll_call_vote><vote_number>1</vote_number>" +
		"<vote_title>The \x93Act\x94 \x96 Mu\xf1oz</vote_title></roll_call_vote>")
	v, err := DecodeRollCallVote(doc)
	require.NoError(t, err)
	require.Equal(t, "The \u201cAct\u201d \u2013 Muñoz", v.VoteTitle)
}

func TestDecodeUnsupportedCharset(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"x-made-up\"?><roll_call_vote></roll_call_vote>")
	_, err := DecodeRollCallVote(doc)
	require.Error(t, err)
}

func TestIsXMLContentType(t *testing.T) {
	assert.True(t, IsXMLContentType("text/xml"))
	assert.True(t, IsXMLContentType("application/xml; charset=UTF-8"))
	assert.False(t, IsXMLContentType("application/atom+xml"))
	assert.False(t, IsXMLContentType("text/html; charset=UTF-8"))
	assert.False(t, IsXMLContentType(""))
}
