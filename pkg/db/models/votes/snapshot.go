package votes

// Legislator is a point-in-time copy of a legislator from the legislator corpus.
type Legislator struct {
	BioguideID string `json:"bioguide_id"`
	LisID      string `json:"lis_id,omitempty"`
	ThomasID   string `json:"thomas_id,omitempty"`
	GovtrackID string `json:"govtrack_id,omitempty"`
	FirstName  string `json:"first_name"`
	Nickname   string `json:"nickname,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
	NameSuffix string `json:"name_suffix,omitempty"`
	Title      string `json:"title,omitempty"`
	Party      string `json:"party"`
	State      string `json:"state"`
	District   *int   `json:"district,omitempty"`
	Chamber    string `json:"chamber"`
	InOffice   bool   `json:"in_office"`
}

// Bill is a point-in-time copy of a bill from the bill corpus.
type Bill struct {
	BillID        string `json:"bill_id"`
	BillType      string `json:"bill_type"`
	Number        int    `json:"number"`
	Congress      int    `json:"congress"`
	Chamber       string `json:"chamber"`
	OfficialTitle string `json:"official_title,omitempty"`
	ShortTitle    string `json:"short_title,omitempty"`
	PopularTitle  string `json:"popular_title,omitempty"`
	SponsorID     string `json:"sponsor_id,omitempty"`
	IntroducedOn  string `json:"introduced_on,omitempty"`
}

// Amendment is a point-in-time copy of an amendment from the amendment corpus.
type Amendment struct {
	AmendmentID   string `json:"amendment_id"`
	AmendmentType string `json:"amendment_type"`
	Number        int    `json:"number"`
	Congress      int    `json:"congress"`
	Chamber       string `json:"chamber"`
	AmendsBillID  string `json:"amends_bill_id,omitempty"`
	Purpose       string `json:"purpose,omitempty"`
	SponsorID     string `json:"sponsor_id,omitempty"`
	IntroducedOn  string `json:"introduced_on,omitempty"`
}

// Nominee is one person named in a nomination.
type Nominee struct {
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	State    string `json:"state,omitempty"`
}

// Nomination is a point-in-time copy of a nomination from the nomination corpus.
type Nomination struct {
	NominationID string    `json:"nomination_id"`
	Number       string    `json:"number"`
	Congress     int       `json:"congress"`
	Organization string    `json:"organization,omitempty"`
	Nominees     []Nominee `json:"nominees,omitempty"`
	ReceivedOn   string    `json:"received_on,omitempty"`
	LastAction   string    `json:"last_action,omitempty"`
}
