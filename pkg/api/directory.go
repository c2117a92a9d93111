package api

type Participant struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
	OptedIn bool   `json:"optedIn"`
	Role    string `json:"role"`
	Color   string `json:"color,omitempty"`
}

type TransactionRecord struct {
	Id            string `json:"id"`
	Date          string `json:"date"`
	TimeRange     string `json:"timeRange"`
	Giver         string `json:"giver"`
	Claimant      string `json:"claimant,omitempty"`
	Status        string `json:"status"`
	SwapRequested bool   `json:"swapRequested,omitempty"`
	Settled       bool   `json:"settled,omitempty"`
	CreatedAt     int64  `json:"createdAt,omitempty"`
}

type UpsertParticipantRequest struct {
	Participant *Participant `json:"participant"`
}

type UpsertParticipantResponse struct {
	Participant *Participant `json:"participant"`
}

type ListParticipantsRequest struct{}

type ListParticipantsResponse struct {
	Participants []*Participant `json:"participants"`
}

type AppendRecordRequest struct {
	Record *TransactionRecord `json:"record"`
}

type AppendRecordResponse struct {
	Record *TransactionRecord `json:"record"`
}

type ListRecordsRequest struct{}

type ListRecordsResponse struct {
	Records []*TransactionRecord `json:"records"`
}
