package api

type Balance struct {
	Participant         string `json:"participant"`
	Credits             string `json:"credits"`
	SlotsGivenAway      int32  `json:"slotsGivenAway"`
	SlotsClaimed        int32  `json:"slotsClaimed"`
	SlotsAlreadySettled int32  `json:"slotsAlreadySettled"`
	SlotsGivenAway1H    int32  `json:"slotsGivenAway1h"`
	SlotsGivenAway2H    int32  `json:"slotsGivenAway2h"`
	SlotsClaimed1H      int32  `json:"slotsClaimed1h"`
	SlotsClaimed2H      int32  `json:"slotsClaimed2h"`
}

type PaymentInstruction struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type Totals struct {
	Participants      int32  `json:"participants"`
	OutstandingCredit string `json:"outstandingCredit"`
	Instructions      int32  `json:"instructions"`
	ActiveSlots       int32  `json:"activeSlots"`
	SettledSlots      int32  `json:"settledSlots"`
	BilledSlots       int32  `json:"billedSlots"`
	OptedOut          int32  `json:"optedOut"`
}

type GetOverviewRequest struct{}

type GetOverviewResponse struct {
	Balances     []*Balance            `json:"balances"`
	Instructions []*PaymentInstruction `json:"instructions"`
	Totals       *Totals               `json:"totals"`
}

type GetParticipantViewRequest struct {
	// Participant defaults to the caller.
	Participant string `json:"participant,omitempty"`
}

type GetParticipantViewResponse struct {
	Balance      *Balance              `json:"balance"`
	Instructions []*PaymentInstruction `json:"instructions"`
	Participant  *Participant          `json:"participant"`
	SettledSlots int32                 `json:"settledSlots"`
}

type GetDebugViewRequest struct{}

// RecordDecision is how one transaction record was treated by the ledger.
type RecordDecision struct {
	Record   *TransactionRecord `json:"record"`
	Included bool               `json:"included"`
	Reason   string             `json:"reason"`
	Duration string             `json:"duration"`
	Amount   string             `json:"amount"`
}

type GetDebugViewResponse struct {
	Decisions []*RecordDecision `json:"decisions"`
}

type GetCreditBreakdownRequest struct{}

type GetCreditBreakdownResponse struct {
	TotalSlots    int32             `json:"totalSlots"`
	EligibleSlots int32             `json:"eligibleSlots"`
	OptedOutSlots int32             `json:"optedOutSlots"`
	SwapSlots     int32             `json:"swapSlots"`
	SettledSlots  int32             `json:"settledSlots"`
	Credits       map[string]string `json:"credits"`
}
