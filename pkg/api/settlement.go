package api

type Batch struct {
	Id             string   `json:"id"`
	Name           string   `json:"name"`
	PeriodStart    string   `json:"periodStart"`
	PeriodEnd      string   `json:"periodEnd"`
	Status         string   `json:"status"`
	CreatedBy      string   `json:"createdBy,omitempty"`
	CreatedAt      int64    `json:"createdAt"`
	GeneratedAt    int64    `json:"generatedAt,omitempty"`
	SettledAt      int64    `json:"settledAt,omitempty"`
	TransactionIds []string `json:"transactionIds,omitempty"`
}

type Pairing struct {
	Id          string `json:"id"`
	BatchId     string `json:"batchId"`
	Creditor    string `json:"creditor"`
	Debtor      string `json:"debtor"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	CompletedBy string `json:"completedBy,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	CompletedAt int64  `json:"completedAt,omitempty"`
}

type CreateBatchRequest struct {
	Name        string `json:"name"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

type CreateBatchResponse struct {
	Batch *Batch `json:"batch"`
}

type GeneratePairingsRequest struct {
	BatchId string `json:"batchId"`
}

type GeneratePairingsResponse struct {
	Pairings []*Pairing `json:"pairings"`
}

type CompletePairingRequest struct {
	PairingId string `json:"pairingId"`
}

type CompletePairingResponse struct {
	Pairing *Pairing `json:"pairing"`
}

type CloseBatchRequest struct {
	BatchId string `json:"batchId"`
}

type CloseBatchResponse struct {
	Batch *Batch `json:"batch"`
}

type GetBatchRequest struct {
	BatchId string `json:"batchId"`
}

type GetBatchResponse struct {
	Batch *Batch `json:"batch"`
}

type ListBatchesRequest struct{}

type ListBatchesResponse struct {
	Batches []*Batch `json:"batches"`
}

type ListPairingsRequest struct {
	BatchId string `json:"batchId"`
}

type ListPairingsResponse struct {
	Pairings []*Pairing `json:"pairings"`
}
