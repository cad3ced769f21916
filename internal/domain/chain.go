package domain

import "time"

// TxReceipt resume una escritura enviada al contrato de patrocinios.
type TxReceipt struct {
	Method      Operation `json:"method"`
	TxHash      string    `json:"txHash"`
	From        string    `json:"from"`
	BlockNumber uint64    `json:"blockNumber,omitempty"`
	DryRun      bool      `json:"dryRun"`
	SentAt      time.Time `json:"sentAt"`
}

// ChainDealInfo es la respuesta de getDealInfo.
type ChainDealInfo struct {
	DealID         int64
	Title          string
	Description    string
	Amount         uint8
	Duration       uint8
	ViewerCount    uint8
	EngagementRate uint8
	IsActive       bool
	IsVerified     bool
	Sponsor        string
	Streamer       string
	StartTime      time.Time
	EndTime        time.Time
}

// SubmitBidCall son los argumentos cifrados de submitBid.
type SubmitBidCall struct {
	DealID      int64
	Amount      []byte
	Performance []byte
	Proof       []byte
}

// CreateDealCall son los argumentos de createSponsorshipDeal.
type CreateDealCall struct {
	Title       string
	Description string
	Amount      []byte
	Duration    []byte
	Streamer    string
}

// AcceptDealCall son los argumentos cifrados de acceptDeal.
type AcceptDealCall struct {
	DealID         int64
	ViewerCount    []byte
	EngagementRate []byte
	Proof          []byte
}

// ReportPerformanceCall son los argumentos cifrados de reportPerformance.
type ReportPerformanceCall struct {
	DealID          int64
	TotalViews      []byte
	TotalEngagement []byte
	ConversionRate  []byte
	Revenue         []byte
}
