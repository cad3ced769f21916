package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Option es un valor seleccionable de un formulario.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Opciones de los selects del formulario de bid.
var (
	PerformanceOptions = []Option{
		{Value: "100k", Label: "100K+ viewers per stream"},
		{Value: "50k", Label: "50K+ viewers per stream"},
		{Value: "25k", Label: "25K+ viewers per stream"},
		{Value: "10k", Label: "10K+ viewers per stream"},
		{Value: "custom", Label: "Custom commitment"},
	}
	PlatformOptions = []Option{
		{Value: "twitch", Label: "Twitch"},
		{Value: "youtube", Label: "YouTube Gaming"},
		{Value: "facebook", Label: "Facebook Gaming"},
		{Value: "tiktok", Label: "TikTok Gaming"},
		{Value: "instagram", Label: "Instagram"},
		{Value: "twitter", Label: "Twitter/X"},
	}
	DurationOptions = []Option{
		{Value: "7", Label: "1 Week"},
		{Value: "14", Label: "2 Weeks"},
		{Value: "30", Label: "1 Month"},
		{Value: "60", Label: "2 Months"},
		{Value: "90", Label: "3 Months"},
	}
)

// BidRequest es el formulario de bid tal como llega del cliente.
type BidRequest struct {
	DealID                int64  `json:"-"`
	Bidder                string `json:"-"`
	Amount                string `json:"amount"`
	PerformanceCommitment string `json:"performanceCommitment"`
	Duration              string `json:"duration"`
	Platform              string `json:"platform"`
	Content               string `json:"content"`
	AdditionalInfo        string `json:"additionalInfo"`
}

// Validate comprueba el formulario. Devuelve *ValidationError con un mensaje
// por campo inválido, o nil.
func (r BidRequest) Validate() error {
	fields := FieldErrors{}

	if _, ok := ParseAmount(r.Amount); !ok {
		fields["amount"] = "Please enter a valid bid amount"
	}
	if blank(r.PerformanceCommitment) {
		fields["performanceCommitment"] = "Please specify your performance commitment"
	}
	if blank(r.Duration) {
		fields["duration"] = "Please select campaign duration"
	}
	if blank(r.Platform) {
		fields["platform"] = "Please select your primary platform"
	}
	if blank(r.Content) {
		fields["content"] = "Please describe your content strategy"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Bid es un bid aceptado por el contrato.
type Bid struct {
	ID                    string          `json:"id"`
	DealID                int64           `json:"dealId"`
	Bidder                string          `json:"bidder"`
	Amount                decimal.Decimal `json:"amount"`
	PerformanceCommitment string          `json:"performanceCommitment"`
	Duration              string          `json:"duration"`
	Platform              string          `json:"platform"`
	Content               string          `json:"content"`
	AdditionalInfo        string          `json:"additionalInfo,omitempty"`
	EncryptedAmount       string          `json:"encryptedAmount"`
	EncryptedPerformance  string          `json:"encryptedPerformance"`
	TxHash                string          `json:"txHash"`
	SubmittedAt           time.Time       `json:"submittedAt"`
}

// ParseAmount interpreta un importe positivo. ok es false si está vacío,
// no es numérico o es <= 0.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
