package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaskToken reemplaza cualquier campo cifrado (sponsor, team, value) en las vistas públicas.
const MaskToken = "████████"

// StatusAll es el valor de filtro que acepta cualquier estado.
const StatusAll = "all"

// DealStatus es el estado de un deal en el catálogo.
type DealStatus string

const (
	DealEncrypted DealStatus = "encrypted"
	DealActive    DealStatus = "active"
	DealCompleted DealStatus = "completed"
)

// ParseDealStatus valida un estado recibido desde fuera (query string, DB).
func ParseDealStatus(s string) (DealStatus, bool) {
	switch DealStatus(strings.ToLower(strings.TrimSpace(s))) {
	case DealEncrypted:
		return DealEncrypted, true
	case DealActive:
		return DealActive, true
	case DealCompleted:
		return DealCompleted, true
	}
	return "", false
}

// Currency del importe de un deal.
type Currency string

const (
	CurrencyETH Currency = "ETH"
	CurrencyUSD Currency = "USD"
)

// Deal es una oferta de patrocinio entre un sponsor y un equipo/streamer.
// Los campos sensibles se guardan en claro; la vista pública los enmascara.
type Deal struct {
	ID          int64
	Tournament  string // título del deal o del torneo
	Description string
	Game        string
	Category    string
	Platform    string
	Language    string
	Region      string

	Value    decimal.Decimal
	Currency Currency

	Sponsor string // nombre o address
	Team    string // equipo o streamer

	Status       DealStatus
	StartTime    time.Time
	EndTime      time.Time
	DurationDays int

	ViewerCount    int64
	EngagementRate float64 // 0..1
	IsVerified     bool

	Requirements []string
	Benefits     []string

	AutoReveal       bool
	RequiresApproval bool
	CreatedAt        time.Time
}

// IsEncrypted devuelve true si los términos del deal siguen ocultos.
func (d Deal) IsEncrypted() bool {
	return d.Status == DealEncrypted
}

// IsExpired devuelve true si now es posterior al fin del deal.
// Un deal sin EndTime nunca expira.
func (d Deal) IsExpired(now time.Time) bool {
	if d.EndTime.IsZero() {
		return false
	}
	return now.After(d.EndTime)
}

// DaysRemaining devuelve los días (redondeados hacia arriba) hasta EndTime, mínimo 0.
func (d Deal) DaysRemaining(now time.Time) int {
	if d.EndTime.IsZero() {
		return 0
	}
	left := d.EndTime.Sub(now)
	if left <= 0 {
		return 0
	}
	const day = 24 * time.Hour
	return int((left + day - 1) / day)
}

// FormatValue renderiza el importe según la moneda: "$50,000" o "5.5 ETH".
func (d Deal) FormatValue() string {
	if d.Currency == CurrencyETH {
		return d.Value.String() + " ETH"
	}
	return FormatUSD(d.Value)
}

// DealView es la proyección pública de un Deal: lo que ve cualquier cliente.
type DealView struct {
	ID           int64     `json:"id"`
	Tournament   string    `json:"tournament"`
	Description  string    `json:"description,omitempty"`
	Game         string    `json:"game"`
	Category     string    `json:"category"`
	Platform     string    `json:"platform,omitempty"`
	Status       string    `json:"status"`
	Value        string    `json:"value"`
	Sponsor      string    `json:"sponsor"`
	Team         string    `json:"team"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime,omitempty"`
	DurationDays int       `json:"durationDays,omitempty"`
	IsVerified   bool      `json:"isVerified"`
	Biddable     bool      `json:"biddable"`
}

// View proyecta el deal aplicando la máscara cuando está cifrado.
func (d Deal) View() DealView {
	v := DealView{
		ID:           d.ID,
		Tournament:   d.Tournament,
		Description:  d.Description,
		Game:         d.Game,
		Category:     d.Category,
		Platform:     d.Platform,
		Status:       string(d.Status),
		Value:        d.FormatValue(),
		Sponsor:      d.Sponsor,
		Team:         d.Team,
		StartTime:    d.StartTime,
		EndTime:      d.EndTime,
		DurationDays: d.DurationDays,
		IsVerified:   d.IsVerified,
		Biddable:     d.IsEncrypted(),
	}
	if d.IsEncrypted() {
		v.Value = MaskToken
		v.Sponsor = MaskToken
		v.Team = MaskToken
	}
	return v
}

// DealDetail agrega los campos derivados que muestra la ficha de un deal.
type DealDetail struct {
	DealView
	Language         string   `json:"language,omitempty"`
	Region           string   `json:"region,omitempty"`
	ViewerCount      int64    `json:"viewerCount"`
	EngagementRate   string   `json:"engagementRate"`
	Requirements     []string `json:"requirements,omitempty"`
	Benefits         []string `json:"benefits,omitempty"`
	AutoReveal       bool     `json:"autoReveal"`
	RequiresApproval bool     `json:"requiresApproval"`
	IsExpired        bool     `json:"isExpired"`
	DaysRemaining    int      `json:"daysRemaining"`
	DurationLabel    string   `json:"durationLabel"`
	ValueUSD         string   `json:"valueUsd,omitempty"`
}

// Detail construye la ficha del deal a la hora now. ethUSD se usa para
// convertir importes en ETH; cero omite la conversión.
func (d Deal) Detail(now time.Time, ethUSD decimal.Decimal) DealDetail {
	detail := DealDetail{
		DealView:         d.View(),
		Language:         d.Language,
		Region:           d.Region,
		ViewerCount:      d.ViewerCount,
		EngagementRate:   FormatPercent(d.EngagementRate),
		Requirements:     d.Requirements,
		Benefits:         d.Benefits,
		AutoReveal:       d.AutoReveal,
		RequiresApproval: d.RequiresApproval,
		IsExpired:        d.IsExpired(now),
		DaysRemaining:    d.DaysRemaining(now),
		DurationLabel:    FormatDuration(d.DurationDays),
	}
	if d.Currency == CurrencyETH && ethUSD.IsPositive() && !d.IsEncrypted() {
		detail.ValueUSD = "~" + FormatUSD(d.Value.Mul(ethUSD))
	}
	return detail
}
