package domain

import (
	"strconv"
	"time"
)

// Opciones del formulario de lanzamiento de un patrocinio.
var (
	GameOptions = []Option{
		{Value: "lol", Label: "League of Legends"},
		{Value: "cs2", Label: "Counter-Strike 2"},
		{Value: "valorant", Label: "Valorant"},
		{Value: "dota2", Label: "Dota 2"},
		{Value: "overwatch", Label: "Overwatch 2"},
	}
	CategoryOptions = []Option{
		{Value: "moba", Label: "MOBA"},
		{Value: "fps", Label: "FPS"},
		{Value: "rts", Label: "RTS"},
		{Value: "fighting", Label: "Fighting"},
	}
)

// OptionLabel devuelve la etiqueta de value dentro de opts, o value si no existe.
func OptionLabel(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// CreateDealRequest es el formulario de creación de un deal.
// Los cinco primeros campos son obligatorios; el resto viene del formulario
// extendido de lanzamiento y es opcional.
type CreateDealRequest struct {
	Creator         string `json:"-"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Amount          string `json:"amount"`   // ETH
	Duration        string `json:"duration"` // días
	StreamerAddress string `json:"streamerAddress"`

	Game             string     `json:"game,omitempty"`
	Category         string     `json:"category,omitempty"`
	TargetTeam       string     `json:"targetTeam,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	AutoReveal       *bool      `json:"autoReveal,omitempty"`
	RequiresApproval bool       `json:"requiresApproval,omitempty"`
}

// Validate exige los campos obligatorios. La dirección del streamer no se valida.
// Importe y duración deben ser numéricos positivos, y con ambas fechas el fin
// debe ser posterior al inicio.
func (r CreateDealRequest) Validate() error {
	if blank(r.Title) || blank(r.Description) || blank(r.Amount) || blank(r.Duration) || blank(r.StreamerAddress) {
		return &MissingFieldsError{Msg: "Please fill in all fields"}
	}
	fields := FieldErrors{}
	if _, ok := ParseAmount(r.Amount); !ok {
		fields["amount"] = "Please enter a valid amount"
	}
	if _, err := r.DurationDays(); err != nil {
		fields["duration"] = "Please enter a valid duration in days"
	}
	if r.StartDate != nil && r.EndDate != nil && !r.EndDate.After(*r.StartDate) {
		fields["endDate"] = "End date must be after start date"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// DurationDays interpreta Duration como número entero de días.
func (r CreateDealRequest) DurationDays() (int, error) {
	n, err := strconv.Atoi(r.Duration)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// ToDeal construye el deal de catálogo para un formulario ya validado.
func (r CreateDealRequest) ToDeal(now time.Time) Deal {
	amount, _ := ParseAmount(r.Amount)
	days, _ := r.DurationDays()

	start := now
	if r.StartDate != nil {
		start = *r.StartDate
	}
	end := start.Add(time.Duration(days) * 24 * time.Hour)
	if r.EndDate != nil {
		end = *r.EndDate
	}
	autoReveal := true
	if r.AutoReveal != nil {
		autoReveal = *r.AutoReveal
	}
	team := r.StreamerAddress
	if r.TargetTeam != "" {
		team = r.TargetTeam
	}

	return Deal{
		Tournament:       r.Title,
		Description:      r.Description,
		Game:             OptionLabel(GameOptions, r.Game),
		Category:         OptionLabel(CategoryOptions, r.Category),
		Value:            amount,
		Currency:         CurrencyETH,
		Sponsor:          r.Creator,
		Team:             team,
		Status:           DealEncrypted,
		StartTime:        start,
		EndTime:          end,
		DurationDays:     days,
		AutoReveal:       autoReveal,
		RequiresApproval: r.RequiresApproval,
		CreatedAt:        now,
	}
}

// PerformanceReport son las métricas que reporta el streamer al terminar.
type PerformanceReport struct {
	TotalViews      string `json:"totalViews"`
	TotalEngagement string `json:"totalEngagement"`
	ConversionRate  string `json:"conversionRate"`
	Revenue         string `json:"revenue"`
}

// Validate exige vistas y engagement; conversión y revenue son opcionales.
func (p PerformanceReport) Validate() error {
	if blank(p.TotalViews) || blank(p.TotalEngagement) {
		return &MissingFieldsError{Msg: "Please fill in all performance data"}
	}
	return nil
}

// AcceptanceMetrics son los valores que se cifran al aceptar un deal.
type AcceptanceMetrics struct {
	ViewerCount    string
	EngagementRate string
}

// AcceptanceMetricsFor deriva las métricas de aceptación de un deal.
func AcceptanceMetricsFor(d Deal) AcceptanceMetrics {
	return AcceptanceMetrics{
		ViewerCount:    strconv.FormatInt(d.ViewerCount, 10),
		EngagementRate: strconv.FormatFloat(d.EngagementRate, 'f', -1, 64),
	}
}
