package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TournamentStatus sigue la máquina upcoming → starting → live.
type TournamentStatus string

const (
	TournamentUpcoming TournamentStatus = "upcoming"
	TournamentStarting TournamentStatus = "starting"
	TournamentLive     TournamentStatus = "live"
)

// DefaultStartingWindow es cuánto antes del inicio un torneo pasa a "starting".
const DefaultStartingWindow = 10 * time.Minute

func (s TournamentStatus) rank() int {
	switch s {
	case TournamentStarting:
		return 1
	case TournamentLive:
		return 2
	default:
		return 0
	}
}

// ParseTournamentStatus valida un estado leído de la DB.
func ParseTournamentStatus(s string) (TournamentStatus, bool) {
	switch TournamentStatus(s) {
	case TournamentUpcoming, TournamentStarting, TournamentLive:
		return TournamentStatus(s), true
	}
	return "", false
}

// ClassifyStart deriva el estado de un torneo a partir de su hora de inicio.
func ClassifyStart(start, now time.Time, window time.Duration) TournamentStatus {
	switch {
	case !now.Before(start):
		return TournamentLive
	case start.Sub(now) <= window:
		return TournamentStarting
	default:
		return TournamentUpcoming
	}
}

// RevealDeal es un deal asociado a un torneo. Sus términos son visibles
// solo cuando Revealed es true.
type RevealDeal struct {
	ID         int64
	Sponsor    string
	Team       string
	Value      decimal.Decimal
	Type       string
	Revealed   bool
	RevealedAt *time.Time
}

// RevealDealView es la proyección pública de un RevealDeal.
type RevealDealView struct {
	ID         int64      `json:"id"`
	Sponsor    string     `json:"sponsor"`
	Team       string     `json:"team"`
	Value      string     `json:"value"`
	Type       string     `json:"type"`
	Revealed   bool       `json:"revealed"`
	RevealedAt *time.Time `json:"revealedAt,omitempty"`
}

// View enmascara los términos mientras el deal no está revelado.
func (d RevealDeal) View() RevealDealView {
	if !d.Revealed {
		return RevealDealView{
			ID:      d.ID,
			Sponsor: MaskToken,
			Team:    MaskToken,
			Value:   MaskToken,
			Type:    MaskToken,
		}
	}
	return RevealDealView{
		ID:         d.ID,
		Sponsor:    d.Sponsor,
		Team:       d.Team,
		Value:      FormatUSD(d.Value),
		Type:       d.Type,
		Revealed:   true,
		RevealedAt: d.RevealedAt,
	}
}

// Tournament agrupa los deals que se revelan cuando empieza.
type Tournament struct {
	ID        int64
	Name      string
	Game      string
	Status    TournamentStatus
	StartTime time.Time
	Deals     []RevealDeal
}

// Advance mueve el torneo por la máquina de estados a la hora now.
// Las transiciones son monótonas: un torneo nunca vuelve a un estado anterior.
// Al entrar (o estar) en live, cada deal no revelado se revela exactamente una vez.
// Devuelve si cambió el estado y los deals revelados en esta llamada.
func (t *Tournament) Advance(now time.Time, window time.Duration) (changed bool, revealed []RevealDeal) {
	next := ClassifyStart(t.StartTime, now, window)
	if next.rank() > t.Status.rank() {
		t.Status = next
		changed = true
	}
	if t.Status != TournamentLive {
		return changed, nil
	}
	for i := range t.Deals {
		if t.Deals[i].Revealed {
			continue
		}
		at := now
		t.Deals[i].Revealed = true
		t.Deals[i].RevealedAt = &at
		revealed = append(revealed, t.Deals[i])
	}
	return changed, revealed
}

// RevealedValue suma el valor de los deals revelados del torneo.
func (t Tournament) RevealedValue() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range t.Deals {
		if d.Revealed {
			sum = sum.Add(d.Value)
		}
	}
	return sum
}

// RevealedCount devuelve cuántos deals del torneo están revelados.
func (t Tournament) RevealedCount() int {
	n := 0
	for _, d := range t.Deals {
		if d.Revealed {
			n++
		}
	}
	return n
}

// TournamentView es la tarjeta de un torneo en el dashboard.
type TournamentView struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Game      string           `json:"game"`
	Status    TournamentStatus `json:"status"`
	StartTime time.Time        `json:"startTime"`
	Countdown string           `json:"countdown"`
	Deals     []RevealDealView `json:"deals"`
}

// View proyecta el torneo con su cuenta atrás a la hora now.
func (t Tournament) View(now time.Time) TournamentView {
	deals := make([]RevealDealView, 0, len(t.Deals))
	for _, d := range t.Deals {
		deals = append(deals, d.View())
	}
	return TournamentView{
		ID:        t.ID,
		Name:      t.Name,
		Game:      t.Game,
		Status:    t.Status,
		StartTime: t.StartTime,
		Countdown: Countdown(t.StartTime, now),
		Deals:     deals,
	}
}
