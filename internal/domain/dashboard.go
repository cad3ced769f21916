package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dashboard es la foto del panel de torneos en un instante.
type Dashboard struct {
	At            time.Time        `json:"at"`
	Live          []TournamentView `json:"live"`
	Starting      []TournamentView `json:"starting"`
	Upcoming      []TournamentView `json:"upcoming"`
	LiveCount     int              `json:"liveCount"`
	StartingCount int              `json:"startingCount"`
	RevealedDeals int              `json:"revealedDeals"`
	RevealedValue string           `json:"revealedValue"`
}

// BuildDashboard clasifica los torneos por su estado actual y calcula los agregados.
// El orden de entrada se conserva dentro de cada grupo.
func BuildDashboard(tournaments []Tournament, now time.Time) Dashboard {
	dash := Dashboard{
		At:       now,
		Live:     []TournamentView{},
		Starting: []TournamentView{},
		Upcoming: []TournamentView{},
	}
	total := decimal.Zero
	for _, t := range tournaments {
		view := t.View(now)
		switch t.Status {
		case TournamentLive:
			dash.Live = append(dash.Live, view)
		case TournamentStarting:
			dash.Starting = append(dash.Starting, view)
		default:
			dash.Upcoming = append(dash.Upcoming, view)
		}
		dash.RevealedDeals += t.RevealedCount()
		total = total.Add(t.RevealedValue())
	}
	dash.LiveCount = len(dash.Live)
	dash.StartingCount = len(dash.Starting)
	dash.RevealedValue = FormatUSD(total)
	return dash
}
