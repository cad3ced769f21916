package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// Console implementa ports.RevealNotifier y pinta catálogo y dashboard en terminal.
type Console struct {
	out     io.Writer
	compact bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(compact bool) *Console {
	return &Console{out: os.Stdout, compact: compact}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, compact bool) *Console {
	return &Console{out: w, compact: compact}
}

// NotifyTransition imprime un cambio de estado de torneo y los deals revelados.
func (c *Console) NotifyTransition(_ context.Context, t domain.Tournament, revealed []domain.RevealDeal) error {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "[%s] %s (%s) → %s\n", now, t.Name, t.Game, strings.ToUpper(string(t.Status)))
	for _, d := range revealed {
		fmt.Fprintf(c.out, "  revealed #%d %s → %s  %s  (%s)\n",
			d.ID, d.Sponsor, d.Team, domain.FormatUSD(d.Value), d.Type)
	}
	return nil
}

// PrintCatalog imprime los deals ya proyectados (enmascarados si procede).
func (c *Console) PrintCatalog(deals []domain.DealView) {
	if len(deals) == 0 {
		fmt.Fprintln(c.out, "No deals found")
		return
	}

	if c.compact {
		for _, d := range deals {
			fmt.Fprintf(c.out, "#%d %s [%s] %s %s\n", d.ID, truncate(d.Tournament, 32), d.Game, d.Status, d.Value)
		}
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Tournament", "Game", "Category", "Status", "Value", "Sponsor", "Team", "Start")
	for _, d := range deals {
		table.Append(
			fmt.Sprintf("%d", d.ID),
			truncate(d.Tournament, 36),
			d.Game,
			d.Category,
			d.Status,
			d.Value,
			truncate(d.Sponsor, 20),
			truncate(d.Team, 20),
			dateLabel(d.StartTime),
		)
	}
	table.Render()
	fmt.Fprintf(c.out, "  %d deals | %s = FHE-protected, revealed at tournament start\n", len(deals), domain.MaskToken)
}

// PrintDeal imprime la ficha de un deal.
func (c *Console) PrintDeal(d domain.DealDetail) {
	fmt.Fprintf(c.out, "\n=== #%d %s ===\n", d.ID, d.Tournament)
	if d.Description != "" {
		fmt.Fprintf(c.out, "  %s\n", d.Description)
	}
	value := d.Value
	if d.ValueUSD != "" {
		value += " (" + d.ValueUSD + ")"
	}
	fmt.Fprintf(c.out, "  Value:      %s\n", value)
	fmt.Fprintf(c.out, "  Duration:   %s\n", d.DurationLabel)
	fmt.Fprintf(c.out, "  Viewers:    %d  engagement %s\n", d.ViewerCount, d.EngagementRate)
	fmt.Fprintf(c.out, "  Sponsor:    %s\n", d.Sponsor)
	fmt.Fprintf(c.out, "  Team:       %s\n", d.Team)
	if d.IsExpired {
		fmt.Fprintf(c.out, "  Status:     %s (expired)\n", d.Status)
	} else {
		fmt.Fprintf(c.out, "  Status:     %s (%d days remaining)\n", d.Status, d.DaysRemaining)
	}
	fmt.Fprintf(c.out, "  Reveal:     %s  approval %s\n", pick(d.AutoReveal, "auto", "manual"), pick(d.RequiresApproval, "required", "not required"))
	for _, r := range d.Requirements {
		fmt.Fprintf(c.out, "  - %s\n", r)
	}
	for _, b := range d.Benefits {
		fmt.Fprintf(c.out, "  + %s\n", b)
	}
	fmt.Fprintln(c.out)
}

// PrintDashboard imprime el panel de torneos: agregados y una tabla por grupo.
func (c *Console) PrintDashboard(dash domain.Dashboard) {
	fmt.Fprintf(c.out, "\n[%s] live:%d starting:%d revealed:%d value:%s\n",
		dash.At.Format("15:04:05"), dash.LiveCount, dash.StartingCount, dash.RevealedDeals, dash.RevealedValue)

	if c.compact {
		for _, group := range [][]domain.TournamentView{dash.Live, dash.Starting, dash.Upcoming} {
			for _, t := range group {
				fmt.Fprintf(c.out, "  %-8s %s %s\n", t.Status, t.Countdown, t.Name)
			}
		}
		return
	}

	c.printGroup("LIVE", dash.Live)
	c.printGroup("STARTING SOON", dash.Starting)
	c.printGroup("UPCOMING", dash.Upcoming)
}

func (c *Console) printGroup(title string, tournaments []domain.TournamentView) {
	if len(tournaments) == 0 {
		return
	}
	fmt.Fprintf(c.out, "\n--- %s ---\n", title)

	table := tablewriter.NewWriter(c.out)
	table.Header("Tournament", "Game", "Starts in", "Deal", "Sponsor", "Team", "Value", "Type")
	for _, t := range tournaments {
		if len(t.Deals) == 0 {
			table.Append(t.Name, t.Game, t.Countdown, "-", "", "", "", "")
			continue
		}
		for i, d := range t.Deals {
			name, game, countdown := t.Name, t.Game, t.Countdown
			if i > 0 {
				name, game, countdown = "", "", ""
			}
			table.Append(name, game, countdown, fmt.Sprintf("#%d", d.ID), d.Sponsor, d.Team, d.Value, d.Type)
		}
	}
	table.Render()
}

// PrintReceipt imprime el resultado de una escritura al contrato.
func (c *Console) PrintReceipt(r domain.TxReceipt) {
	mode := "sent"
	if r.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(c.out, "[%s] %s %s tx=%s from=%s\n", r.SentAt.Format("15:04:05"), r.Method, mode, r.TxHash, r.From)
}

// --- helpers ---

func pick(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

func dateLabel(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func truncate(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}
