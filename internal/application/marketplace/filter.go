package marketplace

import (
	"strings"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// FilterConfig son los criterios del buscador del catálogo.
type FilterConfig struct {
	// Query se busca, sin distinguir mayúsculas, en el nombre del torneo y en el juego.
	// Vacío acepta todo.
	Query string
	// Status es un domain.DealStatus o "all". Vacío equivale a "all".
	// Un estado desconocido no acepta ningún deal.
	Status string
}

// Filter aplica los criterios del catálogo sobre una lista de deals.
type Filter struct {
	query  string
	status string
	any    bool
}

// NewFilter normaliza la configuración una sola vez.
func NewFilter(cfg FilterConfig) *Filter {
	status := strings.ToLower(strings.TrimSpace(cfg.Status))
	return &Filter{
		query:  strings.ToLower(cfg.Query),
		status: status,
		any:    status == "" || status == domain.StatusAll,
	}
}

// Apply devuelve los deals que pasan el filtro, en el orden de entrada.
func (f *Filter) Apply(deals []domain.Deal) []domain.Deal {
	result := make([]domain.Deal, 0, len(deals))
	for _, d := range deals {
		if f.passes(d) {
			result = append(result, d)
		}
	}
	return result
}

func (f *Filter) passes(d domain.Deal) bool {
	if !f.any && string(d.Status) != f.status {
		return false
	}
	if f.query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Tournament), f.query) ||
		strings.Contains(strings.ToLower(d.Game), f.query)
}
