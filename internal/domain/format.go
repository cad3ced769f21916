package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatDuration convierte días de campaña a la etiqueta corta de la UI.
//
//	< 7  → "N days"
//	< 30 → "N weeks"
//	else → "N months"
func FormatDuration(days int) string {
	switch {
	case days < 7:
		return fmt.Sprintf("%d days", days)
	case days < 30:
		return fmt.Sprintf("%d weeks", days/7)
	default:
		return fmt.Sprintf("%d months", days/30)
	}
}

// FormatUSD devuelve el importe con separador de miles: 75000 → "$75,000".
// Conserva hasta dos decimales si los hay.
func FormatUSD(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}
	s := v.Round(2).String()
	intPart, frac, hasFrac := strings.Cut(s, ".")
	out := "$" + sign + groupThousands(intPart)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// FormatPercent renderiza un ratio 0..1 como porcentaje con un decimal: 0.87 → "87.0%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// Countdown devuelve "m:ss" hasta start, o "Started" si ya pasó.
// Los minutos no se acotan: dos horas son "120:00".
func Countdown(start, now time.Time) string {
	diff := start.Sub(now)
	if diff <= 0 {
		return "Started"
	}
	minutes := int(diff / time.Minute)
	seconds := int((diff % time.Minute) / time.Second)
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
