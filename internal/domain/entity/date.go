package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/abarroteria/internal/domain"
)

// DateOf trunca t a la fecha calendario (medianoche UTC). Todas las fechas de negocio se comparan así.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate interpreta una fecha ISO (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q: %v", domain.ErrInvalidInput, s, err)
	}
	return t, nil
}

// FormatDate devuelve la fecha en formato ISO (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DaysBetween días calendario de from a to (negativo si to es anterior).
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// InRange indica si d está en [from, to], comparando solo fechas.
func InRange(d, from, to time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(from)) && !d.After(DateOf(to))
}
