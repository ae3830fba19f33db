package weather

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Report is a display-ready snapshot of current conditions.
type Report struct {
	Place        string // provider's name for the coordinates
	Temp         float64
	FeelsLike    float64
	Humidity     int
	WindSpeed    json.Number // literal as sent by the provider
	VisibilityKM float64
	Description  string
	Icon         string
}

const reportFmt = "🌍 Погода в %s\n" +
	"%s %s\n\n" +
	"🌡️ Температура: %.1f°C\n" +
	"🤔 Ощущается как: %.1f°C\n" +
	"💧 Влажность: %d%%\n" +
	"💨 Скорость ветра: %s м/с\n" +
	"🔭 Видимость: %.1f км\n"

// Format renders the report for the given city name.
func (r Report) Format(city string) string {
	return fmt.Sprintf(reportFmt,
		city,
		Emoji(r.Icon), r.Description,
		r.Temp,
		r.FeelsLike,
		r.Humidity,
		windText(r.WindSpeed),
		r.VisibilityKM,
	)
}

// windText prints the speed the way the provider wrote it: integers stay
// integers, decimals keep at least one fractional digit ("3.0" stays "3.0").
func windText(n json.Number) string {
	lit := n.String()
	if !strings.ContainsAny(lit, ".eE") {
		return lit
	}
	v, err := n.Float64()
	if err != nil {
		return lit
	}
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
