// Package locale holds the display conventions used by the finance dashboard:
// series names, month abbreviations and currency formatting per language.
package locale

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"golang.org/x/text/language"
)

// Profile describes how numbers and labels are shown for one language.
type Profile struct {
	Tag      language.Tag
	Currency string
	months   [12]string
	series   map[string]string
	noData   string
}

var (
	brazilian = Profile{
		Tag:      language.BrazilianPortuguese,
		Currency: money.BRL,
		months:   [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"},
		series:   map[string]string{"income": "Receitas", "expenses": "Despesas", "assets": "Patrimônio"},
		noData:   "Sem dados para exibir",
	}
	american = Profile{
		Tag:      language.AmericanEnglish,
		Currency: money.USD,
		months:   [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		series:   map[string]string{"income": "Income", "expenses": "Expenses", "assets": "Assets"},
		noData:   "No data to display",
	}
	italian = Profile{
		Tag:      language.Italian,
		Currency: money.EUR,
		months:   [12]string{"Gen", "Feb", "Mar", "Apr", "Mag", "Giu", "Lug", "Ago", "Set", "Ott", "Nov", "Dic"},
		series:   map[string]string{"income": "Entrate", "expenses": "Uscite", "assets": "Patrimonio"},
		noData:   "Nessun dato da mostrare",
	}

	// profiles[0] is what the matcher falls back to.
	profiles = []Profile{brazilian, american, italian}
	matcher  = language.NewMatcher([]language.Tag{brazilian.Tag, american.Tag, italian.Tag})
)

// Default returns the pt-BR profile.
func Default() Profile {
	return brazilian
}

// Lookup returns the profile closest to a BCP 47 code such as "en-US" or "it".
// Unknown or malformed codes resolve to the default profile.
func Lookup(code string) Profile {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return Default()
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default()
	}
	return profiles[idx]
}

// Match picks a profile from an Accept-Language header value, falling back to
// the given profile when the header is empty, malformed or matches nothing.
func Match(acceptLanguage string, fallback Profile) Profile {
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return profiles[idx]
}

// Code returns the BCP 47 representation of the profile's language.
func (p Profile) Code() string {
	return p.Tag.String()
}

// MonthLabel returns the abbreviated month name for month 1-12.
func (p Profile) MonthLabel(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return p.months[month-1]
}

// SeriesName returns the translated name for a series key
// ("income", "expenses" or "assets"). Unknown keys are returned as-is.
func (p Profile) SeriesName(key string) string {
	if name, ok := p.series[key]; ok {
		return name
	}
	return key
}

// NoDataText is shown in place of an empty chart.
func (p Profile) NoDataText() string {
	return p.noData
}

// FormatCurrency renders an amount in currency units with the grouping and
// decimal rules of the profile's currency, e.g. R$1.234,56. The amount is
// rounded to the nearest cent; every profile currency has two decimals.
func (p Profile) FormatCurrency(amount float64) string {
	return p.FormatCents(int64(math.Round(amount * 100)))
}

// FormatCents is FormatCurrency for integer cent amounts.
func (p Profile) FormatCents(cents int64) string {
	return money.New(cents, p.Currency).Display()
}
