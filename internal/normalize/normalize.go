// Package normalize canonicalizes extracted auction notices. Normalizing an
// already normalized record returns it unchanged.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/remates-cli/internal/bulletin"
	"github.com/sells-group/remates-cli/internal/location"
	"github.com/sells-group/remates-cli/internal/model"
	"github.com/sells-group/remates-cli/internal/textnorm"
)

// PlaceholderPrefix marks synthesized identifiers for notices without a
// matrícula in the source text.
const PlaceholderPrefix = "SIN-MAT-"

// Normalizer canonicalizes records. It is safe for concurrent use.
type Normalizer struct {
	places *location.Gazetteer
}

// New returns a Normalizer. A nil gazetteer disables location resolution.
func New(places *location.Gazetteer) *Normalizer {
	return &Normalizer{places: places}
}

// Normalize returns the canonical form of r. The input is not modified and
// raw_text is copied verbatim.
func (n *Normalizer) Normalize(r model.Remate) model.Remate {
	out := r

	out.Matricula = bulletin.CanonicalMatricula(r.Matricula)
	out.FincaID = FincaID(out.Matricula)

	out.Provincia = title(clean(r.Provincia))
	out.Canton = title(stripCodePrefix(clean(r.Canton)))
	out.Distrito = title(stripCodePrefix(clean(r.Distrito)))
	out.CadastralCode = nil
	n.resolvePlace(&out)

	out.Naturaleza = title(cleanNaturaleza(clean(r.Naturaleza)))
	out.Colindancias = cleanColindancias(clean(r.Colindancias))

	out.AreaText = clean(r.AreaText)
	out.AreaNumeric = copyFloat(r.AreaNumeric)
	if out.AreaNumeric == nil && out.AreaText != nil {
		if v, ok := bulletin.ParseAmount(*out.AreaText); ok {
			out.AreaNumeric = &v
		}
	}

	out.BasePriceText = clean(r.BasePriceText)
	out.BasePriceNumeric = amount(out.BasePriceText, r.BasePriceNumeric)
	out.Currency = currency(r.Currency, out.BasePriceText)

	out.FirstAuctionDate = date(clean(r.FirstAuctionDate))
	out.FirstAuctionTime = timeOfDay(clean(r.FirstAuctionTime))

	out.SecondAuctionDate = date(clean(r.SecondAuctionDate))
	out.SecondAuctionTime = timeOfDay(clean(r.SecondAuctionTime))
	out.SecondAuctionBaseText = clean(r.SecondAuctionBaseText)
	out.SecondAuctionBase = amount(out.SecondAuctionBaseText, r.SecondAuctionBase)

	out.ThirdAuctionDate = date(clean(r.ThirdAuctionDate))
	out.ThirdAuctionTime = timeOfDay(clean(r.ThirdAuctionTime))
	out.ThirdAuctionBaseText = clean(r.ThirdAuctionBaseText)
	out.ThirdAuctionBase = amount(out.ThirdAuctionBaseText, r.ThirdAuctionBase)

	out.CaseType = title(clean(r.CaseType))
	out.CaseNumber = clean(r.CaseNumber)
	out.Plaintiff = title(clean(r.Plaintiff))
	out.Defendant = title(clean(r.Defendant))
	out.Court = title(clean(r.Court))
	out.Judge = title(clean(r.Judge))

	out.BulletinNumber = clean(r.BulletinNumber)
	return out
}

func (n *Normalizer) resolvePlace(r *model.Remate) {
	if n.places == nil || r.Provincia == nil {
		return
	}
	pl := n.places.Resolve(deref(r.Provincia), deref(r.Canton), deref(r.Distrito))
	if pl.Code == "" {
		return
	}
	// Canonical spellings replace only names that already match modulo
	// case and accents.
	r.Provincia = &pl.Province
	if pl.Canton != "" && textnorm.Fold(deref(r.Canton)) == textnorm.Fold(pl.Canton) {
		r.Canton = &pl.Canton
	}
	if pl.District != "" && textnorm.Fold(deref(r.Distrito)) == textnorm.Fold(pl.District) {
		r.Distrito = &pl.District
	}
	code := pl.Code
	r.CadastralCode = &code
}

var trailingZeroSuffix = regexp.MustCompile(`-0+$`)

// FincaID derives the core parcel number from a matrícula by stripping
// trailing zero suffixes ("-000", "-00", "-0") and a bare trailing dash.
// Placeholders have no finca.
func FincaID(matricula string) *string {
	m := bulletin.CanonicalMatricula(matricula)
	if m == "" || strings.HasPrefix(m, PlaceholderPrefix) {
		return nil
	}
	for {
		next := strings.TrimSuffix(trailingZeroSuffix.ReplaceAllString(m, ""), "-")
		if next == m {
			break
		}
		m = next
	}
	if m == "" {
		return nil
	}
	return &m
}

// clean trims s and maps "" and "null" to nil.
func clean(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

// title lowercases s and capitalizes each word. A new caser is built per
// call because casers keep state.
func title(s *string) *string {
	if s == nil {
		return nil
	}
	v := cases.Title(language.Spanish).String(strings.ToLower(textnorm.Collapse(*s)))
	if v == "" {
		return nil
	}
	return &v
}

var codePrefix = regexp.MustCompile(`^\d+-?\s*`)

// stripCodePrefix removes administrative numbering such as "3-" in
// "3-Desamparados".
func stripCodePrefix(s *string) *string {
	if s == nil {
		return nil
	}
	return clean(ptr(codePrefix.ReplaceAllString(*s, "")))
}

var naturalezaBoilerplate = []*regexp.Regexp{
	regexp.MustCompile(`(?i)LOTE-?\s*\d+\s*`),
	regexp.MustCompile(`(?i)LOTE\s+[A-Z0-9-]+`),
	regexp.MustCompile(`(?i)BLOQUE\s+[A-Z0-9]`),
	regexp.MustCompile(`(?i)FINCA FILIAL[^,]*`),
	regexp.MustCompile(`(?i)UBICADA EN[^,]*`),
	regexp.MustCompile(`(?i)DESTINADA A[^,]*`),
	regexp.MustCompile(`(?i)EN PROCESO DE[^,]*`),
}

// cleanNaturaleza removes lot, block, filial and location boilerplate.
func cleanNaturaleza(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	for {
		prev := v
		for _, re := range naturalezaBoilerplate {
			v = re.ReplaceAllString(v, "")
		}
		v = strings.Trim(textnorm.Collapse(v), " ,;.")
		if v == prev {
			break
		}
	}
	return clean(&v)
}

var cardinalLabel = regexp.MustCompile(`(?i)\b(norte|sur|este|oeste)\s*:\s*`)

// cleanColindancias collapses whitespace and writes the cardinal labels as
// "NORTE: ", "SUR: ", "ESTE: ", "OESTE: ".
func cleanColindancias(s *string) *string {
	if s == nil {
		return nil
	}
	v := cardinalLabel.ReplaceAllStringFunc(textnorm.Collapse(*s), func(m string) string {
		return strings.ToUpper(cardinalLabel.FindStringSubmatch(m)[1]) + ": "
	})
	return clean(&v)
}

// amount returns the value parsed from text, falling back to the extracted
// number when the text does not parse.
func amount(text *string, extracted *float64) *float64 {
	if text != nil {
		if v, ok := bulletin.ParseAmount(*text); ok {
			return &v
		}
	}
	return copyFloat(extracted)
}

// currency canonicalizes the extracted currency, inferring it from the price
// text when absent. Unknown values become nil.
func currency(c *model.Currency, priceText *string) *model.Currency {
	if c != nil {
		if v, ok := parseCurrency(string(*c)); ok {
			return &v
		}
	}
	if priceText != nil {
		if v, ok := parseCurrency(*priceText); ok {
			return &v
		}
	}
	return nil
}

func parseCurrency(s string) (model.Currency, bool) {
	f := textnorm.Fold(s)
	switch {
	case strings.Contains(f, "usd"), strings.Contains(f, "dolar"), strings.Contains(f, "$"):
		return model.CurrencyUSD, true
	case strings.Contains(f, "crc"), strings.Contains(f, "colon"), strings.Contains(f, "₡"), strings.Contains(f, "¢"):
		return model.CurrencyCRC, true
	}
	return "", false
}

// date converts Spanish dates to YYYY-MM-DD and passes anything else through.
func date(s *string) *string {
	if s == nil {
		return nil
	}
	if v, ok := bulletin.ParseSpanishDate(*s); ok {
		return &v
	}
	return s
}

func timeOfDay(s *string) *string {
	if s == nil {
		return nil
	}
	v := Time(*s)
	return &v
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr[T any](v T) *T { return &v }
