package bulletin

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/remates-cli/internal/textnorm"
)

// numberWords maps folded Spanish number words to their value. "una" is
// left out on purpose: it is far more often an article ("una base de") than
// a quantity in price text.
var numberWords = map[string]int64{
	"cero": 0, "un": 1, "uno": 1, "primero": 1, "dos": 2, "tres": 3, "cuatro": 4,
	"cinco": 5, "seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
	"once": 11, "doce": 12, "trece": 13, "catorce": 14, "quince": 15,
	"dieciseis": 16, "diecisiete": 17, "dieciocho": 18, "diecinueve": 19,
	"veinte": 20, "veintiun": 21, "veintiuno": 21, "veintiuna": 21, "veintidos": 22,
	"veintitres": 23, "veinticuatro": 24, "veinticinco": 25, "veintiseis": 26,
	"veintisiete": 27, "veintiocho": 28, "veintinueve": 29,
	"treinta": 30, "cuarenta": 40, "cincuenta": 50, "sesenta": 60,
	"setenta": 70, "ochenta": 80, "noventa": 90,
	"cien": 100, "ciento": 100,
	"doscientos": 200, "doscientas": 200, "trescientos": 300, "trescientas": 300,
	"cuatrocientos": 400, "cuatrocientas": 400, "quinientos": 500, "quinientas": 500,
	"seiscientos": 600, "seiscientas": 600, "setecientos": 700, "setecientas": 700,
	"ochocientos": 800, "ochocientas": 800, "novecientos": 900, "novecientas": 900,
}

var months = map[string]int{
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4, "mayo": 5, "junio": 6,
	"julio": 7, "agosto": 8, "septiembre": 9, "setiembre": 9, "octubre": 10,
	"noviembre": 11, "diciembre": 12,
}

// amountFiller are words that may surround a spelled-out amount.
var amountFiller = map[string]bool{
	"de": true, "colones": true, "colon": true, "dolares": true, "dolar": true,
	"exactos": true, "exacto": true, "moneda": true, "curso": true, "legal": true,
	"estadounidenses": true, "americanos": true, "norteamericanos": true,
	"la": true, "suma": true, "base": true, "us": true, "crc": true, "usd": true,
}

// isNumberWord reports whether w can be part of a spelled-out number.
func isNumberWord(w string) bool {
	_, ok := numberWords[w]
	return ok || w == "y" || w == "mil" || w == "millon" || w == "millones"
}

// ParseNumberWords converts folded Spanish number words to an integer. Any
// word that is not part of a number makes the parse fail.
func ParseNumberWords(words []string) (int64, bool) {
	var total, current int64
	seen := false
	for _, w := range words {
		switch w {
		case "y":
			continue
		case "mil":
			if current == 0 {
				current = 1
			}
			current *= 1000
		case "millon", "millones":
			if current == 0 {
				current = 1
			}
			total += current * 1_000_000
			current = 0
		default:
			v, ok := numberWords[w]
			if !ok {
				return 0, false
			}
			current += v
		}
		seen = true
	}
	if !seen {
		return 0, false
	}
	return total + current, true
}

var digitAmountRe = regexp.MustCompile(`\d[\d.,]*\d|\d`)

// ParseAmount parses a price or area expressed either in words ("cuatro
// millones con cincuenta céntimos", "cuatro millones de colones con 00/100")
// or with digits ("₡4.000.000,50", "$125,000.00"). Spelled-out amounts are
// tried first so that digit cents after "con" are not read as the amount.
func ParseAmount(text string) (float64, bool) {
	if v, ok := parseWordAmount(text); ok {
		return v, true
	}
	if num := digitAmountRe.FindString(text); num != "" {
		return parseDigitAmount(num)
	}
	return 0, false
}

func parseDigitAmount(num string) (float64, bool) {
	lastDot := strings.LastIndex(num, ".")
	lastComma := strings.LastIndex(num, ",")

	var intPart, fracPart string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		dec := max(lastDot, lastComma)
		intPart, fracPart = num[:dec], num[dec+1:]
	case lastDot >= 0 || lastComma >= 0:
		sep := "."
		if lastComma >= 0 {
			sep = ","
		}
		parts := strings.Split(num, sep)
		if len(parts) == 2 && len(parts[1]) != 3 {
			intPart, fracPart = parts[0], parts[1]
		} else {
			intPart = num
		}
	default:
		intPart = num
	}

	intPart = strings.NewReplacer(".", "", ",", "").Replace(intPart)
	s := intPart
	if fracPart != "" {
		s += "." + fracPart
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseWordAmount(text string) (float64, bool) {
	words := textnorm.Words(text)

	var intWords, centWords []string
	inCents := false
	for _, w := range words {
		if w == "con" {
			inCents = true
			continue
		}
		if amountFiller[w] {
			continue
		}
		if inCents {
			centWords = append(centWords, w)
		} else {
			intWords = append(intWords, w)
		}
	}

	whole, ok := ParseNumberWords(intWords)
	if !ok {
		return 0, false
	}
	value := float64(whole)

	if cents, ok := parseCents(centWords); ok {
		value += cents
	}
	return value, true
}

// parseCents reads the part after "con": "50 centavos", "00/100" or
// "cincuenta céntimos".
func parseCents(words []string) (float64, bool) {
	if len(words) == 0 {
		return 0, false
	}
	if n, err := strconv.Atoi(words[0]); err == nil {
		if n < 0 || n >= 100 {
			return 0, false
		}
		return float64(n) / 100, true
	}
	n := len(words)
	if n < 2 || !isCentsWord(words[n-1]) {
		return 0, false
	}
	cents, ok := ParseNumberWords(words[:n-1])
	if !ok || cents >= 100 {
		return 0, false
	}
	return float64(cents) / 100, true
}

func isCentsWord(w string) bool {
	return w == "centimos" || w == "centimo" || w == "centavos" || w == "centavo"
}

var (
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})[/.-](\d{4})\b`)
)

// ParseSpanishDate converts a Spanish date ("quince de marzo de dos mil
// veinticinco", "15 de marzo del 2025", "15/03/2025") to YYYY-MM-DD.
func ParseSpanishDate(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if isoDateRe.MatchString(text) {
		if _, err := time.Parse(time.DateOnly, text); err == nil {
			return text, true
		}
		return "", false
	}
	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		return formatDate(y, mo, d)
	}

	words := textnorm.Words(text)
	for i, w := range words {
		mo, ok := months[w]
		if !ok || i < 2 || words[i-1] != "de" {
			continue
		}
		day, ok := parseDayBefore(words[:i-1])
		if !ok {
			continue
		}
		year, ok := parseYearAfter(words[i+1:])
		if !ok {
			continue
		}
		return formatDate(int(year), mo, int(day))
	}
	return "", false
}

// parseDayBefore parses the longest number suffix (up to three words, as in
// "treinta y uno") of the words preceding "de <month>".
func parseDayBefore(words []string) (int64, bool) {
	for k := min(3, len(words)); k >= 1; k-- {
		tail := words[len(words)-k:]
		if k == 1 {
			if n, err := strconv.Atoi(tail[0]); err == nil {
				return int64(n), true
			}
		}
		if n, ok := ParseNumberWords(tail); ok && n >= 1 && n <= 31 {
			return n, true
		}
	}
	return 0, false
}

// parseYearAfter parses "de dos mil veinticinco" or "del 2025".
func parseYearAfter(words []string) (int64, bool) {
	if len(words) < 2 || (words[0] != "de" && words[0] != "del") {
		return 0, false
	}
	rest := words[1:]
	if n, err := strconv.Atoi(rest[0]); err == nil {
		return int64(n), true
	}
	end := 0
	for end < len(rest) && isNumberWord(rest[end]) {
		end++
	}
	return ParseNumberWords(rest[:end])
}

func formatDate(y, m, d int) (string, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 || y < 1900 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}
