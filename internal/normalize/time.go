package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/remates-cli/internal/textnorm"
)

var hourWords = map[string]int{
	"una": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5, "seis": 6,
	"siete": 7, "ocho": 8, "nueve": 9, "diez": 10, "once": 11, "doce": 12,
	"trece": 13, "catorce": 14, "quince": 15, "dieciseis": 16,
	"diecisiete": 17, "dieciocho": 18,
}

var minuteWords = map[string]int{
	"cero": 0, "cinco": 5, "diez": 10, "quince": 15, "veinte": 20,
	"veinticinco": 25, "treinta": 30, "treinta y cinco": 35, "cuarenta": 40,
	"cuarenta y cinco": 45, "cincuenta": 50, "cincuenta y cinco": 55,
}

var (
	clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	hourRe  = regexp.MustCompile(`(\d{1,2}|[a-z]+)\s+horas?\b`)
	// minuteRe captures what sits between "hora(s)" and "minuto(s)".
	minuteRe = regexp.MustCompile(`horas?\s+(?:y\s+|con\s+)?(\d{1,2}|[a-z]+(?:\s+y\s+[a-z]+)?)\s+minutos?\b`)
)

// Time normalizes an auction time to 24-hour HH:MM. "8:30" is zero-padded;
// "ocho horas treinta minutos" and "diez horas" are mapped through the word
// tables. Anything unrecognized is returned unchanged.
func Time(s string) string {
	s = strings.TrimSpace(s)
	if m := clockRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:%s", h, m[2])
	}

	folded := textnorm.Fold(s)
	hm := hourRe.FindStringSubmatch(folded)
	if hm == nil {
		return s
	}
	hour, ok := lookup(hm[1], hourWords)
	if !ok || hour > 23 {
		return s
	}

	minute := 0
	if mm := minuteRe.FindStringSubmatch(folded); mm != nil {
		minute, ok = lookup(mm[1], minuteWords)
		if !ok || minute > 59 {
			return s
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func lookup(word string, table map[string]int) (int, bool) {
	if n, err := strconv.Atoi(word); err == nil {
		return n, true
	}
	n, ok := table[textnorm.Collapse(word)]
	return n, ok
}
