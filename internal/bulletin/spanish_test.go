package bulletin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		text   string
		want   float64
		wantOK bool
	}{
		{"Cuatro millones con cincuenta céntimos", 4000000.50, true},
		{"cuatro millones de colones exactos", 4000000, true},
		{"un millón quinientos mil colones", 1500000, true},
		{"dos millones trescientos cuarenta y cinco mil seiscientos setenta y ocho colones con noventa céntimos", 2345678.90, true},
		{"ciento veinticinco mil dólares", 125000, true},
		{"mil quinientos dólares con cinco centavos", 1500.05, true},
		{"cuatro millones de colones con 00/100", 4000000, true},
		{"setenta y cinco mil dólares con 50 centavos", 75000.50, true},
		{"tres millones de colones con 25/100", 3000000.25, true},
		{"₡4.000.000,50", 4000000.50, true},
		{"$125,000.00", 125000, true},
		{"₡47.000.000", 47000000, true},
		{"250,50 metros", 250.50, true},
		{"1.500", 1500, true},
		{"12", 12, true},
		{"sin base", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseAmount(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestParseAmountCentsPlacement(t *testing.T) {
	got, ok := ParseAmount("Cuatro millones con cincuenta céntimos")
	assert.True(t, ok)
	assert.NotEqual(t, 4000050.0, got)
	assert.InDelta(t, 4000000.50, got, 0.0001)
}

func TestParseAmountDigitCentsDoNotReplaceWords(t *testing.T) {
	got, ok := ParseAmount("cuatro millones de colones con 00/100")
	assert.True(t, ok)
	assert.InDelta(t, 4000000, got, 0.001)

	got, ok = ParseAmount("setenta y cinco mil dólares con 50 centavos")
	assert.True(t, ok)
	assert.InDelta(t, 75000.50, got, 0.001)
}

func TestParseNumberWords(t *testing.T) {
	tests := []struct {
		words  []string
		want   int64
		wantOK bool
	}{
		{[]string{"treinta", "y", "uno"}, 31, true},
		{[]string{"dos", "mil", "veinticinco"}, 2025, true},
		{[]string{"mil"}, 1000, true},
		{[]string{"un", "millon"}, 1000000, true},
		{[]string{"horas", "del", "quince"}, 0, false},
		{[]string{"y"}, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumberWords(tt.words)
		assert.Equal(t, tt.wantOK, ok, tt.words)
		assert.Equal(t, tt.want, got, tt.words)
	}
}

func TestParseSpanishDate(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{"2025-03-15", "2025-03-15", true},
		{"quince de marzo de dos mil veinticinco", "2025-03-15", true},
		{"las diez horas del treinta y uno de enero de dos mil veintiséis", "2026-01-31", true},
		{"doce de setiembre del 2025", "2025-09-12", true},
		{"15 de agosto de 2027", "2027-08-15", true},
		{"05/11/2025", "2025-11-05", true},
		{"primero de julio de dos mil treinta", "2030-07-01", true},
		{"treinta de febrero de dos mil veinticinco", "", false},
		{"2025-02-30", "", false},
		{"mañana temprano", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseSpanishDate(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
