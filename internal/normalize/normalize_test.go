package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/remates-cli/internal/location"
	"github.com/sells-group/remates-cli/internal/model"
)

func str(s string) *string { return &s }

func num(f float64) *float64 { return &f }

func rawRecord() model.Remate {
	cur := model.Currency("colones")
	return model.Remate{
		Matricula:        " 627947-000 ",
		Provincia:        str("SAN JOSE"),
		Canton:           str("3-Desamparados"),
		Distrito:         str("03-SAN MIGUEL "),
		Naturaleza:       str("LOTE 5, TERRENO PARA CONSTRUIR UBICADA EN URBANIZACION LAS PALMAS"),
		Colindancias:     str("norte:  calle publica,  sur : lote 6, este: rio, oeste:Juan Perez"),
		AreaText:         str("250,50 metros cuadrados"),
		BasePriceText:    str("Cuatro millones con cincuenta céntimos"),
		BasePriceNumeric: num(4000050),
		Currency:         &cur,
		FirstAuctionDate: str("quince de marzo de dos mil veinticinco"),
		FirstAuctionTime: str("ocho horas treinta minutos"),
		SecondAuctionDate: str("2025-03-31"),
		SecondAuctionTime: str("8:30"),
		ThirdAuctionDate:  str("null"),
		ThirdAuctionTime:  str(""),
		CaseType:          str("PROCESO EJECUCIÓN HIPOTECARIA"),
		CaseNumber:        str(" 19-000123-1158-CJ "),
		Plaintiff:         str("BANCO NACIONAL DE COSTA RICA"),
		Defendant:         str("juan pérez"),
		Court:             str("JUZGADO DE COBRO DE DESAMPARADOS"),
		Judge:             str("   "),
		RawText:           "  texto original  \n",
	}
}

func TestNormalize(t *testing.T) {
	n := New(location.New())
	got := n.Normalize(rawRecord())

	assert.Equal(t, "627947-000", got.Matricula)
	require.NotNil(t, got.FincaID)
	assert.Equal(t, "627947", *got.FincaID)

	assert.Equal(t, "San José", *got.Provincia)
	assert.Equal(t, "Desamparados", *got.Canton)
	assert.Equal(t, "San Miguel", *got.Distrito)
	require.NotNil(t, got.CadastralCode)
	assert.Equal(t, "103", *got.CadastralCode)

	assert.Equal(t, "Terreno Para Construir", *got.Naturaleza)
	assert.Equal(t, "NORTE: calle publica, SUR: lote 6, ESTE: rio, OESTE: Juan Perez", *got.Colindancias)

	assert.InDelta(t, 250.50, *got.AreaNumeric, 0.001)
	assert.InDelta(t, 4000000.50, *got.BasePriceNumeric, 0.001)
	assert.Equal(t, model.CurrencyCRC, *got.Currency)

	assert.Equal(t, "2025-03-15", *got.FirstAuctionDate)
	assert.Equal(t, "08:30", *got.FirstAuctionTime)
	assert.Equal(t, "2025-03-31", *got.SecondAuctionDate)
	assert.Equal(t, "08:30", *got.SecondAuctionTime)
	assert.Nil(t, got.ThirdAuctionDate)
	assert.Nil(t, got.ThirdAuctionTime)

	assert.Equal(t, "Proceso Ejecución Hipotecaria", *got.CaseType)
	assert.Equal(t, "19-000123-1158-CJ", *got.CaseNumber)
	assert.Equal(t, "Banco Nacional De Costa Rica", *got.Plaintiff)
	assert.Equal(t, "Juan Pérez", *got.Defendant)
	assert.Equal(t, "Juzgado De Cobro De Desamparados", *got.Court)
	assert.Nil(t, got.Judge)

	assert.Equal(t, "  texto original  \n", got.RawText)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := New(location.New())
	once := n.Normalize(rawRecord())
	twice := n.Normalize(once)
	assert.Equal(t, once, twice)

	empty := n.Normalize(model.Remate{Matricula: "SIN-MAT-1-abc"})
	assert.Equal(t, empty, n.Normalize(empty))
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := rawRecord()
	_ = New(nil).Normalize(in)
	assert.Equal(t, "SAN JOSE", *in.Provincia)
	assert.Equal(t, "3-Desamparados", *in.Canton)
	assert.InDelta(t, 4000050, *in.BasePriceNumeric, 0.001)
}

func TestNormalizeWithoutGazetteer(t *testing.T) {
	got := New(nil).Normalize(rawRecord())
	assert.Equal(t, "San Jose", *got.Provincia)
	assert.Nil(t, got.CadastralCode)
}

func TestNormalizeCantonScenario(t *testing.T) {
	got := New(nil).Normalize(model.Remate{Canton: str("3-Desamparados")})
	assert.Equal(t, "Desamparados", *got.Canton)
}

func TestNormalizeKeepsExtractedPriceWhenTextDoesNotParse(t *testing.T) {
	got := New(nil).Normalize(model.Remate{
		BasePriceText:    str("la suma indicada en autos"),
		BasePriceNumeric: num(1250000),
		SecondAuctionBaseText: str("₡937.500,00"),
		ThirdAuctionBase:      num(312500),
	})
	assert.InDelta(t, 1250000, *got.BasePriceNumeric, 0.001)
	assert.InDelta(t, 937500, *got.SecondAuctionBase, 0.001)
	assert.InDelta(t, 312500, *got.ThirdAuctionBase, 0.001)
	assert.Nil(t, got.Currency)
}

func TestNormalizeMixedWordDigitPrices(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"cuatro millones de colones con 00/100", 4000000},
		{"setenta y cinco mil dólares con 50 centavos", 75000.50},
		{"Cuatro millones con cincuenta céntimos", 4000000.50},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := New(nil).Normalize(model.Remate{
				BasePriceText:    str(tt.text),
				BasePriceNumeric: num(4000000),
			})
			require.NotNil(t, got.BasePriceNumeric)
			assert.InDelta(t, tt.want, *got.BasePriceNumeric, 0.001)
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		name string
		cur  *model.Currency
		text *string
		want *model.Currency
	}{
		{"canonical usd", ptr(model.CurrencyUSD), nil, ptr(model.CurrencyUSD)},
		{"word dolares", ptr(model.Currency("dólares")), nil, ptr(model.CurrencyUSD)},
		{"lowercase crc", ptr(model.Currency("crc")), nil, ptr(model.CurrencyCRC)},
		{"inferred from text", nil, str("$125,000.00"), ptr(model.CurrencyUSD)},
		{"inferred colon symbol", nil, str("₡4.000.000"), ptr(model.CurrencyCRC)},
		{"unknown", ptr(model.Currency("EUR")), str("cien mil"), nil},
		{"absent", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(nil).Normalize(model.Remate{Currency: tt.cur, BasePriceText: tt.text})
			assert.Equal(t, tt.want, got.Currency)
		})
	}
}

func TestFincaID(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"627947-000", str("627947")},
		{"627947-00", str("627947")},
		{"627947-0", str("627947")},
		{"627947-", str("627947")},
		{"627947-001", str("627947-001")},
		{"627947-F", str("627947-F")},
		{"627947 F", str("627947-F")},
		{"627947 - 000", str("627947")},
		{"123-000", str("123")},
		{"627947", str("627947")},
		{"", nil},
		{"SIN-MAT-1700000000-ab12cd34", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FincaID(tt.in))
		})
	}
}

func TestFincaIDIsIdempotent(t *testing.T) {
	for _, m := range []string{"627947-000", "123-0-00", "55-", "627947-001", "9"} {
		first := FincaID(m)
		require.NotNil(t, first, m)
		assert.Equal(t, first, FincaID(*first), m)
	}
}

func TestCleanNaturaleza(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"LOTE 5, TERRENO PARA CONSTRUIR", str("TERRENO PARA CONSTRUIR")},
		{"TERRENO CON UNA CASA FINCA FILIAL 12, DESTINADA A VIVIENDA", str("TERRENO CON UNA CASA")},
		{"BLOQUE B TERRENO DE CULTIVO", str("TERRENO DE CULTIVO")},
		{"terreno   de   pastos", str("terreno de pastos")},
		{"LOTE 12", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanNaturaleza(str(tt.in)))
		})
	}
}

func TestNormalizeCanonicalMatricula(t *testing.T) {
	n := New(nil)
	for _, m := range []string{"627947-F", "627947 F", "627947F", " 627947 - f "} {
		got := n.Normalize(model.Remate{Matricula: m})
		assert.Equal(t, "627947-F", got.Matricula, m)
		require.NotNil(t, got.FincaID, m)
		assert.Equal(t, "627947-F", *got.FincaID, m)
		assert.Equal(t, got, n.Normalize(got), m)
	}
}
