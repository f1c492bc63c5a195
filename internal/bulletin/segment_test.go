package bulletin

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const propertyEntry = ` 2025123456 Con una base de cuatro millones de colones exactos, sáquese a remate la finca del partido de San José, matrícula número 627947-000, derecho 000, la cual es terreno para construir. COLINDA: norte, calle pública. MIDE: 250 METROS CUADRADOS.`

const vehicleEntry = ` 2025765432 Con una base de dos millones de colones, sáquese a remate el vehículo placa ABC123, Marca: TOYOTA, Cilindrada: 1500.`

const probateEntry = ` 2025999999 Se cita a herederos e interesados en el proceso Sucesorio de quien en vida fue Juan Pérez. CAUSAHABIENTES.`

func sampleBulletin() string {
	return "BOLETÍN JUDICIAL N° 42\n" +
		Anchor + propertyEntry + "\n" +
		Anchor + vehicleEntry + "\n" +
		Anchor + "   \n" +
		Anchor + probateEntry + "\n" +
		Anchor + strings.Replace(propertyEntry, "627947-000", "118800-001", 1)
}

func TestSplitEntriesRoundTrip(t *testing.T) {
	inputs := []string{
		sampleBulletin(),
		"",
		"no anchors at all",
		Anchor,
		Anchor + Anchor + "x" + Anchor,
	}
	for _, in := range inputs {
		assert.Equal(t, in, strings.Join(SplitEntries(in), Anchor))
	}
}

func TestIsPropertyAuction(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"property notice", propertyEntry, true},
		{"vehicle notice", vehicleEntry, false},
		{"probate notice", probateEntry, false},
		{"no include pattern", "Edicto de notificación general", false},
		{"boundary marker only", "COLINDA: norte con calle", true},
		{"area marker", "MIDE: 120,50 METROS CUADRADOS", true},
		{"case insensitive include", "Sáquese A Remate La Finca 1", true},
		{"plate excludes boundary marker", "COLINDA: norte, placa ABC123 en garaje", false},
		{"disciplinary", "matrícula número 123456-000 proceso disciplinario", false},
		{"notarial", "EJECUCIÓN HIPOTECARIA ante Juzgado Notarial", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPropertyAuction(tt.text))
		})
	}
}

func TestExcludeDominatesEveryInclude(t *testing.T) {
	includes := []string{
		"sáquese a remate la finca", "finca del partido de", "matrícula número",
		"EJECUCIÓN HIPOTECARIA", "COLINDA:", "MIDE: 10 METROS CUADRADOS",
	}
	excludes := []string{
		"sáquese a remate el vehículo", "placa BCD1234", "Marca: N", "# de Chasis:",
		"Cilindrada:", "INFORMACIÓN POSESORIA", "Juzgado Notarial", "proceso disciplinario",
		"denuncia por el mal actuar", "Dirección Nacional de Notariado", "Sucesorio", "CAUSAHABIENTES",
	}
	for _, inc := range includes {
		require.True(t, IsPropertyAuction(inc), inc)
		for _, exc := range excludes {
			assert.False(t, IsPropertyAuction(inc+" "+exc), "%s + %s", inc, exc)
		}
	}
}

func TestReference(t *testing.T) {
	ref, ok := Reference(propertyEntry)
	assert.True(t, ok)
	assert.Equal(t, "2025123456", ref)

	_, ok = Reference("only 123456789 nine digits")
	assert.False(t, ok)
}

func TestSegment(t *testing.T) {
	got := slices.Collect(Segment(sampleBulletin()))
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 1, got[0].Entry)
	assert.Equal(t, "2025123456", got[0].Reference)
	assert.Equal(t, strings.TrimSpace(propertyEntry), got[0].Text)

	assert.Equal(t, 2, got[1].Index)
	assert.Equal(t, 5, got[1].Entry)
	assert.Contains(t, got[1].Text, "118800-001")
}

func TestSegmentIsRestartable(t *testing.T) {
	seq := Segment(sampleBulletin())
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
}

func TestSegmentStopsEarly(t *testing.T) {
	n := 0
	for range Segment(sampleBulletin()) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestSegmentWithoutReference(t *testing.T) {
	got := slices.Collect(Segment(Anchor + " COLINDA: norte con río"))
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Reference)
}

func TestCountEntries(t *testing.T) {
	assert.Equal(t, 5, CountEntries(sampleBulletin()))
	assert.Equal(t, 0, CountEntries("  "))
}

func TestPreview(t *testing.T) {
	long := Anchor + " 2025000001 COLINDA: " + strings.Repeat("á", 400)
	res := Preview(sampleBulletin() + "\n" + long)

	assert.Equal(t, 6, res.Entries)
	require.Equal(t, 3, res.Total)
	require.Len(t, res.Candidates, 3)

	assert.Equal(t, "627947-000", res.Candidates[0].Matricula)
	assert.Equal(t, strings.TrimSpace(propertyEntry), res.Candidates[0].Preview)

	last := res.Candidates[2]
	assert.Equal(t, "2025000001", last.Reference)
	assert.True(t, strings.HasSuffix(last.Preview, "..."))
	assert.Equal(t, 303, len([]rune(last.Preview)))
	assert.Equal(t, len([]rune(strings.TrimSpace(long[len(Anchor):]))), last.Chars)
}

func TestPreviewEmpty(t *testing.T) {
	res := Preview("nothing here")
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Candidates)
}
