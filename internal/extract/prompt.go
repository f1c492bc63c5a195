package extract

import (
	"fmt"
	"strings"
)

const systemPrompt = `Eres un asistente especializado en extraer datos estructurados de documentos legales. Respondes únicamente con JSON válido, sin explicaciones.`

const instructions = `Del siguiente edicto de remate judicial de Costa Rica extrae toda la información disponible.

Reglas:
- matricula: solo si aparece explícita en el texto (formato típico "627947-000"); si no existe, null.
- provincia: nombre oficial con mayúscula inicial ("San José", "Limón"), nunca todo en mayúsculas.
- canton y distrito: sin numeración al inicio ("3-Desamparados" es "Desamparados").
- naturaleza: descripción del inmueble sin lote, bloque ni finca filial.
- colindancias: "NORTE: ..., SUR: ..., ESTE: ..., OESTE: ...".
- fechas en formato YYYY-MM-DD ("dos de febrero de dos mil veintiséis" es "2026-02-02").
- horas en formato HH:MM de 24 horas ("trece horas cincuenta minutos" es "13:50").
- precios: copia el texto exacto en *_text y el valor en el campo numérico. Los céntimos son decimales: "cuatro millones con cincuenta céntimos" es 4000000.50, no 4000050. "millones" implica siete cifras o más; "mil", de cuatro a seis.
- currency: "USD" si menciona dólares, "CRC" si son colones.
- Usa null para todo dato ausente.`

const schema = `{
  "matricula": "string o null",
  "base_price_text": "string o null",
  "base_price_numeric": "number o null",
  "currency": "USD | CRC | null",
  "naturaleza": "string o null",
  "provincia": "string o null",
  "canton": "string o null",
  "distrito": "string o null",
  "colindancias": "string o null",
  "area_text": "string o null",
  "area_numeric": "number o null",
  "first_auction_date": "YYYY-MM-DD o null",
  "first_auction_time": "HH:MM o null",
  "second_auction_date": "YYYY-MM-DD o null",
  "second_auction_time": "HH:MM o null",
  "second_auction_base_text": "string o null",
  "second_auction_base": "number o null",
  "third_auction_date": "YYYY-MM-DD o null",
  "third_auction_time": "HH:MM o null",
  "third_auction_base_text": "string o null",
  "third_auction_base": "number o null",
  "case_type": "string o null",
  "case_number": "string o null",
  "plaintiff": "string o null",
  "defendant": "string o null",
  "court": "string o null",
  "judge": "string o null"
}`

// buildPrompt renders the user message for one notice.
func buildPrompt(rawText, bulletin string) string {
	var b strings.Builder
	b.WriteString(instructions)
	if bulletin != "" {
		fmt.Fprintf(&b, "\n\nBoletín Judicial número %s.", bulletin)
	}
	b.WriteString("\n\nTEXTO DEL REMATE:\n")
	b.WriteString(rawText)
	b.WriteString("\n\nResponde únicamente con un objeto JSON con esta estructura:\n")
	b.WriteString(schema)
	return b.String()
}
