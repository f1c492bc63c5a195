package extract

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sells-group/remates-cli/internal/model"
)

// flexFloat accepts a JSON number, a numeric string or null.
type flexFloat struct {
	v *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		f.v = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			f.v = nil
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Non-numeric strings are left to the text field.
			f.v = nil
			return nil
		}
		f.v = &n
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	f.v = &n
	return nil
}

// response is the JSON object the completion service is asked to return.
type response struct {
	Matricula             *string   `json:"matricula"`
	BasePriceText         *string   `json:"base_price_text"`
	BasePriceNumeric      flexFloat `json:"base_price_numeric"`
	Currency              *string   `json:"currency"`
	Naturaleza            *string   `json:"naturaleza"`
	Provincia             *string   `json:"provincia"`
	Canton                *string   `json:"canton"`
	Distrito              *string   `json:"distrito"`
	Colindancias          *string   `json:"colindancias"`
	AreaText              *string   `json:"area_text"`
	AreaNumeric           flexFloat `json:"area_numeric"`
	FirstAuctionDate      *string   `json:"first_auction_date"`
	FirstAuctionTime      *string   `json:"first_auction_time"`
	SecondAuctionDate     *string   `json:"second_auction_date"`
	SecondAuctionTime     *string   `json:"second_auction_time"`
	SecondAuctionBaseText *string   `json:"second_auction_base_text"`
	SecondAuctionBase     flexFloat `json:"second_auction_base"`
	ThirdAuctionDate      *string   `json:"third_auction_date"`
	ThirdAuctionTime      *string   `json:"third_auction_time"`
	ThirdAuctionBaseText  *string   `json:"third_auction_base_text"`
	ThirdAuctionBase      flexFloat `json:"third_auction_base"`
	CaseType              *string   `json:"case_type"`
	CaseNumber            *string   `json:"case_number"`
	Plaintiff             *string   `json:"plaintiff"`
	Defendant             *string   `json:"defendant"`
	Court                 *string   `json:"court"`
	Judge                 *string   `json:"judge"`
}

// identifier returns the trimmed matrícula, or "" when absent.
func (r *response) identifier() string {
	if r.Matricula == nil {
		return ""
	}
	m := strings.TrimSpace(*r.Matricula)
	if strings.EqualFold(m, "null") {
		return ""
	}
	return m
}

// substantive reports whether the object carries anything besides the
// identifier.
func (r *response) substantive() bool {
	for _, s := range []*string{
		r.BasePriceText, r.Naturaleza, r.Provincia, r.Canton, r.Distrito,
		r.Colindancias, r.AreaText, r.FirstAuctionDate, r.SecondAuctionDate,
		r.ThirdAuctionDate, r.CaseType, r.CaseNumber, r.Plaintiff,
		r.Defendant, r.Court, r.Judge,
	} {
		if s != nil && strings.TrimSpace(*s) != "" && !strings.EqualFold(strings.TrimSpace(*s), "null") {
			return true
		}
	}
	return r.BasePriceNumeric.v != nil || r.AreaNumeric.v != nil
}

func (r *response) toRemate(matricula string) model.Remate {
	out := model.Remate{
		Matricula:             matricula,
		Provincia:             r.Provincia,
		Canton:                r.Canton,
		Distrito:              r.Distrito,
		Naturaleza:            r.Naturaleza,
		Colindancias:          r.Colindancias,
		AreaText:              r.AreaText,
		AreaNumeric:           r.AreaNumeric.v,
		BasePriceText:         r.BasePriceText,
		BasePriceNumeric:      r.BasePriceNumeric.v,
		FirstAuctionDate:      r.FirstAuctionDate,
		FirstAuctionTime:      r.FirstAuctionTime,
		SecondAuctionDate:     r.SecondAuctionDate,
		SecondAuctionTime:     r.SecondAuctionTime,
		SecondAuctionBaseText: r.SecondAuctionBaseText,
		SecondAuctionBase:     r.SecondAuctionBase.v,
		ThirdAuctionDate:      r.ThirdAuctionDate,
		ThirdAuctionTime:      r.ThirdAuctionTime,
		ThirdAuctionBaseText:  r.ThirdAuctionBaseText,
		ThirdAuctionBase:      r.ThirdAuctionBase.v,
		CaseType:              r.CaseType,
		CaseNumber:            r.CaseNumber,
		Plaintiff:             r.Plaintiff,
		Defendant:             r.Defendant,
		Court:                 r.Court,
		Judge:                 r.Judge,
	}
	if r.Currency != nil {
		c := model.Currency(*r.Currency)
		out.Currency = &c
	}
	return out
}

// cleanJSON strips markdown fences and returns the outermost {...} span, or
// "" when the text holds no object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}
