package report

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"call-recon-go/internal/types"
)

// Status strings can carry both words ("Answered, Unanswered") when the
// provider concatenates leg outcomes, so plain substring checks lie.
var (
	answeredRe   = regexp.MustCompile(`\banswered\b`)
	unansweredRe = regexp.MustCompile(`\bunanswered\b`)
)

// CallType classifies a billing direction string as inbound, outbound
// or internal; unknown directions yield "".
func CallType(direction string) string {
	d := strings.ToLower(direction)
	switch {
	case strings.Contains(d, "inbound"):
		return "inbound"
	case strings.Contains(d, "outbound"):
		return "outbound"
	case strings.Contains(d, "internal"):
		return "internal"
	}
	return ""
}

// IsAnswered reports whether a status string describes an answered
// call. A call is unanswered only when the status says so and never
// says answered on its own.
func IsAnswered(status string) bool {
	s := strings.ToLower(status)
	return !(unansweredRe.MatchString(s) && !answeredRe.MatchString(s))
}

// Insight is the per-site aggregate over one enriched batch.
type Insight struct {
	TotalCalls    map[string]int             `json:"total_calls"`
	MatchedCalls  map[string]int             `json:"matched_calls"`
	InboundCalls  map[string]int             `json:"inbound_calls"`
	OutboundCalls map[string]int             `json:"outbound_calls"`
	AnsweredCalls map[string]int             `json:"answered_calls"`
	CostBySite    map[string]decimal.Decimal `json:"cost_by_site"`
}

// Aggregate rolls an enriched batch up by site. Rows with no site land
// under the empty key so totals still add up.
func Aggregate(rows []types.EnrichedRecord) Insight {
	ins := Insight{
		TotalCalls:    map[string]int{},
		MatchedCalls:  map[string]int{},
		InboundCalls:  map[string]int{},
		OutboundCalls: map[string]int{},
		AnsweredCalls: map[string]int{},
		CostBySite:    map[string]decimal.Decimal{},
	}
	for _, r := range rows {
		site := r.Site
		ins.TotalCalls[site]++
		if r.Filename != "" {
			ins.MatchedCalls[site]++
		}
		switch CallType(r.Direction) {
		case "inbound":
			ins.InboundCalls[site]++
		case "outbound":
			ins.OutboundCalls[site]++
		}
		if IsAnswered(r.Status) {
			ins.AnsweredCalls[site]++
		}
		ins.CostBySite[site] = ins.CostBySite[site].Add(r.Cost)
	}
	return ins
}
