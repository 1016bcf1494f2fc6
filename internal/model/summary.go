package model

import "github.com/nao1215/qrreader/internal/outcome"

// Summary aggregates a set of read reports.
type Summary struct {
	// Total is the number of reads.
	Total int `json:"total"`

	// Succeeded is the number of reads that decoded a QR symbol.
	Succeeded int `json:"succeeded"`

	// Failed is the number of reads that ended in any failure kind.
	Failed int `json:"failed"`

	// ByKind counts failures per kind name, e.g. "ParseError".
	ByKind map[string]int `json:"by_kind,omitempty"`
}

// Summarize counts reports by outcome. Nil entries are skipped.
func Summarize(reports []*ReadReport) Summary {
	s := Summary{ByKind: make(map[string]int)}
	for _, r := range reports {
		if r == nil {
			continue
		}
		s.Total++
		if r.Succeeded() {
			s.Succeeded++
			continue
		}
		s.Failed++
		s.ByKind[r.Outcome.Kind().String()]++
	}
	return s
}

// FailedKinds returns the failure kinds present in s ordered by code.
func (s Summary) FailedKinds() []outcome.Kind {
	kinds := make([]outcome.Kind, 0, len(s.ByKind))
	for _, e := range outcome.Catalog() {
		if s.ByKind[e.Name] > 0 {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}
