package dashboard

import "github.com/gokatarajesh/lgs-tracker/internal/listing"

var resultSortKeys = map[string]listing.Key[ResultRow]{
	"date": {
		Name:    "date",
		Compare: func(a, b ResultRow) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
	"course":       listing.By("course", func(r ResultRow) string { return r.Subject }),
	"correct":      listing.By("correct", func(r ResultRow) int { return r.Score.Correct }),
	"wrong":        listing.By("wrong", func(r ResultRow) int { return r.Score.Wrong }),
	"empty":        listing.By("empty", func(r ResultRow) int { return r.Score.Empty }),
	"net":          listing.By("net", func(r ResultRow) float64 { return r.Net }),
	"success_rate": listing.By("success_rate", func(r ResultRow) int { return r.SuccessRate }),
}

var examSortKeys = map[string]listing.Key[ExamView]{
	"date": {
		Name:    "date",
		Compare: func(a, b ExamView) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
	"totalNet":  listing.By("totalNet", func(e ExamView) float64 { return e.TotalNet }),
	"composite": listing.By("composite", func(e ExamView) float64 { return e.Composite.Score }),
}
