package exam

import (
	"fmt"
	"sort"

	"github.com/gokatarajesh/lgs-tracker/internal/curriculum"
	"github.com/gokatarajesh/lgs-tracker/internal/scoring"
)

// Composite is the weighted LGS score of one exam attempt.
type Composite struct {
	Score float64 `json:"score"`
	// Skipped lists subjects that had no reference data and did not contribute.
	Skipped []string `json:"skipped,omitempty"`
}

// SubjectResult is the per-subject line of an exam breakdown.
type SubjectResult struct {
	Subject      string               `json:"subject"`
	Score        scoring.SubjectScore `json:"score"`
	Net          float64              `json:"net"`
	MaxQuestions int                  `json:"max_questions"`
	// NetRate is net/maxQuestions as a percentage.
	NetRate float64 `json:"net_rate"`
}

// Scorer computes exam-level scores against a subject catalog.
type Scorer struct {
	catalog *curriculum.Catalog
	divisor float64
}

// NewScorer creates a scorer. A non-positive divisor falls back to the mock exam divisor.
func NewScorer(catalog *curriculum.Catalog, divisor float64) *Scorer {
	if divisor <= 0 {
		divisor = scoring.ExamDivisor
	}
	return &Scorer{catalog: catalog, divisor: divisor}
}

// Divisor returns the penalty divisor the scorer applies.
func (s *Scorer) Divisor() float64 {
	return s.divisor
}

// Catalog returns the subject catalog.
func (s *Scorer) Catalog() *curriculum.Catalog {
	return s.catalog
}

// WeightedTotal scores the attempt against the scorer's own catalog.
func (s *Scorer) WeightedTotal(scores map[string]scoring.SubjectScore) (Composite, error) {
	return WeightedTotal(scores, s.catalog.Meta(), s.divisor)
}

// WeightedTotal sums net*weight over subjects present in both maps and rounds
// to one decimal place. Subjects without meta are skipped and reported.
func WeightedTotal(scores map[string]scoring.SubjectScore, meta map[string]curriculum.Subject, divisor float64) (Composite, error) {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	// Fixed summation order keeps the float result independent of map iteration.
	sort.Strings(names)

	var (
		total   float64
		skipped []string
	)
	for _, name := range names {
		info, ok := meta[name]
		if !ok {
			skipped = append(skipped, name)
			continue
		}
		net, err := scores[name].Net(divisor)
		if err != nil {
			return Composite{}, fmt.Errorf("subject %q: %w", name, err)
		}
		total += net * info.Weight
	}

	return Composite{Score: scoring.RoundTo(total, 1), Skipped: skipped}, nil
}

// TotalNet sums unweighted nets over the catalog subjects. Missing subjects count as zero.
func (s *Scorer) TotalNet(scores map[string]scoring.SubjectScore) (float64, error) {
	var total float64
	for _, subject := range s.catalog.Subjects() {
		score, ok := scores[subject.Name]
		if !ok {
			continue
		}
		net, err := score.Net(s.divisor)
		if err != nil {
			return 0, fmt.Errorf("subject %q: %w", subject.Name, err)
		}
		total += net
	}
	return total, nil
}

// MaxQuestions returns the section size of a subject.
func (s *Scorer) MaxQuestions(subject string) (int, bool) {
	return s.catalog.MaxQuestions(subject)
}

// Breakdown returns one line per catalog subject, in curriculum order.
func (s *Scorer) Breakdown(scores map[string]scoring.SubjectScore) ([]SubjectResult, error) {
	subjects := s.catalog.Subjects()
	out := make([]SubjectResult, 0, len(subjects))
	for _, subject := range subjects {
		score := scores[subject.Name]
		net, err := score.Net(s.divisor)
		if err != nil {
			return nil, fmt.Errorf("subject %q: %w", subject.Name, err)
		}
		out = append(out, SubjectResult{
			Subject:      subject.Name,
			Score:        score,
			Net:          net,
			MaxQuestions: subject.MaxQuestions,
			NetRate:      net / float64(subject.MaxQuestions) * 100,
		})
	}
	return out, nil
}
