package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for negative answer counts or a non-positive penalty divisor.
var ErrInvalidInput = errors.New("invalid input")

// Penalty divisors used by LGS: a practice test drops 1/4 net per wrong answer,
// a full mock exam drops 1/3.
const (
	PracticeDivisor = 4.0
	ExamDivisor     = 3.0
)

// PenaltyPolicy holds the penalty divisor for each scoring context.
type PenaltyPolicy struct {
	Practice float64 // default: 4
	Exam     float64 // default: 3
}

// DefaultPenaltyPolicy returns production defaults.
func DefaultPenaltyPolicy() PenaltyPolicy {
	return PenaltyPolicy{
		Practice: PracticeDivisor,
		Exam:     ExamDivisor,
	}
}

// Validate rejects non-positive divisors.
func (p PenaltyPolicy) Validate() error {
	if p.Practice <= 0 {
		return fmt.Errorf("practice divisor %v: %w", p.Practice, ErrInvalidInput)
	}
	if p.Exam <= 0 {
		return fmt.Errorf("exam divisor %v: %w", p.Exam, ErrInvalidInput)
	}
	return nil
}

// SubjectScore is the answer triple of a single subject.
type SubjectScore struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Empty   int `json:"empty"`
}

// Total returns the number of questions seen.
func (s SubjectScore) Total() int {
	return s.Correct + s.Wrong + s.Empty
}

// Validate rejects negative counts.
func (s SubjectScore) Validate() error {
	return checkCounts(s.Correct, s.Wrong, s.Empty)
}

// Net is shorthand for Net(s.Correct, s.Wrong, divisor).
func (s SubjectScore) Net(divisor float64) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return Net(s.Correct, s.Wrong, divisor)
}

// SuccessRate is shorthand for SuccessRate(s.Correct, s.Wrong, s.Empty).
func (s SubjectScore) SuccessRate() (int, error) {
	return SuccessRate(s.Correct, s.Wrong, s.Empty)
}

// Net computes correct - wrong/divisor, floored at zero.
func Net(correct, wrong int, divisor float64) (float64, error) {
	if err := checkCounts(correct, wrong, 0); err != nil {
		return 0, err
	}
	if divisor <= 0 || math.IsNaN(divisor) || math.IsInf(divisor, 0) {
		return 0, fmt.Errorf("penalty divisor %v: %w", divisor, ErrInvalidInput)
	}
	return math.Max(0, float64(correct)-float64(wrong)/divisor), nil
}

// SuccessRate returns round(correct/total*100), or 0 when nothing was answered.
func SuccessRate(correct, wrong, empty int) (int, error) {
	if err := checkCounts(correct, wrong, empty); err != nil {
		return 0, err
	}
	total := correct + wrong + empty
	if total == 0 {
		return 0, nil
	}
	return int(math.Round(float64(correct) / float64(total) * 100)), nil
}

// Sum adds up answer triples, e.g. for "all tests of a subject" totals.
func Sum(scores ...SubjectScore) (SubjectScore, error) {
	var out SubjectScore
	for i, s := range scores {
		if err := s.Validate(); err != nil {
			return SubjectScore{}, fmt.Errorf("score %d: %w", i, err)
		}
		out.Correct += s.Correct
		out.Wrong += s.Wrong
		out.Empty += s.Empty
	}
	return out, nil
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func checkCounts(correct, wrong, empty int) error {
	switch {
	case correct < 0:
		return fmt.Errorf("correct count %d: %w", correct, ErrInvalidInput)
	case wrong < 0:
		return fmt.Errorf("wrong count %d: %w", wrong, ErrInvalidInput)
	case empty < 0:
		return fmt.Errorf("empty count %d: %w", empty, ErrInvalidInput)
	}
	return nil
}
