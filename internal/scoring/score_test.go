package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNet(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		wrong   int
		divisor float64
		want    float64
	}{
		{"practice test", 15, 5, PracticeDivisor, 13.75},
		{"mock exam", 16, 3, ExamDivisor, 15},
		{"floored at zero", 1, 12, ExamDivisor, 0},
		{"nothing answered", 0, 0, PracticeDivisor, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Net(tt.correct, tt.wrong, tt.divisor)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNetNeverNegative(t *testing.T) {
	for correct := 0; correct <= 20; correct++ {
		for wrong := 0; wrong <= 40; wrong++ {
			for _, divisor := range []float64{1, 3, 4, 0.5} {
				got, err := Net(correct, wrong, divisor)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, got, 0.0)
			}
		}
	}
}

func TestNetRejectsInvalidInput(t *testing.T) {
	_, err := Net(-1, 0, PracticeDivisor)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Net(3, -2, PracticeDivisor)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Net(3, 2, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSuccessRate(t *testing.T) {
	rate, err := SuccessRate(15, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 75, rate)

	rate, err = SuccessRate(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 33, rate)

	rate, err = SuccessRate(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, rate)

	_, err = SuccessRate(0, 0, -4)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSuccessRateZeroForEmptyAnswersOnly(t *testing.T) {
	for empty := 0; empty < 25; empty++ {
		rate, err := SuccessRate(0, 0, empty)
		require.NoError(t, err)
		assert.Equal(t, 0, rate)
	}
}

func TestPerformanceBand(t *testing.T) {
	assert.Equal(t, BandLow, PerformanceBand(0))
	assert.Equal(t, BandLow, PerformanceBand(49))
	assert.Equal(t, BandMedium, PerformanceBand(50))
	assert.Equal(t, BandMedium, PerformanceBand(74))
	assert.Equal(t, BandHigh, PerformanceBand(75))
	assert.Equal(t, BandHigh, PerformanceBand(100))
}

func TestPerformanceBandPartition(t *testing.T) {
	counts := map[Band]int{}
	for rate := 0; rate <= 100; rate++ {
		counts[PerformanceBand(rate)]++
	}
	assert.Equal(t, 50, counts[BandLow])
	assert.Equal(t, 25, counts[BandMedium])
	assert.Equal(t, 26, counts[BandHigh])
}

func TestSubjectScoreScenario(t *testing.T) {
	s := SubjectScore{Correct: 15, Wrong: 5, Empty: 0}

	net, err := s.Net(PracticeDivisor)
	require.NoError(t, err)
	assert.InDelta(t, 13.75, net, 1e-9)

	rate, err := s.SuccessRate()
	require.NoError(t, err)
	assert.Equal(t, 75, rate)
	assert.Equal(t, BandHigh, PerformanceBand(rate))
}

func TestSum(t *testing.T) {
	total, err := Sum(
		SubjectScore{Correct: 10, Wrong: 2, Empty: 8},
		SubjectScore{Correct: 5, Wrong: 5, Empty: 0},
	)
	require.NoError(t, err)
	assert.Equal(t, SubjectScore{Correct: 15, Wrong: 7, Empty: 8}, total)
	assert.Equal(t, 30, total.Total())

	_, err = Sum(SubjectScore{Correct: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPenaltyPolicy(t *testing.T) {
	p := DefaultPenaltyPolicy()
	assert.NoError(t, p.Validate())
	assert.Equal(t, 4.0, p.Practice)
	assert.Equal(t, 3.0, p.Exam)

	p.Exam = 0
	assert.ErrorIs(t, p.Validate(), ErrInvalidInput)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 111.7, RoundTo(111.666, 1))
	assert.Equal(t, 13.75, RoundTo(13.7499999, 2))
}
