package progress

import "math"

// Goal is progress toward a daily or weekly test target.
type Goal struct {
	Done    int  `json:"done"`
	Target  int  `json:"target"`
	Percent int  `json:"percent"`
	Met     bool `json:"met"`
}

// GoalProgress caps the percentage at 100. A non-positive target counts as met.
func GoalProgress(done, target int) Goal {
	g := Goal{Done: done, Target: target}
	if target <= 0 {
		g.Percent = 100
		g.Met = true
		return g
	}
	g.Percent = int(math.Min(100, math.Round(float64(done)/float64(target)*100)))
	g.Met = done >= target
	return g
}
