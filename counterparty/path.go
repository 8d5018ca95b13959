package counterparty

import (
	"time"

	"github.com/meenmo/credlib/curve"
	"github.com/meenmo/credlib/grid"
)

// Path memoizes the joint survival JS(anchor, t) for a forward walk over
// increasing dates. Each new date extends the last computed point instead of
// restarting at the anchor. A Path is not safe for concurrent use.
type Path struct {
	anchor   time.Time
	survival curve.SurvivalCurve
	cp       curve.SurvivalCurve
	corr     float64
	step     grid.Step

	lastT time.Time
	lastV float64
	memo  map[time.Time]float64
}

// NewPath starts a joint survival path at anchor.
func NewPath(anchor time.Time, survival, cp curve.SurvivalCurve, corr float64, step grid.Step) *Path {
	return &Path{
		anchor:   anchor,
		survival: survival,
		cp:       cp,
		corr:     corr,
		step:     step,
		lastT:    anchor,
		lastV:    1,
		memo:     map[time.Time]float64{},
	}
}

// At returns JS(anchor, t); 1 for t on or before the anchor.
func (p *Path) At(t time.Time) float64 {
	if !t.After(p.anchor) {
		return 1
	}
	if p.cp == nil {
		return p.survival.SurvivalProb(p.anchor, t)
	}
	if v, ok := closedForm(p.anchor, t, p.survival, p.cp, p.corr); ok {
		return v
	}
	if v, ok := p.memo[t]; ok {
		return v
	}
	var v float64
	if t.After(p.lastT) {
		v = p.lastV * OverallSurvivalProbability(p.lastT, t, p.survival, p.cp, p.corr, p.step)
		p.lastT, p.lastV = t, v
	} else {
		v = OverallSurvivalProbability(p.anchor, t, p.survival, p.cp, p.corr, p.step)
	}
	p.memo[t] = v
	return v
}
