package scheduling

import (
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/Xevion/go-buzz/types"
	"github.com/dromara/carbon/v2"
)

// Plan combines the configured daily times into a single schedule.
type Plan struct {
	triggers []*FixedTimeTrigger // sorted, no duplicates
}

// NewPlan builds a plan from times. Duplicates are dropped.
func NewPlan(times []types.BuzzTime) *Plan {
	sorted := types.SortBuzzTimes(times)
	p := &Plan{triggers: make([]*FixedTimeTrigger, 0, len(sorted))}
	for _, t := range sorted {
		p.triggers = append(p.triggers, NewFixedTimeTrigger(t))
	}
	return p
}

func (p *Plan) Len() int {
	return len(p.triggers)
}

// Times returns the plan's times in chronological order.
func (p *Plan) Times() []types.BuzzTime {
	out := make([]types.BuzzTime, len(p.triggers))
	for i, t := range p.triggers {
		out[i] = t.BuzzTime()
	}
	return out
}

// Contains reports whether b is part of the plan.
func (p *Plan) Contains(b types.BuzzTime) bool {
	i := sort.Search(len(p.triggers), func(i int) bool { return p.triggers[i].minutes() >= b.Minutes() })
	return i < len(p.triggers) && p.triggers[i].minutes() == b.Minutes()
}

// Next returns the first time whose minute is strictly after the minute of now,
// wrapping to the earliest time when none is left today. The current minute
// counts as elapsed. ok is false for an empty plan.
func (p *Plan) Next(now time.Time) (next types.BuzzTime, at time.Time, ok bool) {
	if len(p.triggers) == 0 {
		return types.BuzzTime{}, time.Time{}, false
	}

	c := carbon.NewCarbon(now)
	current := c.Hour()*60 + c.Minute()

	pick := p.triggers[0]
	for _, t := range p.triggers {
		if t.minutes() > current {
			pick = t
			break
		}
	}

	return pick.BuzzTime(), *pick.NextTime(now), true
}

// NextTime implements Trigger.
func (p *Plan) NextTime(now time.Time) *time.Time {
	_, at, ok := p.Next(now)
	if !ok {
		return nil
	}
	return &at
}

// Hash returns a stable hash value for the Plan
func (p *Plan) Hash() uint64 {
	h := fnv.New64()
	for _, trigger := range p.triggers {
		fmt.Fprintf(h, "%d", trigger.Hash())
	}
	return h.Sum64()
}
