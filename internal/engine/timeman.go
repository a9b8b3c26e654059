package engine

import "time"

// Limit is the search budget object (spec §3), grounded directly on
// original_source/src/search.h's Limit struct and its start()/outOfTime()/
// outOfTimeSoft() formulas.
type Limit struct {
	DepthCap int
	HardNodes uint64
	SoftNodes uint64
	UseSoftNodes bool

	MoveTimeMS int64 // explicit "movetime" if set, 0 otherwise
	ClockMS    int64 // remaining clock time ("ctime")
	IncMS      int64
	Infinite   bool

	movetime int64 // computed hard bound, ms
	softtime int64 // computed soft bound, ms

	startedAt time.Time

	// NodeCounts tracks, per root move (from<<6|to, masked to 4095), how
	// many nodes were spent searching under it, feeding outOfTimeSoft's
	// node-TM scaling.
	NodeCounts [4096]uint64
}

// Start records the search start time and computes the hard/soft bounds.
func (l *Limit) Start() {
	l.startedAt = time.Now()

	if l.MoveTimeMS > 0 {
		l.movetime = l.MoveTimeMS
		l.softtime = 0 // soft-TM disabled when an explicit movetime is given
		return
	}

	if l.ClockMS > 0 {
		l.movetime = l.ClockMS/2 - 50
		if l.movetime < 1 {
			l.movetime = 1
		}
		l.softtime = int64(0.6 * (float64(l.ClockMS)/20 + float64(l.IncMS)*3/4))
		if l.softtime < 1 {
			l.softtime = 1
		}
	}

	if l.UseSoftNodes && l.SoftNodes > 0 {
		// Preserved faithfully from the source this was distilled from:
		// enabling soft-node mode clamps soft to at least hard and then
		// removes the hard cap entirely, rather than the other way around.
		if l.HardNodes > l.SoftNodes {
			l.SoftNodes = l.HardNodes
		}
		l.HardNodes = 0
	}
}

func (l *Limit) elapsedMS() int64 {
	return time.Since(l.startedAt).Milliseconds()
}

// OutOfTime reports whether the hard wall-clock bound has been exceeded.
func (l *Limit) OutOfTime() bool {
	if l.Infinite {
		return false
	}
	if l.movetime == 0 {
		return false
	}
	return l.elapsedMS() >= l.movetime
}

// OutOfTimeSoft reports whether the node-TM-scaled soft bound has been
// exceeded, given the current best root move and the total nodes searched
// so far this iteration.
func (l *Limit) OutOfTimeSoft(bestMove uint16, totalNodes uint64) bool {
	if l.Infinite || l.softtime == 0 || totalNodes == 0 {
		return false
	}
	idx := bestMove & 4095
	prop := float64(l.NodeCounts[idx]) / float64(totalNodes)
	scale := (1.5 - prop) * 1.35
	threshold := float64(l.softtime) * scale
	return float64(l.elapsedMS()) >= threshold
}

// OutOfNodesHard reports whether the hard node cap has been exceeded.
func (l *Limit) OutOfNodesHard(nodes uint64) bool {
	return l.HardNodes > 0 && nodes >= l.HardNodes
}

// OutOfNodesSoft reports whether the soft node cap has been exceeded.
func (l *Limit) OutOfNodesSoft(nodes uint64) bool {
	return l.SoftNodes > 0 && nodes >= l.SoftNodes
}
