package engine

// LevelCurve maps cumulative XP to a level via an ordered table of
// cumulative thresholds. Level 1 starts at threshold 0; the curve does
// not extrapolate past its last entry, so the table length is the level
// cap.
type LevelCurve struct {
	thresholds []int
}

// NewLevelCurve validates and builds a curve. Thresholds must start at 0
// and be strictly increasing.
func NewLevelCurve(thresholds []int) (*LevelCurve, error) {
	if len(thresholds) == 0 {
		return nil, InvalidInputError{Field: "level curve", Reason: "empty threshold table"}
	}
	if thresholds[0] != 0 {
		return nil, InvalidInputError{Field: "level curve", Reason: "first threshold must be 0"}
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, InvalidInputError{Field: "level curve", Reason: "thresholds must be strictly increasing"}
		}
	}
	c := &LevelCurve{thresholds: append([]int(nil), thresholds...)}
	return c, nil
}

// DefaultLevelCurve is the built-in 20-level curve. Each level costs
// 50 XP more than the previous one did.
func DefaultLevelCurve() *LevelCurve {
	c, err := NewLevelCurve([]int{
		0, 100, 250, 450, 700,
		1000, 1350, 1750, 2200, 2700,
		3250, 3850, 4500, 5200, 5950,
		6750, 7600, 8500, 9450, 10450,
	})
	if err != nil {
		panic(err)
	}
	return c
}

// MaxLevel returns the level cap defined by the table.
func (c *LevelCurve) MaxLevel() int {
	return len(c.thresholds)
}

// LevelFor returns the level for a cumulative XP total: the highest
// level whose threshold is <= xp, never below 1.
func (c *LevelCurve) LevelFor(xp int) int {
	if xp < 0 {
		xp = 0
	}
	for lvl := len(c.thresholds); lvl >= 2; lvl-- {
		if xp >= c.thresholds[lvl-1] {
			return lvl
		}
	}
	return 1
}

// LevelProgress describes progress within the current level.
type LevelProgress struct {
	Level      int
	Current    int // XP earned past the current level's threshold
	Required   int // XP between this threshold and the next; 0 at the cap
	Percentage int // 0-100, pinned to 100 at the cap
}

// ProgressFor computes in-level progress for a cumulative XP total.
func (c *LevelCurve) ProgressFor(xp int) LevelProgress {
	if xp < 0 {
		xp = 0
	}
	lvl := c.LevelFor(xp)
	cur := xp - c.thresholds[lvl-1]
	if lvl == c.MaxLevel() {
		return LevelProgress{Level: lvl, Current: cur, Required: 0, Percentage: 100}
	}
	req := c.thresholds[lvl] - c.thresholds[lvl-1]
	pct := 100 * cur / req
	if pct > 100 {
		pct = 100
	}
	return LevelProgress{Level: lvl, Current: cur, Required: req, Percentage: pct}
}
