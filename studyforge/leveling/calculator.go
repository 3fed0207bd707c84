package leveling

import "math"

// Calculator maps cumulative XP to levels with a fixed monotonic step
// function. XP never decreases, so levels derived from it never do either.
type Calculator struct {
	config *Config
}

func NewCalculator(config *Config) *Calculator {
	return &Calculator{config: config}
}

// XPForLevel returns the cumulative XP required to reach level. Level 1 is
// the starting state and requires no XP.
func (c *Calculator) XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	if level > c.config.MaxLevel {
		level = c.config.MaxLevel
	}

	var total int64
	for l := 2; l <= level; l++ {
		step := float64(c.config.BaseXPPerLevel) * math.Pow(c.config.Growth, float64(l-2))
		total += int64(step)
	}
	return total
}

// LevelForXP returns the highest level whose cumulative requirement xp meets.
func (c *Calculator) LevelForXP(xp int64) int {
	level := 1
	for level < c.config.MaxLevel && xp >= c.XPForLevel(level+1) {
		level++
	}
	return level
}

// ProgressToNext returns XP earned within the current level and the XP span
// of that level. At max level both values are 0.
func (c *Calculator) ProgressToNext(xp int64) (current, required int64) {
	level := c.LevelForXP(xp)
	if level >= c.config.MaxLevel {
		return 0, 0
	}

	floor := c.XPForLevel(level)
	ceil := c.XPForLevel(level + 1)
	return xp - floor, ceil - floor
}
