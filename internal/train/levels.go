// Package train implements leveled problem-set generation and timed
// training sessions with verified scoring.
package train

// codeforcesLevels maps level N (index N-1) to the four target ratings of
// that level's set. The ladder raises one slot by 100 at a time. Values
// are fixed calibration data; do not regenerate them formulaically.
var codeforcesLevels = [99][4]int{
	{800, 800, 800, 800},
	{800, 800, 800, 900},
	{800, 800, 900, 900},
	{800, 900, 900, 900},
	{800, 900, 900, 1000},
	{800, 900, 1000, 1000},
	{800, 1000, 1000, 1000},
	{800, 1000, 1000, 1100},
	{800, 1000, 1100, 1100},
	{800, 1000, 1100, 1200},
	{800, 1000, 1200, 1200},
	{800, 1000, 1200, 1300},
	{800, 1000, 1200, 1400},
	{900, 1000, 1200, 1400},
	{900, 1100, 1200, 1400},
	{900, 1100, 1300, 1400},
	{900, 1100, 1300, 1500},
	{1000, 1100, 1300, 1500},
	{1000, 1200, 1300, 1500},
	{1000, 1200, 1400, 1500},
	{1000, 1200, 1400, 1600},
	{1100, 1200, 1400, 1600},
	{1100, 1300, 1400, 1600},
	{1100, 1300, 1500, 1600},
	{1100, 1300, 1500, 1700},
	{1200, 1300, 1500, 1700},
	{1200, 1400, 1500, 1700},
	{1200, 1400, 1600, 1700},
	{1200, 1400, 1600, 1800},
	{1300, 1400, 1600, 1800},
	{1300, 1500, 1600, 1800},
	{1300, 1500, 1700, 1800},
	{1300, 1500, 1700, 1900},
	{1400, 1500, 1700, 1900},
	{1400, 1600, 1700, 1900},
	{1400, 1600, 1800, 1900},
	{1400, 1600, 1800, 2000},
	{1500, 1600, 1800, 2000},
	{1500, 1700, 1800, 2000},
	{1500, 1700, 1900, 2000},
	{1500, 1700, 1900, 2100},
	{1600, 1700, 1900, 2100},
	{1600, 1800, 1900, 2100},
	{1600, 1800, 2000, 2100},
	{1600, 1800, 2000, 2200},
	{1700, 1800, 2000, 2200},
	{1700, 1900, 2000, 2200},
	{1700, 1900, 2100, 2200},
	{1700, 1900, 2100, 2300},
	{1800, 1900, 2100, 2300},
	{1800, 2000, 2100, 2300},
	{1800, 2000, 2200, 2300},
	{1800, 2000, 2200, 2400},
	{1900, 2000, 2200, 2400},
	{1900, 2100, 2200, 2400},
	{1900, 2100, 2300, 2400},
	{1900, 2100, 2300, 2500},
	{2000, 2100, 2300, 2500},
	{2000, 2200, 2300, 2500},
	{2000, 2200, 2400, 2500},
	{2000, 2200, 2400, 2600},
	{2100, 2200, 2400, 2600},
	{2100, 300, 2400, 2600},
	{2100, 2300, 2500, 2600},
	{2100, 2300, 2500, 2700},
	{2200, 2300, 2500, 2700},
	{2200, 2400, 2500, 2700},
	{2200, 2400, 2600, 2700},
	{2200, 2400, 2600, 2800},
	{2300, 2400, 2600, 2800},
	{2300, 2500, 2600, 2800},
	{2300, 2500, 2700, 2800},
	{2300, 2500, 2700, 2900},
	{2400, 2500, 2700, 2900},
	{2400, 2600, 2700, 2900},
	{2400, 2600, 2800, 2900},
	{2400, 2600, 2800, 3000},
	{2500, 2600, 2800, 3000},
	{2500, 2700, 2800, 3000},
	{2500, 2700, 2900, 3000},
	{2500, 2700, 2900, 3100},
	{2600, 2700, 2900, 3100},
	{2600, 2800, 2900, 3100},
	{2600, 2800, 3000, 3100},
	{2600, 2800, 3000, 3200},
	{2700, 2800, 3000, 3200},
	{2700, 2900, 3000, 3200},
	{2700, 2900, 3100, 3200},
	{2700, 2900, 3100, 3300},
	{2800, 2900, 3100, 3300},
	{2800, 3000, 3100, 3300},
	{2800, 3000, 3200, 3300},
	{2800, 3000, 3200, 3400},
	{2900, 3000, 3200, 3400},
	{2900, 3100, 3200, 3400},
	{2900, 3100, 3300, 3400},
	{2900, 3100, 3300, 3500},
	{3000, 3100, 3300, 3500},
	{3100, 3100, 3300, 3500},
}

// leetcodeLevels maps level N (index N-1) to the four target difficulty
// tiers of that level's set.
var leetcodeLevels = [10][4]string{
	{"Easy", "Easy", "Easy", "Easy"},
	{"Easy", "Easy", "Medium", "Medium"},
	{"Easy", "Medium", "Medium", "Medium"},
	{"Easy", "Medium", "Medium", "Hard"},
	{"Easy", "Medium", "Hard", "Hard"},
	{"Easy", "Medium", "Hard", "Hard"},
	{"Medium", "Medium", "Hard", "Hard"},
	{"Hard", "Hard", "Hard", "Hard"},
	{"Hard", "Hard", "Hard", "Hard"},
	{"Hard", "Hard", "Hard", "Hard"},
}

// MaxCodeforcesLevel and MaxLeetCodeLevel bound the valid level ranges.
const (
	MaxCodeforcesLevel = len(codeforcesLevels)
	MaxLeetCodeLevel   = len(leetcodeLevels)
)

// CodeforcesTargets returns the four target ratings for a level.
func CodeforcesTargets(level int) ([4]int, bool) {
	if level < 1 || level > MaxCodeforcesLevel {
		return [4]int{}, false
	}
	return codeforcesLevels[level-1], true
}

// LeetCodeTargets returns the four target tiers for a level.
func LeetCodeTargets(level int) ([4]string, bool) {
	if level < 1 || level > MaxLeetCodeLevel {
		return [4]string{}, false
	}
	return leetcodeLevels[level-1], true
}
