package engagement

import "github.com/ikigai-wellness/ikigai/internal/domain"

// Level is the derived level/XP view of a point total. It is never stored.
type Level struct {
	Level     int     `json:"level"`
	XPInLevel int     `json:"xp_in_level"`
	XPPercent float64 `json:"xp_percent"` // 0.0–100.0
	XPToNext  int     `json:"xp_to_next"`
}

// LevelFor derives the level view: a flat 500 points per level, starting at 1.
func LevelFor(totalPoints int) Level {
	if totalPoints < 0 {
		totalPoints = 0
	}
	xp := totalPoints % domain.PointsPerLevel
	return Level{
		Level:     totalPoints/domain.PointsPerLevel + 1,
		XPInLevel: xp,
		XPPercent: float64(xp) * 100 / domain.PointsPerLevel,
		XPToNext:  domain.PointsPerLevel - xp,
	}
}

// PointsForLevel returns the point total at which level starts.
func PointsForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * domain.PointsPerLevel
}
