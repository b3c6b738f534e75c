package services

import (
	"math"
	"time"
	"vibeapps/internal/models"
)

type RankConfig struct {
	Gravity       float64 // 时间重力 (1.5)
	WeightVote    float64 // 1.0
	WeightComment float64 // 2.0
	WeightRating  float64 // 3.0, scaled by average/5
	ScaleFactor   float64 // 放大系数 (100)
}

var DefaultRankConfig = RankConfig{
	Gravity:       1.5,
	WeightVote:    1.0,
	WeightComment: 2.0,
	WeightRating:  3.0,
	ScaleFactor:   100.0,
}

// HotScore is a log-smoothed engagement total decayed by age in hours.
func HotScore(cfg RankConfig, age time.Duration, votes, approvedComments, ratingCount int, averageRating float64) float64 {
	hours := age.Hours()
	if hours < 0 {
		hours = 0
	}

	weightedSum := float64(votes)*cfg.WeightVote +
		float64(approvedComments)*cfg.WeightComment +
		float64(ratingCount)*cfg.WeightRating*(averageRating/models.MaxRating)
	if weightedSum < 0 {
		weightedSum = 0
	}

	// log10(sum + 1) keeps sum=0 at 0
	numerator := math.Log10(weightedSum+1) * cfg.ScaleFactor
	decay := math.Pow(hours+2, cfg.Gravity)
	return numerator / decay
}
