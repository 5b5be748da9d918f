package features

import (
	"fmt"
	"math"

	"TradeForge/internal/domain/models"
)

// issue classes; each distinct class costs 10 quality points.
const (
	issueMissing    = "missing or non-positive values"
	issueHighLow    = "high prices lower than low prices"
	issueCloseRange = "close prices outside high-low range"
	issueOpenRange  = "open prices outside high-low range"
	issueOrdering   = "timestamps not strictly increasing"
	issueDuplicates = "duplicate timestamps"
	issueOutliers   = "outlier moves"
)

// Validate runs the OHLCV validation pass. Malformed rows are reported,
// not rejected: the caller decides whether to proceed with a low score.
func Validate(bars []models.Bar) models.ValidationReport {
	counts := map[string]int{}

	for i, b := range bars {
		if !finitePositive(b.Open) || !finitePositive(b.High) || !finitePositive(b.Low) ||
			!finitePositive(b.Close) || b.Volume < 0 || math.IsNaN(b.Volume) {
			counts[issueMissing]++
		}
		if b.High < b.Low {
			counts[issueHighLow]++
		}
		if b.Close > b.High || b.Close < b.Low {
			counts[issueCloseRange]++
		}
		if b.Open > b.High || b.Open < b.Low {
			counts[issueOpenRange]++
		}
		if i > 0 {
			prev := bars[i-1]
			if b.Timestamp.Equal(prev.Timestamp) {
				counts[issueDuplicates]++
			} else if b.Timestamp.Before(prev.Timestamp) {
				counts[issueOrdering]++
			}
			if prev.Close > 0 {
				move := math.Abs(b.Close/prev.Close - 1)
				if move > 0.10 {
					counts[issueOutliers]++
				}
			}
		}
	}

	var issues []string
	for _, class := range []string{
		issueMissing, issueHighLow, issueCloseRange, issueOpenRange,
		issueOrdering, issueDuplicates, issueOutliers,
	} {
		if n := counts[class]; n > 0 {
			issues = append(issues, fmt.Sprintf("%s (%d rows)", class, n))
		}
	}

	score := 100 - 10*len(issues)
	if score < 0 {
		score = 0
	}
	return models.ValidationReport{
		Valid:  len(issues) == 0,
		Issues: issues,
		Score:  score,
		Rows:   len(bars),
	}
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
