package features

import (
	"strings"
	"testing"

	"TradeForge/internal/domain/models"
)

func TestValidateCleanSeries(t *testing.T) {
	bars := syntheticBars(60, 10)
	report := Validate(bars)
	if !report.Valid {
		t.Fatalf("clean series flagged invalid: %v", report.Issues)
	}
	if report.Score != 100 {
		t.Fatalf("score = %d, want 100", report.Score)
	}
	if report.Rows != 60 {
		t.Fatalf("rows = %d, want 60", report.Rows)
	}
}

func TestValidateHighBelowLow(t *testing.T) {
	bars := syntheticBars(60, 11)
	bars[10].High, bars[10].Low = bars[10].Low, bars[10].High
	report := Validate(bars)
	if report.Valid {
		t.Fatalf("expected invalid report")
	}
	found := false
	for _, issue := range report.Issues {
		if strings.Contains(issue, "high prices lower than low") {
			found = true
		}
	}
	if !found {
		t.Fatalf("high<low not reported: %v", report.Issues)
	}
}

func TestValidateScoreDeduction(t *testing.T) {
	bars := syntheticBars(60, 12)
	// two distinct issue classes: ordering + duplicate
	bars[20].Timestamp = bars[19].Timestamp
	bars[30].Timestamp = bars[5].Timestamp
	report := Validate(bars)
	if report.Score != 100-10*len(report.Issues) {
		t.Fatalf("score %d inconsistent with %d issues", report.Score, len(report.Issues))
	}
	if len(report.Issues) < 2 {
		t.Fatalf("expected at least 2 issue classes, got %v", report.Issues)
	}
}

func TestValidateScoreFloor(t *testing.T) {
	// a thoroughly broken series must floor at 0, not go negative
	bars := make([]models.Bar, 3)
	report := Validate(bars)
	if report.Score < 0 {
		t.Fatalf("score went negative: %d", report.Score)
	}
}
