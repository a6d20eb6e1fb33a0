package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunStats(t *testing.T) {
	s := RunStats{Total: 10, Success: 6, Failed: 1, Skipped: 3}

	assert.Equal(t, 7, s.Attempted())
	assert.Equal(t, "parsed 10 records, 6 are successful, 1 are failed, 3 skipped", s.String())
}

func TestRunStatsZeroValue(t *testing.T) {
	var s RunStats
	assert.Equal(t, 0, s.Attempted())
	assert.Contains(t, s.String(), "parsed 0 records")
}

func TestExportStatsString(t *testing.T) {
	s := ExportStats{Seen: 4, Saved: 2, Skipped: 2, AssetsDownloaded: 5, AssetFailures: 1}
	assert.Equal(t,
		"seen 4 records, 2 saved, 2 skipped, 0 failed, 5 assets downloaded, 1 asset failures, 0 failed pages",
		s.String())
}
