// Package types contains shared types used across multiple packages to avoid import cycles.
package types

import "fmt"

// RunStats counts the outcome of one import run. Total includes skipped
// records; Failed counts both derivation and create failures.
type RunStats struct {
	Total   int
	Success int
	Failed  int
	Skipped int
}

// Attempted returns the number of records that were not skipped.
func (s RunStats) Attempted() int {
	return s.Total - s.Skipped
}

func (s RunStats) String() string {
	return fmt.Sprintf("parsed %d records, %d are successful, %d are failed, %d skipped",
		s.Total, s.Success, s.Failed, s.Skipped)
}

// ExportStats counts the outcome of one export run.
type ExportStats struct {
	Seen             int // records yielded by the listing
	Saved            int // records written in this run
	Skipped          int // records whose sentinel file already existed
	Failed           int // records that could not be decoded or written
	AssetsDownloaded int
	AssetFailures    int
	FailedPages      int
}

func (s ExportStats) String() string {
	return fmt.Sprintf("seen %d records, %d saved, %d skipped, %d failed, %d assets downloaded, %d asset failures, %d failed pages",
		s.Seen, s.Saved, s.Skipped, s.Failed, s.AssetsDownloaded, s.AssetFailures, s.FailedPages)
}
