package logging

import "time"

// #region segmentation-entry
// SegmentationEntry is a single row in the segmentation_log table.
type SegmentationEntry struct {
	RunID          string
	UtteranceIndex int
	Phase          string // "train" | "test"
	SegText        string
	BeamPeak       int
	Survivors      int
	Blamed         string
	CreatedAt      time.Time
}

// #endregion segmentation-entry
