package model

// SongCatalogEntry is static reference data describing one song.
type SongCatalogEntry struct {
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	BPM       float64  `json:"bpm"`
	Energy    string   `json:"energy"`
	Moods     []string `json:"moods"`
	Themes    []string `json:"themes"`
	SourceURL string   `json:"source_url,omitempty"`
}

// RankedRecommendation is a catalog entry with its match score and the
// reasons it scored, in evaluation order.
type RankedRecommendation struct {
	SongCatalogEntry
	MatchScore             float64  `json:"match_score"`
	MatchedCriteriaDetails []string `json:"matched_criteria_details"`
}
