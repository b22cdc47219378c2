// Package types contains common types used across the application
package types

// TeamEntry is one leaderboard row: a team's current belief plus the
// derived metrics the API and snapshot layers expose. Field names mirror
// the snapshot file format and must stay stable.
type TeamEntry struct {
	TeamKey           string  `json:"team_key"`
	Mu                float64 `json:"mu"`
	Sigma             float64 `json:"sigma"`
	Conservative      float64 `json:"conservative_mu_3sigma"`
	ConfidencePercent float64 `json:"confidence_percent"`
}
