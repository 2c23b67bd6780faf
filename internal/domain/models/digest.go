package models

import "time"

// Digest is a point-in-time alert and KPI snapshot sent to operators.
type Digest struct {
	GeneratedAt time.Time        `bson:"generated_at" json:"generated_at"`
	Summary     DashboardSummary `bson:"summary" json:"summary"`
	Alerts      []Alert          `bson:"alerts" json:"alerts"`
	Critical    int              `bson:"critical" json:"critical"`
	NearExpiry  int              `bson:"near_expiry" json:"near_expiry"`
	Expired     int              `bson:"expired" json:"expired"`
	Text        string           `bson:"text" json:"text"`
}

// Notification is an outbound operator message.
type Notification struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}
