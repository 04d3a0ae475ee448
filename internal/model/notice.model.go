package model

import (
	"strings"
	"time"
)

// NoticeType classifies a network notice.
type NoticeType string

const (
	NoticeTypeOutage      NoticeType = "gangguan"
	NoticeTypeMaintenance NoticeType = "maintenance"
)

// NoticeSeverity is the operator-assigned impact level.
type NoticeSeverity string

const (
	SeverityLow      NoticeSeverity = "low"
	SeverityMedium   NoticeSeverity = "medium"
	SeverityHigh     NoticeSeverity = "high"
	SeverityCritical NoticeSeverity = "critical"
)

// NetworkNotice is an outage or maintenance announcement. Like customers it
// is written by the billing system and only read here.
type NetworkNotice struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	Type         NoticeType     `json:"type"`
	Severity     NoticeSeverity `json:"severity"`
	IsMass       bool           `json:"is_mass"`
	AffectedArea string         `json:"affected_area,omitempty"`
	AffectedODP  string         `json:"affected_odp,omitempty"` // comma separated ODP tags
	StartTime    *time.Time     `json:"start_time,omitempty"`
	EndTime      *time.Time     `json:"end_time,omitempty"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (NetworkNotice) TableName() string { return "network_notices" }

// AffectedODPList splits the comma-separated affected_odp field into trimmed
// tags. Empty field yields nil.
func (n *NetworkNotice) AffectedODPList() []string {
	if n.AffectedODP == "" {
		return nil
	}
	parts := strings.Split(n.AffectedODP, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
