package services

import (
	"fmt"
	"strings"

	"github.com/rumahkitanet/wa-notify/internal/model"
)

const statusPageURL = "https://rumahkitanet.site/status-jaringan"

const noticeTimeLayout = "02/01/2006 15:04"

var severityEmoji = map[model.NoticeSeverity]string{
	model.SeverityLow:      "ℹ️",
	model.SeverityMedium:   "⚠️",
	model.SeverityHigh:     "🔴",
	model.SeverityCritical: "🚨",
}

var typeLabel = map[model.NoticeType]string{
	model.NoticeTypeOutage:      "GANGGUAN JARINGAN",
	model.NoticeTypeMaintenance: "MAINTENANCE TERJADWAL",
}

// FormatNoticeMessage renders the WhatsApp text for a notice. Customers and
// support staff compare these messages across channels, so the composition
// (header, title, body, optional area/start/end lines, footer) must stay
// stable byte for byte.
func FormatNoticeMessage(n *model.NetworkNotice) string {
	emoji, ok := severityEmoji[n.Severity]
	if !ok {
		emoji = severityEmoji[model.SeverityLow]
	}
	label, ok := typeLabel[n.Type]
	if !ok {
		label = "PEMBERITAHUAN"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s *%s* %s\n\n*%s*\n\n%s\n", emoji, label, emoji, n.Title, n.Message)

	if n.AffectedArea != "" {
		fmt.Fprintf(&b, "\n📍 *Area Terdampak:* %s", n.AffectedArea)
	}
	if n.StartTime != nil {
		fmt.Fprintf(&b, "\n🕐 *Mulai:* %s", n.StartTime.Format(noticeTimeLayout))
	}
	if n.EndTime != nil {
		fmt.Fprintf(&b, "\n🕐 *Estimasi Selesai:* %s", n.EndTime.Format(noticeTimeLayout))
	}

	b.WriteString("\n\nUntuk informasi perkembangan terbaru, silakan cek melalui link berikut:\n👉 " + statusPageURL +
		"\n\nMohon maaf atas ketidaknyamanan ini.\nTerima kasih atas pengertiannya.\n\n_Pesan ini dikirim otomatis_\n")

	return strings.TrimSpace(b.String())
}
