package conversation

import (
	"fmt"
	"html"
	"strings"
	"time"

	"vipbot/internal/domain"
	"vipbot/internal/service"
)

const (
	dateLayout = "2006-01-02"
	// maxMessageLen stays under the Telegram limit of 4096 characters
	maxMessageLen = 4000
)

func escape(s string) string {
	return html.EscapeString(s)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return escape(s)
}

func writeProfile(b *strings.Builder, p domain.Profile) {
	for _, f := range domain.ProfileFields {
		fmt.Fprintf(b, "%s: %s\n", fieldLabels[f], orDash(p.Value(f)))
	}
}

func vipStatus(rec *domain.VipRecord, now time.Time) string {
	switch {
	case rec.ActiveAt(now):
		return "active until " + rec.EndDate.Format(dateLayout)
	case rec == nil:
		return "none"
	case rec.Approved:
		return "expired"
	case rec.PaymentReceipt != nil:
		return "pending review"
	}
	return "rejected"
}

// profileReport is shown to the user by "My profile"
func profileReport(u *domain.User, rec *domain.VipRecord, now time.Time) string {
	var b strings.Builder
	b.WriteString("👤 <b>Your profile</b>\n\n")
	writeProfile(&b, u.Profile())
	fmt.Fprintf(&b, "\n⭐ Score: %d (level %d)\n", u.Score, u.Level())
	fmt.Fprintf(&b, "💎 VIP: %s\n", vipStatus(rec, now))
	if !rec.ActiveAt(now) {
		fmt.Fprintf(&b, "🤖 AI questions used: %d/%d\n", u.AIQuestionsUsed, service.FreeQuota)
	}
	return b.String()
}

// userReport is the admin view of a user
func userReport(title string, u *domain.User, rec *domain.VipRecord, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", escape(title))
	fmt.Fprintf(&b, "ID: <code>%d</code>\n", u.ChatID)
	if u.Username != nil && *u.Username != "" {
		fmt.Fprintf(&b, "Username: @%s\n", escape(*u.Username))
	}
	writeProfile(&b, u.Profile())
	fmt.Fprintf(&b, "Score: %d (level %d)\n", u.Score, u.Level())
	fmt.Fprintf(&b, "AI questions: %d\n", u.AIQuestionsUsed)
	fmt.Fprintf(&b, "VIP: %s\n", vipStatus(rec, now))
	if !u.RegisteredAt.IsZero() {
		fmt.Fprintf(&b, "Joined: %s\n", u.RegisteredAt.Format(dateLayout))
	}
	fmt.Fprintf(&b, "\n/archive_%d  /reply_%d", u.ChatID, u.ChatID)
	return b.String()
}

func statsReport(s domain.Stats) string {
	return fmt.Sprintf("📊 <b>Statistics</b>\n\nUsers: %d\nActive VIP: %d", s.TotalUsers, s.ActiveVIP)
}

func broadcastReport(b *domain.Broadcast) string {
	return fmt.Sprintf(
		"📢 <b>Broadcast #%d</b> (%s)\n\nDelivered: %d\nFailed: %d\nTotal: %d\nDate: %s\n\n/bc_%d",
		b.ID, b.Target, b.SentCount, b.FailedCount, b.Total(), b.CreatedAt.Format(dateLayout), b.ID,
	)
}

// archiveReport renders the archive split into messages that fit the transport limit
func archiveReport(userID int64, a *service.Archive) []string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗂 <b>Archive of %d</b>\n", userID)

	b.WriteString("\n<b>Messages</b>\n")
	if len(a.Messages) == 0 {
		b.WriteString("none\n")
	}
	for _, m := range a.Messages {
		who := "user"
		if m.Direction == domain.FromAdmin {
			who = "admin"
		}
		body := m.Text
		if m.Kind != domain.MediaText {
			body = fmt.Sprintf("[%s] %s", m.Kind, m.Text)
		}
		fmt.Fprintf(&b, "%s %s: %s\n", m.CreatedAt.Format("2006-01-02 15:04"), who, escape(truncate(body, 200)))
	}

	b.WriteString("\n<b>AI chats</b>\n")
	if len(a.AIChats) == 0 {
		b.WriteString("none\n")
	}
	for _, c := range a.AIChats {
		fmt.Fprintf(&b, "%s\nQ: %s\nA: %s\n",
			c.CreatedAt.Format("2006-01-02 15:04"),
			escape(truncate(c.Question, 200)),
			escape(truncate(c.Answer, 300)),
		)
	}
	return chunkLines(b.String(), maxMessageLen)
}

// chunkLines splits text on line boundaries into parts of at most limit runes.
// A single longer line is cut hard.
func chunkLines(text string, limit int) []string {
	var (
		parts []string
		cur   strings.Builder
		size  int
	)
	flush := func() {
		if size > 0 {
			parts = append(parts, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
			size = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		r := []rune(line)
		for len(r) > limit {
			flush()
			parts = append(parts, string(r[:limit]))
			r = r[limit:]
		}
		if size+len(r) > limit {
			flush()
		}
		cur.WriteString(string(r))
		size += len(r)
	}
	flush()
	return parts
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
