// Package scoring derives display metrics from current entity state. Both
// scores are recomputed on every read and never persisted; neither gates
// any workflow transition.
package scoring

import (
	"time"

	"github.com/civicworks/civic-backend/internal/models"
)

// Priority weighs severity over engagement for admin sort/filter views.
func Priority(severity, upvotes, subscribers int) int {
	return severity*20 + upvotes*2 + subscribers*5
}

// Urgency scores a report for ward-scoped listings on a 0-100 scale:
// severity base, recency buckets, a small status weight, and an upvote
// bonus capped so pile-ons cannot dominate.
func Urgency(severity int, status models.ReportStatus, upvotes int, createdAt, now time.Time) int {
	score := severity * 10

	age := now.Sub(createdAt)
	switch {
	case age < 24*time.Hour:
		score += 30
	case age < 72*time.Hour:
		score += 20
	case age < 7*24*time.Hour:
		score += 10
	}

	switch status {
	case models.StatusOpen:
		score += 3
	case models.StatusValidated:
		score += 2
	}

	bonus := upvotes
	if bonus > 15 {
		bonus = 15
	}
	score += bonus

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// DaysOpen is the whole number of days a report has been open, floored at 0.
func DaysOpen(createdAt, now time.Time) int {
	d := int(now.Sub(createdAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
