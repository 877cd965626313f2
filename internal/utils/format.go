package utils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	nonDigit        = regexp.MustCompile(`\D`)
	nameSeparators  = regexp.MustCompile(`[\s,]+`)
	simpleEmailExpr = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// FormatCurrency renders whole US dollars, e.g. 1269 -> "$1,269".
func FormatCurrency(amount float64) string {
	neg := amount < 0
	whole := int64(math.Round(math.Abs(amount)))

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

// FormatPhoneNumber renders ten-digit numbers as (xxx) xxx-xxxx and returns
// anything else unchanged.
func FormatPhoneNumber(phone string) string {
	cleaned := nonDigit.ReplaceAllString(phone, "")
	if len(cleaned) != 10 {
		return phone
	}
	return fmt.Sprintf("(%s) %s-%s", cleaned[:3], cleaned[3:6], cleaned[6:])
}

// GenerateInitials takes the first letter of the first two name parts, so
// both "Michael Johnson" and "Johnson, Michael" yield two letters.
func GenerateInitials(name string) string {
	var b strings.Builder
	n := 0
	for _, part := range nameSeparators.Split(strings.TrimSpace(name), -1) {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(string([]rune(part)[0])))
		n++
		if n == 2 {
			break
		}
	}
	return b.String()
}

func TruncateText(text string, maxLength int) string {
	r := []rune(text)
	if len(r) <= maxLength {
		return text
	}
	if maxLength <= 3 {
		return string(r[:maxLength])
	}
	return string(r[:maxLength-3]) + "..."
}

func IsValidEmail(email string) bool {
	return simpleEmailExpr.MatchString(email)
}

// IsValidPhone accepts any formatting as long as ten digits remain.
func IsValidPhone(phone string) bool {
	return len(nonDigit.ReplaceAllString(phone, "")) == 10
}

type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// TimeRemaining describes how close a quote is to its expiry.
type TimeRemaining struct {
	IsExpired     bool    `json:"isExpired"`
	TimeRemaining string  `json:"timeRemaining"`
	Urgency       Urgency `json:"urgency"`
}

func GetTimeRemaining(expiresAt, now time.Time) TimeRemaining {
	diff := expiresAt.Sub(now)
	if diff <= 0 {
		return TimeRemaining{IsExpired: true, TimeRemaining: "Expired", Urgency: UrgencyHigh}
	}

	hours := diff.Hours()
	switch {
	case hours < 24:
		return TimeRemaining{TimeRemaining: fmt.Sprintf("%dh remaining", int(hours)), Urgency: UrgencyHigh}
	case hours < 72:
		return TimeRemaining{TimeRemaining: fmt.Sprintf("%dd remaining", int(hours/24)), Urgency: UrgencyMedium}
	default:
		return TimeRemaining{TimeRemaining: fmt.Sprintf("%dd remaining", int(hours/24)), Urgency: UrgencyLow}
	}
}
