package service

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

const transferVerifiedTemplate = "Hi %s! 👋\n\nGreat news! Your bank transfer payment (Ref: %s) has been verified and your course enrollment is now active! 🎉\n\nYou can now access your courses in your dashboard.\n\nThank you for choosing AUWEBx Academy! 📚✨"

const transferSubmittedTemplate = "Hello! I just paid for my courses by bank transfer.\n\nRef: %s\nAmount: ₦%s\nCourses: %s\nName: %s\n\nPlease verify my payment."

// whatsAppLink builds a wa.me deep link. It returns "" when phone has no digits.
func whatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, strings.ReplaceAll(url.QueryEscape(message), "+", "%20"))
}

// formatNaira renders a major-unit amount with two decimals and thousands separators.
func formatNaira(amount float64) string {
	raw := fmt.Sprintf("%.2f", amount)
	whole, frac := raw, ""
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		whole, frac = raw[:idx], raw[idx:]
	}
	negative := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-" + b.String() + frac
	}
	return b.String() + frac
}
