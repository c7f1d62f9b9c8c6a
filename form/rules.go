// ABOUTME: Custom validator tags used by form field rules
// ABOUTME: Loose email, website, positive amount, percentage and not-in-the-past dates
package form

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/harperreed/crmdesk/adapter"
)

var looseEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// dateLayouts are accepted for date inputs, most specific first.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate reads a date input. The bool reports whether a time of day was given.
func ParseDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, layout != "2006-01-02", nil
		}
		lastErr = err
	}
	return time.Time{}, false, lastErr
}

// NormalizeWebsite prefixes https:// when no scheme was typed.
func NormalizeWebsite(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(strings.ToLower(s), "http") {
		return s
	}
	return "https://" + s
}

// isNumber accepts exactly what the schemas' amount parsing accepts.
func isNumber(s string) (float64, bool) {
	f, err := adapter.ParseAmountStrict(s)
	return f, err == nil
}

func newValidator(now func() time.Time) (*validator.Validate, error) {
	v := validator.New()

	rules := map[string]validator.Func{
		"loose_email": func(fl validator.FieldLevel) bool {
			return looseEmail.MatchString(fl.Field().String())
		},
		"website": func(fl validator.FieldLevel) bool {
			u, err := url.Parse(NormalizeWebsite(fl.Field().String()))
			if err != nil {
				return false
			}
			return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
		},
		"positive": func(fl validator.FieldLevel) bool {
			f, ok := isNumber(fl.Field().String())
			return ok && f > 0
		},
		"nonneg": func(fl validator.FieldLevel) bool {
			f, ok := isNumber(fl.Field().String())
			return ok && f >= 0
		},
		"percent": func(fl validator.FieldLevel) bool {
			f, ok := isNumber(fl.Field().String())
			return ok && f >= 0 && f <= 100
		},
		"ref": func(fl validator.FieldLevel) bool {
			return adapter.ParseID(fl.Field().String()) > 0
		},
		"flag": func(fl validator.FieldLevel) bool {
			_, err := strconv.ParseBool(strings.TrimSpace(fl.Field().String()))
			return err == nil
		},
		"not_past": func(fl validator.FieldLevel) bool {
			t, hasTime, err := ParseDate(fl.Field().String())
			if err != nil {
				return false
			}
			current := now().In(t.Location())
			if !hasTime {
				y, m, d := current.Date()
				current = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
			}
			return !t.Before(current)
		},
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, err
		}
	}
	return v, nil
}
