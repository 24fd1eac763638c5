// Package i18n translates UI phrases. The base catalog is immutable; any
// dynamically translated phrase goes through an explicit Cache injected at
// bootstrap, so no request ever mutates shared package state.
package i18n

import (
	"strings"
	"sync"
)

// DefaultLang is the catalog's reference language.
const DefaultLang = "en"

var base = map[string]map[string]string{
	"en": {
		"dashboard":           "Dashboard",
		"customers":           "Customers",
		"orders":              "Orders",
		"bills":               "Bills",
		"measurements":        "Measurements",
		"reminders":           "Reminders",
		"history":             "History",
		"total_customers":     "Total Customers",
		"all_time_revenue":    "All Time Revenue",
		"pending_balance":     "Pending Balance",
		"due_today":           "Due Today",
		"total_amount":        "Total Amount",
		"advance":             "Advance",
		"balance":             "Balance",
		"working":             "Working",
		"delivered":           "Delivered",
		"payment_status":      "Payment Status",
		"urgent_reminders":    "Urgent Reminders",
		"upcoming_deliveries": "Upcoming Deliveries",
		"top_customers":       "Top Customers",
		"required":            "Required",
	},
	"hi": {
		"dashboard":           "डैशबोर्ड",
		"customers":           "ग्राहक",
		"orders":              "ऑर्डर",
		"bills":               "बिल",
		"measurements":        "माप",
		"reminders":           "रिमाइंडर",
		"history":             "इतिहास",
		"total_customers":     "कुल ग्राहक",
		"all_time_revenue":    "कुल कमाई",
		"pending_balance":     "बकाया राशि",
		"due_today":           "आज की डिलीवरी",
		"total_amount":        "कुल राशि",
		"advance":             "एडवांस",
		"balance":             "बकाया",
		"working":             "कार्य प्रगति पर",
		"delivered":           "डिलीवर किया",
		"payment_status":      "भुगतान स्थिति",
		"urgent_reminders":    "जरूरी रिमाइंडर",
		"upcoming_deliveries": "आगामी डिलीवरी",
		"top_customers":       "शीर्ष ग्राहक",
	},
}

// T looks a phrase up in the base catalog only. Unknown languages fall back
// to English; unknown codes fall back to the code itself.
func T(lang, code string) string {
	if m, ok := base[lang]; ok {
		if v, ok := m[code]; ok {
			return v
		}
	}
	if v, ok := base[DefaultLang][code]; ok {
		return v
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		tag = strings.SplitN(tag, "-", 2)[0]
		if _, ok := base[tag]; ok {
			return tag
		}
	}
	return DefaultLang
}

// Translator produces a translation for a phrase missing from the base
// catalog. Implementations may call out to an external service.
type Translator interface {
	Translate(phrase, lang string) (string, error)
}

type cacheKey struct {
	lang   string
	phrase string
}

// Cache resolves phrases with populate-on-miss semantics: base catalog
// first, then its own entries, then the injected Translator. Entries live
// for the process lifetime. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string
	tr      Translator
}

func NewCache(tr Translator) *Cache {
	return &Cache{entries: map[cacheKey]string{}, tr: tr}
}

// Lookup resolves one phrase for lang. The English base value is always the
// translation source and the fallback on any failure.
func (c *Cache) Lookup(lang, code string) string {
	if m, ok := base[lang]; ok {
		if v, ok := m[code]; ok {
			return v
		}
	}
	enVal := T(DefaultLang, code)
	if lang == DefaultLang {
		return enVal
	}

	key := cacheKey{lang: lang, phrase: code}
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return v
	}
	if c.tr == nil {
		return enVal
	}
	translated, err := c.tr.Translate(enVal, lang)
	if err != nil || translated == "" {
		return enVal
	}
	c.mu.Lock()
	c.entries[key] = translated
	c.mu.Unlock()
	return translated
}
