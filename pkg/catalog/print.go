package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// ExcerptLength is the description length used by the 'e' output flag.
const ExcerptLength = 80

// FormatLine renders the fields selected by outputFlags, one letter per field,
// joined by delimiter:
//
//	i id, k kind, t title, c category, l venue and city, d start date,
//	p price ("free" for free items), r remaining capacity, s status, e excerpt
func FormatLine(it Item, outputFlags, delimiter string) (string, error) {
	var fields []string
	for _, f := range outputFlags {
		switch f {
		case 'i':
			fields = append(fields, it.ID)
		case 'k':
			fields = append(fields, string(it.Kind))
		case 't':
			fields = append(fields, it.Title)
		case 'c':
			fields = append(fields, it.Category)
		case 'l':
			fields = append(fields, formatLocation(it.Location))
		case 'd':
			fields = append(fields, formatDate(it.Schedule))
		case 'p':
			fields = append(fields, formatPrice(it.Pricing))
		case 'r':
			fields = append(fields, strconv.Itoa(it.RemainingCapacity))
		case 's':
			fields = append(fields, it.Status)
		case 'e':
			fields = append(fields, Excerpt(it.Description, ExcerptLength))
		default:
			return "", fmt.Errorf("invalid output flag %q", f)
		}
	}
	return strings.Join(fields, delimiter), nil
}

func formatLocation(l Location) string {
	switch {
	case l.Venue != "" && l.City != "":
		return l.Venue + ", " + l.City
	case l.Venue != "":
		return l.Venue
	default:
		return l.City
	}
}

func formatDate(s Schedule) string {
	if s.IsZero() {
		return "-"
	}
	if s.TimeOfDay != "" {
		return s.Start.Format("2006-01-02 15:04")
	}
	return s.Start.Format("2006-01-02")
}

func formatPrice(p Pricing) string {
	if p.IsFree {
		return "free"
	}
	return strconv.FormatFloat(p.Price, 'f', -1, 64)
}
