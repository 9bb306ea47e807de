package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/connectbox-tools/connectbox-agent/internal/xmldoc"
)

const hoursPerDay = 24

// parseGeneralTime converts a <GeneralTime> interval "HH:MM-HH:MM" to
// its minute-offset form "<start>,<end>". Returns nil when the section
// is absent.
func parseGeneralTime(root *xmldoc.Element) (*string, error) {
	element := root.Find("GeneralTime/time")
	if element == nil {
		return nil, nil
	}

	parts := strings.Split(strings.TrimSpace(element.Text), "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("parseGeneralTime: invalid interval %q", element.Text)
	}

	minutes := make([]string, 0, len(parts))
	for _, part := range parts {
		hour, minute, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("parseGeneralTime: invalid time %q", part)
		}

		h, err := strconv.Atoi(hour)
		if err != nil {
			return nil, fmt.Errorf("parseGeneralTime: %w", err)
		}

		m, err := strconv.Atoi(minute)
		if err != nil {
			return nil, fmt.Errorf("parseGeneralTime: %w", err)
		}

		minutes = append(minutes, strconv.Itoa(h*60+m))
	}

	return ptr(strings.Join(minutes, ",")), nil
}

// parseDailyTime converts the <DailyTime> entries to seven 24-bit hour
// masks rendered as decimals in day order 1..7 (hour 0 is the most
// significant bit). Returns nil when the section is absent.
func parseDailyTime(root *xmldoc.Element) (*string, error) {
	if root.Find("DailyTime") == nil {
		return nil, nil
	}

	var mask [7][hoursPerDay]int
	for _, instance := range root.FindAll("DailyTime/time_instance") {
		day, err := instance.Int("daily")
		if err != nil {
			return nil, fmt.Errorf("parseDailyTime: %w", err)
		}
		if day < 1 || day > 7 {
			return nil, fmt.Errorf("parseDailyTime: day %d out of range", day)
		}

		window, err := instance.Str("time")
		if err != nil {
			return nil, fmt.Errorf("parseDailyTime: %w", err)
		}

		startText, endText, found := strings.Cut(strings.TrimSpace(window), "-")
		if !found {
			return nil, fmt.Errorf("parseDailyTime: invalid hour range %q", window)
		}

		start, err := strconv.Atoi(startText)
		if err != nil {
			return nil, fmt.Errorf("parseDailyTime: %w", err)
		}

		// end hour is inclusive
		end, err := strconv.Atoi(endText)
		if err != nil {
			return nil, fmt.Errorf("parseDailyTime: %w", err)
		}
		if start < 0 || end >= hoursPerDay || start > end {
			return nil, fmt.Errorf("parseDailyTime: invalid hour range %q", window)
		}

		for hour := start; hour <= end; hour++ {
			mask[day-1][hour] = 1
		}
	}

	values := make([]string, 0, len(mask))
	for _, day := range mask {
		decimal := 0
		for _, bit := range day {
			decimal = decimal<<1 | bit
		}
		values = append(values, strconv.Itoa(decimal))
	}

	return ptr(strings.Join(values, ",")), nil
}

func ptr(s string) *string {
	return &s
}
