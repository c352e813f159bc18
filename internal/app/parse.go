package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Joseda-hg/taskmaster/internal/model"
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseTaskText reads a one-line task description such as
// "Review proposal for John by tomorrow 3pm p1". It picks out the priority
// (P1-P4), the assignee ("for Name" with capitalised words, or "@name") and
// the due date ("by", "due", "on" or "before" followed by today, tonight,
// tomorrow, a weekday, "next <weekday>", "in N days", a YYYY-MM-DD date or a
// bare time). Whatever is left is the title. Without a due date the task is
// due at the end of tomorrow. Dates are resolved in now's location.
func ParseTaskText(text string, now time.Time) (TaskInput, error) {
	tokens := strings.Fields(text)
	input := TaskInput{}
	title := make([]string, 0, len(tokens))
	dueSet := false

	for i := 0; i < len(tokens); {
		token := tokens[i]
		word := normalizeWord(token)

		if priority, ok := parsePriorityToken(word); ok {
			input.Priority = priority
			i++
			continue
		}

		if strings.HasPrefix(token, "@") && len(word) > 1 && input.Assignee == "" {
			input.Assignee = strings.TrimPrefix(trimPunctuation(token), "@")
			i++
			continue
		}

		if word == "for" && input.Assignee == "" {
			if name, consumed := parseName(tokens[i+1:]); consumed > 0 {
				input.Assignee = name
				i += 1 + consumed
				continue
			}
		}

		if !dueSet {
			start := i
			switch word {
			case "by", "due", "on", "before":
				start = i + 1
				if word == "due" && start < len(tokens) {
					if next := normalizeWord(tokens[start]); next == "by" || next == "on" {
						start++
					}
				}
			}
			if start > i || isDateWord(word) {
				if due, consumed, ok := parseWhen(tokens[start:], now); ok {
					input.DueDate = due
					dueSet = true
					i = start + consumed
					continue
				}
			}
		}

		title = append(title, token)
		i++
	}

	input.Title = strings.TrimRight(strings.TrimSpace(strings.Join(title, " ")), ",;:-")
	if input.Title == "" {
		return TaskInput{}, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if !dueSet {
		input.DueDate = endOfDay(now.AddDate(0, 0, 1))
	}
	return input, nil
}

// isDateWord reports words that start a due date without a leading "by".
func isDateWord(word string) bool {
	switch word {
	case "today", "tonight", "tomorrow", "next", "in":
		return true
	}
	return false
}

func parsePriorityToken(word string) (model.Priority, bool) {
	priority := model.Priority(strings.ToUpper(word))
	if len(word) == 2 && priority.Valid() {
		return priority, true
	}
	return "", false
}

// parseName collects the capitalised words that follow "for".
func parseName(tokens []string) (string, int) {
	parts := []string{}
	for _, token := range tokens {
		word := normalizeWord(token)
		if word == "" || !isCapitalized(token) || isDateWord(word) {
			break
		}
		if _, ok := weekdays[word]; ok {
			break
		}
		if _, ok := parsePriorityToken(word); ok {
			break
		}
		parts = append(parts, trimPunctuation(token))
		if strings.ContainsAny(token, ",;") {
			break
		}
	}
	return strings.Join(parts, " "), len(parts)
}

// parseWhen reads a date expression with an optional time from the start of
// tokens and reports how many tokens it used.
func parseWhen(tokens []string, now time.Time) (time.Time, int, bool) {
	if len(tokens) == 0 {
		return time.Time{}, 0, false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	word := normalizeWord(tokens[0])
	consumed := 1
	var day time.Time
	defaultHour, defaultMinute := 23, 59

	switch {
	case word == "today":
		day = today
	case word == "tonight":
		day = today
		defaultHour, defaultMinute = 20, 0
	case word == "tomorrow":
		day = today.AddDate(0, 0, 1)
	case word == "next" && len(tokens) > 1:
		weekday, ok := weekdays[normalizeWord(tokens[1])]
		if !ok {
			return time.Time{}, 0, false
		}
		day = nextWeekday(today, weekday, true)
		consumed = 2
	case word == "in" && len(tokens) > 2:
		count, err := strconv.Atoi(normalizeWord(tokens[1]))
		if err != nil || count < 0 {
			return time.Time{}, 0, false
		}
		switch strings.TrimSuffix(normalizeWord(tokens[2]), "s") {
		case "day":
			day = today.AddDate(0, 0, count)
		case "week":
			day = today.AddDate(0, 0, 7*count)
		default:
			return time.Time{}, 0, false
		}
		consumed = 3
	default:
		if weekday, ok := weekdays[word]; ok {
			day = nextWeekday(today, weekday, false)
			break
		}
		if parsed, err := time.ParseInLocation("2006-01-02", word, now.Location()); err == nil {
			day = parsed
			break
		}
		hour, minute, used, ok := parseClock(tokens)
		if !ok {
			return time.Time{}, 0, false
		}
		return time.Date(today.Year(), today.Month(), today.Day(), hour, minute, 0, 0, now.Location()), used, true
	}

	rest := tokens[consumed:]
	skip := 0
	if len(rest) > 0 && normalizeWord(rest[0]) == "at" {
		skip = 1
	}
	if hour, minute, used, ok := parseClock(rest[skip:]); ok {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), consumed + skip + used, true
	}
	return time.Date(day.Year(), day.Month(), day.Day(), defaultHour, defaultMinute, 0, 0, now.Location()), consumed, true
}

// nextWeekday returns the next day falling on weekday, today included unless
// strict is set.
func nextWeekday(today time.Time, weekday time.Weekday, strict bool) time.Time {
	days := (int(weekday) - int(today.Weekday()) + 7) % 7
	if days == 0 && strict {
		days = 7
	}
	return today.AddDate(0, 0, days)
}

// parseClock reads "3pm", "3 pm", "3:30pm", "15:00" or "noon". A bare number
// is not a time.
func parseClock(tokens []string) (int, int, int, bool) {
	if len(tokens) == 0 {
		return 0, 0, 0, false
	}
	word := normalizeWord(tokens[0])
	if word == "noon" {
		return 12, 0, 1, true
	}

	used := 1
	meridiem := ""
	switch {
	case strings.HasSuffix(word, "am"), strings.HasSuffix(word, "pm"):
		meridiem = word[len(word)-2:]
		word = word[:len(word)-2]
	case len(tokens) > 1:
		if next := normalizeWord(tokens[1]); next == "am" || next == "pm" {
			meridiem = next
			used = 2
		}
	}

	hourText, minuteText, hasColon := strings.Cut(word, ":")
	if meridiem == "" && !hasColon {
		return 0, 0, 0, false
	}
	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return 0, 0, 0, false
	}
	minute := 0
	if hasColon {
		minute, err = strconv.Atoi(minuteText)
		if err != nil || len(minuteText) != 2 || minute > 59 {
			return 0, 0, 0, false
		}
	}

	switch meridiem {
	case "":
		if hour > 23 {
			return 0, 0, 0, false
		}
	default:
		if hour < 1 || hour > 12 {
			return 0, 0, 0, false
		}
		if meridiem == "pm" && hour != 12 {
			hour += 12
		}
		if meridiem == "am" && hour == 12 {
			hour = 0
		}
	}
	return hour, minute, used, true
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, t.Location())
}

func normalizeWord(token string) string {
	return strings.ToLower(trimPunctuation(token))
}

func trimPunctuation(token string) string {
	return strings.Trim(token, ",.;:!?\"'()")
}

func isCapitalized(token string) bool {
	trimmed := trimPunctuation(token)
	if trimmed == "" {
		return false
	}
	first := []rune(trimmed)[0]
	return strings.ToUpper(string(first)) == string(first) && strings.ToLower(string(first)) != string(first)
}
