package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/taskmaster/internal/model"
)

func TestParseTaskText(t *testing.T) {
	// Wednesday.
	now := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	at := func(day, hour, minute int) time.Time {
		return time.Date(2024, 3, day, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		text     string
		title    string
		assignee string
		priority model.Priority
		due      time.Time
	}{
		{"assignee and tomorrow afternoon", "Review proposal for John by tomorrow 3pm", "Review proposal", "John", "", at(14, 15, 0)},
		{"today means end of day", "Call Bob today", "Call Bob", "", "", at(13, 23, 59)},
		{"tonight", "Dinner with Sam tonight", "Dinner with Sam", "", "", at(13, 20, 0)},
		{"priority and weekday", "Ship release p1 by friday", "Ship release", "", model.PriorityP1, at(15, 23, 59)},
		{"weekday today is today", "Pay rent by wednesday", "Pay rent", "", "", at(13, 23, 59)},
		{"next weekday skips today", "Pay rent next wednesday", "Pay rent", "", "", at(20, 23, 59)},
		{"full name and time", "Plan offsite for Alice Smith next monday at 9:30am P2", "Plan offsite", "Alice Smith", model.PriorityP2, at(18, 9, 30)},
		{"at mention and relative days", "Send invoice @carol in 3 days", "Send invoice", "carol", "", at(16, 23, 59)},
		{"lowercase for stays in title", "Gift for the team by 2024-04-01 17:00", "Gift for the team", "", "", time.Date(2024, 4, 1, 17, 0, 0, 0, time.UTC)},
		{"bare time is today", "Write report by 5pm", "Write report", "", "", at(13, 17, 0)},
		{"due keyword", "Report due friday at 10 am", "Report", "", "", at(15, 10, 0)},
		{"punctuation", "Fix bug, for Dana, by tomorrow", "Fix bug", "Dana", "", at(14, 23, 59)},
		{"unparsed by stays in title", "Stand by me", "Stand by me", "", "", at(14, 23, 59)},
		{"no date defaults to tomorrow", "Buy milk", "Buy milk", "", "", at(14, 23, 59)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := ParseTaskText(tt.text, now)
			require.NoError(t, err)
			assert.Equal(t, tt.title, input.Title)
			assert.Equal(t, tt.assignee, input.Assignee)
			assert.Equal(t, tt.priority, input.Priority)
			assert.True(t, tt.due.Equal(input.DueDate), "due: want %v, got %v", tt.due, input.DueDate)
		})
	}
}

func TestParseTaskTextRequiresTitle(t *testing.T) {
	now := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	for _, text := range []string{"", "   ", "p1 tomorrow", "for Alice by friday"} {
		_, err := ParseTaskText(text, now)
		assert.ErrorIs(t, err, ErrInvalidTask, text)
	}
}

func (suite *StateTestSuite) TestAddFromParsedText() {
	input, err := ParseTaskText("Review proposal for John by tomorrow 3pm p2", suite.now)
	suite.Require().NoError(err)

	task, err := suite.state.Add(context.Background(), input)
	suite.Require().NoError(err)
	suite.Equal("Review proposal", task.Title)
	suite.Equal("John", task.Assignee)
	suite.Equal(model.PriorityP2, task.Priority)
	suite.Equal(model.StatusPending, task.Status)
	suite.False(task.Overdue(suite.now))
}
