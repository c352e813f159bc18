package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/taskmaster/internal/model"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	due := time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)
	created := time.Date(2023, 12, 1, 9, 0, 0, 0, time.UTC)
	tasks := []model.Task{{
		ID:        "t1",
		Title:     "Ship release",
		Assignee:  "Alice",
		Priority:  model.PriorityP1,
		Status:    model.StatusInProgress,
		DueDate:   due,
		CreatedAt: created,
	}}

	data, err := Encode(tasks)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":1`)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "t1", decoded[0].ID)
	assert.True(t, decoded[0].DueDate.Equal(due))
	assert.True(t, decoded[0].CreatedAt.Equal(created))
	assert.Equal(t, model.StatusInProgress, decoded[0].Status)
}

func TestEncodeNilWritesEmptyList(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"tasks":[]}`, string(data))
}

func TestDecodeEmptyInput(t *testing.T) {
	tasks, err := Decode(nil)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestDecodeCorruptInputYieldsEmpty(t *testing.T) {
	for _, input := range []string{"not json", `{"version":1,"tasks":[{`, `[1,2,3]`, `"string"`, `{"version":99,"tasks":[]}`} {
		tasks, err := Decode([]byte(input))
		assert.Error(t, err, "input %q", input)
		assert.NotNil(t, tasks, "input %q", input)
		assert.Empty(t, tasks, "input %q", input)
	}
}

func TestDecodeLegacyArray(t *testing.T) {
	input := `[
		{"id":"a","title":"Legacy","assignee":"Bob","priority":"P2","status":"pending","dueDate":"2024-01-03T10:00:00.000Z","createdAt":1700000000000},
		{"id":"b","title":"Date only","priority":"P4","status":"completed","dueDate":"2024-02-01","createdAt":"garbage"}
	]`

	tasks, err := Decode([]byte(input))
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), tasks[0].DueDate.UTC())
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), tasks[0].CreatedAt)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), tasks[1].DueDate)
	assert.True(t, tasks[1].CreatedAt.IsZero())
}

func TestDecodeKeepsUnknownEnums(t *testing.T) {
	tasks, err := Decode([]byte(`{"version":1,"tasks":[{"id":"x","title":"T","priority":"urgent","status":"archived"}]}`))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.Priority("urgent"), tasks[0].Priority)
	assert.Equal(t, model.Status("archived"), tasks[0].Status)
	assert.True(t, tasks[0].DueDate.IsZero())
}

func TestDecodeDropsMissingAndDuplicateIDs(t *testing.T) {
	input := `{"version":1,"tasks":[
		{"id":"a","title":"first"},
		{"id":"","title":"no id"},
		{"id":"a","title":"duplicate"},
		{"id":"b","title":"second"}
	]}`

	tasks, err := Decode([]byte(input))
	assert.Error(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "b", tasks[1].ID)
}
