package orgmode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/harrisonrobin/taskbook/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `#+TITLE: chores
* TODO [#A] Pay rent :Bills:home:
  DEADLINE: <2030-06-15 Sat>
  :PROPERTIES:
  :ASSIGNEE: alice
  :END:
  transfer before noon
* DONE Water plants
  DEADLINE: <2030-06-10 Mon 09:00>
  :PROPERTIES:
  :CATEGORY: Garden Work
  :END:
* TODO Someday maybe
  no deadline here
* Notes
  DEADLINE: <2030-01-01 Tue>
** TODO [#c] Nested chore
   DEADLINE: <2030-07-01>
`

func TestParse(t *testing.T) {
	tasks, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	rent := tasks[0]
	assert.Equal(t, "Pay rent", rent.Title)
	assert.Equal(t, "Bills", rent.Category)
	assert.Equal(t, model.High, rent.Priority)
	assert.Equal(t, "2030-06-15", rent.DeadlineString())
	assert.Equal(t, "alice", rent.AssignedUser)
	assert.Equal(t, "transfer before noon", rent.Description)
	assert.False(t, rent.Completed)

	plants := tasks[1]
	assert.True(t, plants.Completed)
	assert.Equal(t, "Garden Work", plants.Category)
	assert.Equal(t, model.Medium, plants.Priority)
	assert.Equal(t, "2030-06-10", plants.DeadlineString())

	nested := tasks[2]
	assert.Equal(t, "Nested chore", nested.Title)
	assert.Equal(t, model.Low, nested.Priority)
}

func TestParseRejectsInvalidDate(t *testing.T) {
	_, err := Parse(strings.NewReader("* TODO Bad\n  DEADLINE: <2030-02-31 Mon>\n"))
	assert.Error(t, err)
}

func TestWriteThenParse(t *testing.T) {
	var tasks []model.Task
	for _, args := range [][]string{
		{"Pay rent", "monthly", "Bills", "2030-06-15", "alice"},
		{"Call mom", "", "Family Matters", "2030-06-20", ""},
		{"Loose end", "", "", "2030-07-01", "bob"},
	} {
		task, err := model.NewTask(args[0], args[1], args[2], model.Low, args[3], args[4])
		require.NoError(t, err)
		tasks = append(tasks, task)
	}
	tasks[1].Priority = model.High
	tasks[2].MarkCompleted()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tasks))
	assert.Contains(t, buf.String(), "* TODO [#C] Pay rent :Bills:\n  DEADLINE: <2030-06-15 Sat>\n")

	parsed, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, tasks, parsed)
}

func TestFilterTasks(t *testing.T) {
	tasks, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	filtered := FilterTasks(tasks, "bills")
	require.Len(t, filtered, 1)
	assert.Equal(t, "Pay rent", filtered[0].Title)
}

func TestWriteKeepsUnknownPriority(t *testing.T) {
	task, err := model.NewTask("Odd one", "", "misc", model.Priority(7), "2030-03-03", "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []model.Task{task}))
	assert.Contains(t, buf.String(), "* TODO Odd one :misc:\n")
	assert.Contains(t, buf.String(), "  :PRIORITY: 7\n")

	parsed, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, model.Priority(7), parsed[0].Priority)
}

func TestParseRejectsBadPriorityProperty(t *testing.T) {
	input := "* TODO Bad\n  DEADLINE: <2030-03-03 Sun>\n  :PROPERTIES:\n  :PRIORITY: high\n  :END:\n"
	_, err := Parse(strings.NewReader(input))
	assert.ErrorContains(t, err, "PRIORITY")
}

func TestParseLongBody(t *testing.T) {
	body := strings.Repeat("x", 70*1024)
	input := "* TODO Big\n  DEADLINE: <2030-03-03 Sun>\n  " + body + "\n"

	tasks, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, body, tasks[0].Description)
}
