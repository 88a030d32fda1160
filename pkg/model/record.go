package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Delimiter separates fields in a record line. Values are not escaped.
const Delimiter = "|"

const recordFields = 7

// DeserializationError is returned for a record line that cannot be decoded.
type DeserializationError struct {
	Line   string
	Reason string
	Err    error
}

func (e *DeserializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed task record %q: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed task record %q: %s", e.Line, e.Reason)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// MarshalRecord encodes the task as a single line without a trailing newline:
// title|description|category|priority|YYYY-MM-DD|assignee|True/False
func (t Task) MarshalRecord() string {
	completed := "False"
	if t.Completed {
		completed = "True"
	}
	return strings.Join([]string{
		t.Title,
		t.Description,
		t.Category,
		strconv.Itoa(int(t.Priority)),
		t.DeadlineString(),
		t.AssignedUser,
		completed,
	}, Delimiter)
}

// UnmarshalRecord decodes a line produced by MarshalRecord.
func UnmarshalRecord(line string) (Task, error) {
	parts := strings.Split(line, Delimiter)
	if len(parts) != recordFields {
		return Task{}, &DeserializationError{
			Line:   line,
			Reason: fmt.Sprintf("expected %d fields, got %d", recordFields, len(parts)),
		}
	}

	priority, err := strconv.Atoi(parts[3])
	if err != nil {
		return Task{}, &DeserializationError{Line: line, Reason: "bad priority", Err: err}
	}

	deadline, err := ParseDate(parts[4])
	if err != nil {
		var dateErr *DateFormatError
		if errors.As(err, &dateErr) {
			err = dateErr.Err
		}
		return Task{}, &DeserializationError{Line: line, Reason: "bad deadline", Err: err}
	}

	return Task{
		Title:        parts[0],
		Description:  parts[1],
		Category:     parts[2],
		Priority:     Priority(priority),
		Deadline:     deadline,
		AssignedUser: parts[5],
		Completed:    strings.EqualFold(parts[6], "true"),
	}, nil
}
