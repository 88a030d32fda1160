package orgmode

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/harrisonrobin/taskbook/pkg/model"
)

var (
	headingRegex  = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s+(?:\[#([A-Ca-c])\]\s+)?(.*?)(?:\s+:([\w@:]+):)?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})[^>]*>`)
	propertyRegex = regexp.MustCompile(`^:([A-Za-z_]+):\s*(.*)$`)
	tagRegex      = regexp.MustCompile(`^[\w@]+$`)
)

var cookiePriority = map[string]model.Priority{"A": model.High, "B": model.Medium, "C": model.Low}

// entry collects one heading and its body until the next heading.
type entry struct {
	done     bool
	priority model.Priority
	title    string
	tags     []string
	deadline string
	props    map[string]string
	body     []string
}

func (e *entry) task() (model.Task, error) {
	if raw, ok := e.props["PRIORITY"]; ok {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return model.Task{}, fmt.Errorf("invalid PRIORITY property %q: %w", raw, err)
		}
		e.priority = model.Priority(p)
	}

	category := e.props["CATEGORY"]
	if category == "" && len(e.tags) > 0 {
		category = e.tags[0]
	}
	task, err := model.NewTask(e.title, strings.Join(e.body, " "), category, e.priority, e.deadline, e.props["ASSIGNEE"])
	if err != nil {
		return model.Task{}, err
	}
	if e.done {
		task.MarkCompleted()
	}
	return task, nil
}

// ParseFiles parses several Org files into one task list.
func ParseFiles(paths []string) ([]model.Task, error) {
	var all []model.Task
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		tasks, err := Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, tasks...)
	}
	return all, nil
}

// Parse reads TODO/DONE headings. Headings without a DEADLINE are skipped;
// a heading whose fields cannot form a task is an error.
func Parse(r io.Reader) ([]model.Task, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), math.MaxInt32)
	var tasks []model.Task
	var current *entry
	inDrawer := false

	flush := func() error {
		if current == nil || current.deadline == "" {
			return nil
		}
		task, err := current.task()
		if err != nil {
			return fmt.Errorf("heading %q: %w", current.title, err)
		}
		tasks = append(tasks, task)
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") {
			if err := flush(); err != nil {
				return nil, err
			}
			current = nil
			inDrawer = false

			m := headingRegex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			current = &entry{
				done:     m[1] == "DONE",
				priority: model.Medium,
				title:    strings.TrimSpace(m[3]),
				props:    make(map[string]string),
			}
			if p, ok := cookiePriority[strings.ToUpper(m[2])]; ok {
				current.priority = p
			}
			if m[4] != "" {
				current.tags = strings.Split(m[4], ":")
			}
			continue
		}

		if current == nil || line == "" {
			continue
		}

		switch {
		case line == ":PROPERTIES:":
			inDrawer = true
		case line == ":END:":
			inDrawer = false
		case inDrawer:
			if m := propertyRegex.FindStringSubmatch(line); m != nil {
				current.props[strings.ToUpper(m[1])] = strings.TrimSpace(m[2])
			}
		case deadlineRegex.MatchString(line):
			current.deadline = deadlineRegex.FindStringSubmatch(line)[1]
		default:
			current.body = append(current.body, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Write renders tasks as Org headings that Parse reads back.
func Write(w io.Writer, tasks []model.Task) error {
	bw := bufio.NewWriter(w)
	for _, t := range tasks {
		state := "TODO"
		if t.Completed {
			state = "DONE"
		}

		heading := "* " + state + " "
		if cookie, ok := cookieFor(t.Priority); ok {
			heading += "[#" + cookie + "] "
		}
		heading += t.Title
		if tagRegex.MatchString(t.Category) {
			heading += " :" + t.Category + ":"
		}

		fmt.Fprintln(bw, heading)
		fmt.Fprintf(bw, "  DEADLINE: <%s>\n", t.Deadline.Format("2006-01-02 Mon"))
		fmt.Fprintln(bw, "  :PROPERTIES:")
		if _, ok := cookieFor(t.Priority); !ok {
			fmt.Fprintf(bw, "  :PRIORITY: %d\n", t.Priority)
		}
		if t.Category != "" {
			fmt.Fprintf(bw, "  :CATEGORY: %s\n", t.Category)
		}
		if t.AssignedUser != "" {
			fmt.Fprintf(bw, "  :ASSIGNEE: %s\n", t.AssignedUser)
		}
		fmt.Fprintln(bw, "  :END:")
		if t.Description != "" {
			fmt.Fprintf(bw, "  %s\n", t.Description)
		}
	}
	return bw.Flush()
}

// cookieFor maps a priority to its Org cookie letter. Priorities outside
// High..Low have none and are written as a PRIORITY property instead.
func cookieFor(p model.Priority) (string, bool) {
	for cookie, priority := range cookiePriority {
		if priority == p {
			return cookie, true
		}
	}
	return "", false
}

// FilterTasks keeps tasks whose category matches filter case-insensitively.
func FilterTasks(tasks []model.Task, filter string) []model.Task {
	var filtered []model.Task
	for _, task := range tasks {
		if strings.EqualFold(task.Category, filter) {
			filtered = append(filtered, task)
		}
	}
	return filtered
}
