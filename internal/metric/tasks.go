package metric

import (
	"strings"
	"time"

	"github.com/Sundancer78/proxmox-suits/internal/client"
)

const failedTaskWindow = 24 * time.Hour

// taskState returns the lowercased task state, preferring the PVE "status"
// field over the PBS "state" field.
func taskState(t client.Task) string {
	st := t.Status
	if st == "" {
		st = t.State
	}
	return strings.ToLower(st)
}

// TaskRunning reports whether a task is still running: its state says so, or
// it has no parseable endtime.
func TaskRunning(t client.Task) bool {
	switch taskState(t) {
	case "running", "active":
		return true
	}
	return t.EndTime == nil || !t.EndTime.Valid
}

// TaskSuccessful reports whether a task finished successfully.
func TaskSuccessful(t client.Task) bool {
	switch taskState(t) {
	case "ok", "success":
		return true
	}
	return false
}

// CountRunningTasks counts the tasks currently running.
func CountRunningTasks(tasks []client.Task) int {
	n := 0
	for _, t := range tasks {
		if TaskRunning(t) {
			n++
		}
	}
	return n
}

// CountFailedTasks counts the tasks that finished with a non-success status
// within the trailing 24 hours of now.
func CountFailedTasks(tasks []client.Task, now time.Time) int {
	cutoff := float64(now.Unix()) - failedTaskWindow.Seconds()

	n := 0
	for _, t := range tasks {
		if t.EndTime == nil || !t.EndTime.Valid || t.EndTime.Seconds < cutoff {
			continue
		}
		if TaskRunning(t) || TaskSuccessful(t) {
			continue
		}
		switch strings.ToLower(t.ExitStatus) {
		case "ok", "success":
			continue
		}
		n++
	}
	return n
}
