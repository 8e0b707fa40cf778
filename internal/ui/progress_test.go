package ui

import (
	"fmt"
	"strings"
	"testing"

	"jsscope/internal/driver"
)

func TestApplyEventTracksStatus(t *testing.T) {
	m := NewProgressModel("analyzing", []string{"a.js", "b.js"}, nil).(*progressModel)

	m.Update(eventMsg(driver.Event{File: "a.js", Stage: driver.StageAnalyze, Status: driver.StatusWorking}))
	if got := m.items[0].status; got != "analyzing" {
		t.Fatalf("status = %q, want analyzing", got)
	}
	m.Update(eventMsg(driver.Event{File: "a.js", Stage: driver.StageSerialize, Status: driver.StatusDone}))
	m.Update(eventMsg(driver.Event{File: "b.js", Stage: driver.StageSerialize, Status: driver.StatusCached}))
	m.Update(eventMsg(driver.Event{File: "other.js", Status: driver.StatusError}))

	finished, cached, failed := m.counts()
	if finished != 2 || cached != 1 || failed != 0 {
		t.Fatalf("counts = %d/%d/%d", finished, cached, failed)
	}
	view := m.View()
	if !strings.Contains(view, "analyzing 2/2, 1 cached") {
		t.Fatalf("header missing from view:\n%s", view)
	}
}

func TestVisibleCapsRows(t *testing.T) {
	var files []string
	for i := range 30 {
		files = append(files, fmt.Sprintf("f%02d.js", i))
	}
	m := NewProgressModel("run", files, nil).(*progressModel)
	m.applyEvent(driver.Event{File: "f20.js", Stage: driver.StageParse, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "f03.js", Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "f07.js", Status: driver.StatusError})

	rows := m.visible()
	if len(rows) != maxRows {
		t.Fatalf("got %d rows, want %d", len(rows), maxRows)
	}
	got := []string{rows[0].path, rows[1].path, rows[2].path, rows[3].path}
	want := []string{"f20.js", "f07.js", "f03.js", "f00.js"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rows = %v, want prefix %v", got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("src/components/app.js", 10); got != "src/com..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("短い名前です", 8); got != "短い..." {
		t.Fatalf("wide truncate = %q", got)
	}
	if got := truncate("a.js", 10); got != "a.js" {
		t.Fatalf("short value changed: %q", got)
	}
}
