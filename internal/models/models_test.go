package models

import (
	"testing"
	"time"
)

func TestTaskCompletionPercentage(t *testing.T) {
	tests := []struct {
		name     string
		subtasks []Subtask
		want     int
	}{
		{name: "no subtasks", want: 0},
		{name: "none done", subtasks: []Subtask{{}, {}}, want: 0},
		{name: "one of three", subtasks: []Subtask{{Completed: true}, {}, {}}, want: 33},
		{name: "all done", subtasks: []Subtask{{Completed: true}, {Completed: true}}, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{Subtasks: tt.subtasks}
			if got := task.CompletionPercentage(); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestProjectMemberIDsStartsWithOwner(t *testing.T) {
	p := Project{
		OwnerID:            7,
		ProjectMemberships: []ProjectMembership{{UserID: 3}, {UserID: 9}},
	}

	ids := p.MemberIDs()
	if len(ids) != 3 || ids[0] != 7 || ids[1] != 3 || ids[2] != 9 {
		t.Fatalf("unexpected member ids %v", ids)
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := Session{ExpiresAt: now}

	if !s.Expired(now) {
		t.Fatal("expected session expiring now to be expired")
	}
	if s.Expired(now.Add(-time.Second)) {
		t.Fatal("expected session to be valid before expiry")
	}
}
