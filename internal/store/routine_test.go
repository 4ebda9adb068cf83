package store

import (
	"context"
	"testing"

	"github.com/dukerupert/taskminder/internal/model"
)

func TestRoutineCreateRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	rs := NewRoutineStore(db)
	ctx := context.Background()

	r, err := rs.Create(ctx, model.Routine{
		UserID:       user.ID,
		Title:        "Timesheet",
		Frequency:    model.FrequencyWeekly,
		Weeks:        model.IntSet{1, 27, 53},
		WorkdaysOnly: true,
		IsActive:     true,
		DueTime:      ptr("17:30"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Frequency != model.FrequencyWeekly {
		t.Errorf("frequency = %q", r.Frequency)
	}
	if len(r.Weeks) != 3 || !r.Weeks.Contains(27) {
		t.Errorf("weeks = %v", r.Weeks)
	}
	if len(r.Days) != 0 {
		t.Errorf("days = %v, want empty", r.Days)
	}
	if !r.WorkdaysOnly || !r.IsActive {
		t.Errorf("flags = workdays %v active %v", r.WorkdaysOnly, r.IsActive)
	}
	if r.DueTime == nil || *r.DueTime != "17:30" {
		t.Errorf("due_time = %v", r.DueTime)
	}
	if r.EndTime != nil || r.LastGeneratedDate != nil {
		t.Errorf("expected nil end_time and last_generated_date")
	}
}

func TestRoutineListActive(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	rs := NewRoutineStore(db)
	ctx := context.Background()

	a, _ := rs.Create(ctx, model.Routine{UserID: user.ID, Title: "A", Frequency: model.FrequencyDaily, IsActive: true})
	rs.Create(ctx, model.Routine{UserID: user.ID, Title: "B", Frequency: model.FrequencyDaily, IsActive: false})
	rs.Create(ctx, model.Routine{UserID: user.ID, Title: "C", Frequency: model.FrequencyMonthly, IsActive: false})

	active, err := rs.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Errorf("active = %+v, want only %d", active, a.ID)
	}
}

func TestRoutineCreateNormalizesDays(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	rs := NewRoutineStore(db)
	ctx := context.Background()

	r, err := rs.Create(ctx, model.Routine{
		UserID: user.ID, Title: "Gym", Frequency: model.FrequencyDaily,
		Days: model.StringSet{"Mon", "WE", "friday", "mon"}, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, _ := rs.GetByID(ctx, r.ID)
	want := []string{"monday", "wednesday", "friday"}
	if len(got.Days) != len(want) {
		t.Fatalf("days = %v, want %v", got.Days, want)
	}
	for i := range want {
		if got.Days[i] != want[i] {
			t.Errorf("days[%d] = %q, want %q", i, got.Days[i], want[i])
		}
	}
}

func TestRoutineCreateRejectsInvalidSchedule(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	rs := NewRoutineStore(db)
	ctx := context.Background()

	tests := []struct {
		name string
		r    model.Routine
	}{
		{"unknown day", model.Routine{Days: model.StringSet{"funday"}}},
		{"bad due time", model.Routine{Days: model.StringSet{"monday"}, DueTime: ptr("25:00")}},
		{"bad end time", model.Routine{EndTime: ptr("noon")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.r.UserID = user.ID
			tt.r.Title = tt.name
			tt.r.Frequency = model.FrequencyDaily
			tt.r.IsActive = true
			if _, err := rs.Create(ctx, tt.r); err == nil {
				t.Error("expected error")
			}
		})
	}

	active, _ := rs.ListActive(ctx)
	if len(active) != 0 {
		t.Errorf("rejected routines were stored: %d", len(active))
	}
}
