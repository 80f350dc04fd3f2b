package models

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestLicenseCovers(t *testing.T) {
	tests := []struct {
		license LicenseCategory
		vehicle VehicleCategory
		want    bool
	}{
		{"B", VehicleCar, true},
		{"B", VehicleMotorcycle, false},
		{"A", VehicleMotorcycle, true},
		{"A", VehicleCar, false},
		{"AB", VehicleMotorcycle, true},
		{"AB", VehicleCar, true},
		{"ab", VehicleCar, true},
		{"C", VehicleTruck, true},
		{"C", VehicleCar, true},
		{"C", VehicleBus, false},
		{"D", VehicleBus, true},
		{"D", VehicleTruck, true},
		{"AD", VehicleMotorcycle, true},
		{"E", VehicleBus, true},
		{"E", VehicleMotorcycle, false},
		{"", VehicleCar, false},
		{"B", VehicleCategory("tractor"), false},
	}

	for _, tt := range tests {
		if got := tt.license.Covers(tt.vehicle); got != tt.want {
			t.Errorf("%q.Covers(%s) = %v, want %v", tt.license, tt.vehicle, got, tt.want)
		}
	}
}

func TestLessonTransitions(t *testing.T) {
	all := []LessonStatus{LessonScheduled, LessonCompleted, LessonNoShow, LessonCancelled}

	for _, from := range all {
		for _, to := range all {
			want := from == LessonScheduled && to != LessonScheduled
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, want)
			}
		}
		if from.IsTerminal() == (from == LessonScheduled) {
			t.Errorf("%s.IsTerminal() = %v", from, from.IsTerminal())
		}
		if !from.IsValid() {
			t.Errorf("%s should be valid", from)
		}
	}

	if LessonStatus("pending").IsValid() {
		t.Error("unknown status reported valid")
	}
	if LessonCancelled.ConsumesCredit() {
		t.Error("cancelled lessons must not consume credits")
	}
	for _, s := range ConsumingStatuses {
		if !s.ConsumesCredit() {
			t.Errorf("%s listed as consuming but ConsumesCredit is false", s)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    datatypes.Time
		wantErr bool
	}{
		{"09:00", datatypes.NewTime(9, 0, 0, 0), false},
		{"14:30", datatypes.NewTime(14, 30, 0, 0), false},
		{"07:05:30", datatypes.NewTime(7, 5, 30, 0), false},
		{"25:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if DateKey(d) != "2024-03-15" {
		t.Errorf("DateKey = %s", DateKey(d))
	}
	if Weekday(d) != time.Friday {
		t.Errorf("Weekday = %s, want Friday", Weekday(d))
	}

	if _, err := ParseDate("15/03/2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestClockArithmetic(t *testing.T) {
	start := datatypes.NewTime(9, 0, 0, 0)
	end := AddMinutes(start, 50)
	if ClockString(end) != "09:50" {
		t.Errorf("ClockString = %s, want 09:50", ClockString(end))
	}
	if AddMinutes(datatypes.NewTime(23, 30, 0, 0), 50) <= Day {
		t.Error("lesson crossing midnight should end after Day")
	}
}

func TestOverlaps(t *testing.T) {
	at := func(h, m int) datatypes.Time { return datatypes.NewTime(h, m, 0, 0) }

	tests := []struct {
		name           string
		s1, e1, s2, e2 datatypes.Time
		want           bool
	}{
		{"same window", at(9, 0), at(9, 50), at(9, 0), at(9, 50), true},
		{"partial", at(9, 0), at(9, 50), at(9, 30), at(10, 20), true},
		{"contained", at(9, 0), at(11, 0), at(9, 30), at(10, 0), true},
		{"touching after", at(9, 0), at(9, 50), at(9, 50), at(10, 40), false},
		{"touching before", at(9, 50), at(10, 40), at(9, 0), at(9, 50), false},
		{"apart", at(8, 0), at(8, 50), at(14, 0), at(14, 50), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAvailabilityContains(t *testing.T) {
	w := InstructorAvailability{StartTime: datatypes.NewTime(8, 0, 0, 0), EndTime: datatypes.NewTime(12, 0, 0, 0)}

	if !w.Contains(datatypes.NewTime(11, 10, 0, 0), datatypes.NewTime(12, 0, 0, 0)) {
		t.Error("lesson ending exactly at window end should fit")
	}
	if w.Contains(datatypes.NewTime(11, 30, 0, 0), datatypes.NewTime(12, 20, 0, 0)) {
		t.Error("lesson running past window end should not fit")
	}
	if w.Contains(datatypes.NewTime(7, 30, 0, 0), datatypes.NewTime(8, 20, 0, 0)) {
		t.Error("lesson starting before window should not fit")
	}
}
