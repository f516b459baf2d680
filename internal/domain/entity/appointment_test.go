package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAppointmentStatusPredicates(t *testing.T) {
	tests := []struct {
		status    AppointmentStatus
		active    bool
		cancelled bool
		completed bool
	}{
		{AppointmentStatusActive, true, false, false},
		{AppointmentStatusCancelled, false, true, false},
		{AppointmentStatusCompleted, false, false, true},
	}

	for _, tt := range tests {
		a := Appointment{Status: tt.status}
		if a.IsActive() != tt.active {
			t.Errorf("status %s: IsActive() = %v, want %v", tt.status, a.IsActive(), tt.active)
		}
		if a.IsCancelled() != tt.cancelled {
			t.Errorf("status %s: IsCancelled() = %v, want %v", tt.status, a.IsCancelled(), tt.cancelled)
		}
		if a.IsCompleted() != tt.completed {
			t.Errorf("status %s: IsCompleted() = %v, want %v", tt.status, a.IsCompleted(), tt.completed)
		}
	}
}

func TestAppointmentTerminalStatesAreExclusive(t *testing.T) {
	// A single status column cannot hold two values, so cancelled and
	// completed can never both be true for the same row.
	for _, status := range []AppointmentStatus{AppointmentStatusActive, AppointmentStatusCancelled, AppointmentStatusCompleted} {
		a := Appointment{Status: status}
		if a.IsCancelled() && a.IsCompleted() {
			t.Errorf("status %s reports both cancelled and completed", status)
		}
	}
}

func TestAppointmentOwnership(t *testing.T) {
	doctorID := uuid.New()
	patientID := uuid.New()
	a := Appointment{DoctorID: doctorID, PatientID: patientID}

	if !a.OwnedByDoctor(doctorID) {
		t.Error("OwnedByDoctor should accept the owning doctor")
	}
	if a.OwnedByDoctor(uuid.New()) {
		t.Error("OwnedByDoctor should reject a foreign doctor")
	}
	if !a.OwnedByPatient(patientID) {
		t.Error("OwnedByPatient should accept the owning patient")
	}
	if a.OwnedByPatient(uuid.New()) {
		t.Error("OwnedByPatient should reject a foreign patient")
	}
}

func TestSlotKey(t *testing.T) {
	doctorID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	slotDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	got := SlotKey(doctorID, slotDate, "10:30")
	want := "slot:11111111-2222-3333-4444-555555555555:2026-03-14:10:30"
	if got != want {
		t.Errorf("SlotKey = %q, want %q", got, want)
	}

	a := Appointment{DoctorID: doctorID, SlotDate: slotDate, SlotTime: "10:30"}
	if a.SlotKeyFor() != want {
		t.Errorf("SlotKeyFor = %q, want %q", a.SlotKeyFor(), want)
	}
}
