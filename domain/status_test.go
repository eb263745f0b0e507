package domain

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from int
		to   int
		want bool
	}{
		{name: "placedToKitchen", from: StatusPlaced, to: StatusInKitchen, want: true},
		{name: "placedToCancelled", from: StatusPlaced, to: StatusCancelled, want: true},
		{name: "placedSkipsToReady", from: StatusPlaced, to: StatusReady, want: false},
		{name: "kitchenToReady", from: StatusInKitchen, to: StatusReady, want: true},
		{name: "readyToServed", from: StatusReady, to: StatusServed, want: true},
		{name: "servedToPaid", from: StatusServed, to: StatusPaid, want: true},
		{name: "servedCannotCancel", from: StatusServed, to: StatusCancelled, want: false},
		{name: "paidIsTerminal", from: StatusPaid, to: StatusCancelled, want: false},
		{name: "cancelledIsTerminal", from: StatusCancelled, to: StatusPlaced, want: false},
		{name: "noBackwardsMove", from: StatusReady, to: StatusInKitchen, want: false},
		{name: "unknownFrom", from: 99, to: StatusPlaced, want: false},
		{name: "unknownTo", from: StatusPlaced, to: 99, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%d, %d) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStatusName(t *testing.T) {
	if got := StatusName(StatusInKitchen); got != "in_kitchen" {
		t.Errorf("StatusName(StatusInKitchen) = %q, want %q", got, "in_kitchen")
	}
	if got := StatusName(42); got != "" {
		t.Errorf("StatusName(42) = %q, want empty", got)
	}
}

func TestValidStatus(t *testing.T) {
	for code := StatusPlaced; code <= StatusCancelled; code++ {
		if !ValidStatus(code) {
			t.Errorf("ValidStatus(%d) = false, want true", code)
		}
	}
	if ValidStatus(0) || ValidStatus(7) {
		t.Error("ValidStatus accepted an out-of-range code")
	}
}

func TestValidMovement(t *testing.T) {
	for _, code := range []int{MovementIn, MovementOut, MovementAdjust} {
		if !ValidMovement(code) {
			t.Errorf("ValidMovement(%d) = false, want true", code)
		}
	}
	if ValidMovement(0) || ValidMovement(4) {
		t.Error("ValidMovement accepted an out-of-range code")
	}
}
