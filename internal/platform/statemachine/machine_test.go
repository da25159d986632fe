package statemachine

import (
	"errors"
	"testing"
)

type doorState string
type doorAction string

var errAlreadyOpen = errors.New("already open")

func doorMachine() *Machine[doorState, doorAction] {
	return New[doorState, doorAction]("door").
		Allow("closed", "open", "opened").
		Allow("opened", "close", "closed").
		Reject("opened", "open", errAlreadyOpen)
}

func TestMachine_Next(t *testing.T) {
	m := doorMachine()

	tests := []struct {
		name    string
		from    doorState
		action  doorAction
		want    doorState
		wantErr error
	}{
		{name: "allowed open", from: "closed", action: "open", want: "opened"},
		{name: "allowed close", from: "opened", action: "close", want: "closed"},
		{name: "custom rejection", from: "opened", action: "open", want: "opened", wantErr: errAlreadyOpen},
		{name: "unknown edge", from: "closed", action: "close", want: "closed", wantErr: ErrInvalidTransition},
		{name: "unknown state", from: "broken", action: "open", want: "broken", wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Next(tt.from, tt.action)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want=%v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("state=%s want=%s", got, tt.want)
			}
		})
	}
}

func TestMachine_Can(t *testing.T) {
	m := doorMachine()
	if !m.Can("closed", "open") {
		t.Fatalf("expected closed->open to be allowed")
	}
	if m.Can("opened", "open") {
		t.Fatalf("rejected edge must not be allowed")
	}
}
