package log

import "testing"

func TestComponentString(t *testing.T) {
	tests := []struct {
		c    Component
		want string
	}{
		{ComponentStateMachine, "STATE_MACHINE"},
		{ComponentRunningLock, "RUNNING_LOCK"},
		{ComponentService, "SERVICE"},
		{Component(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Component(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		c    Category
		want string
	}{
		{CategoryState, "STATE"},
		{CategoryDesync, "DESYNC"},
		{CategoryTransit, "TRANSIT"},
		{CategoryLock, "LOCK"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestLockOpString(t *testing.T) {
	tests := []struct {
		op   LockOp
		want string
	}{
		{LockOpAdd, "ADD"},
		{LockOpRemove, "REMOVE"},
		{LockOpProxy, "PROXY"},
		{LockOpUnproxy, "UNPROXY"},
		{LockOpTimeout, "TIMEOUT"},
		{LockOp(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("LockOp(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestCategoryValues(t *testing.T) {
	// Values are persisted in log files and must remain stable.
	if CategoryState != 0 || CategoryDesync != 1 || CategoryTransit != 2 || CategoryLock != 3 || CategoryError != 4 {
		t.Error("category values changed")
	}
}
