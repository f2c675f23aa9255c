package debugger

import (
	"testing"
)

func loc(fn string, line int) Location {
	return Location{Func: fn, Line: line}
}

func TestBreakpointManager_AddBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(loc("main", 3), false, "")

	if bp == nil {
		t.Fatal("AddBreakpoint returned nil")
	}
	if bp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", bp.ID)
	}
	if bp.At != loc("main", 3) {
		t.Errorf("Expected location main:3, got %+v", bp.At)
	}
	if !bp.Enabled {
		t.Error("Breakpoint should be enabled by default")
	}
	if bp.Temporary {
		t.Error("Breakpoint should not be temporary")
	}
	if bp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", bp.HitCount)
	}
}

func TestBreakpointManager_AddMultiple(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(loc("main", 3), false, "")
	bp2 := bm.AddBreakpoint(loc("main", 7), false, "")

	if bp1.ID == bp2.ID {
		t.Error("Breakpoint IDs should be unique")
	}
	if bm.Count() != 2 {
		t.Errorf("Expected 2 breakpoints, got %d", bm.Count())
	}
}

func TestBreakpointManager_AddDuplicate(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(loc("main", 3), false, "")
	bp2 := bm.AddBreakpoint(loc("main", 3), false, "x == 5")

	if bp1.ID != bp2.ID {
		t.Error("Duplicate location should update existing breakpoint")
	}
	if bp2.Condition != "x == 5" {
		t.Error("Condition not updated")
	}
}

func TestBreakpointManager_DeleteBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(loc("main", 3), false, "")

	if err := bm.DeleteBreakpoint(bp.ID); err != nil {
		t.Fatalf("DeleteBreakpoint failed: %v", err)
	}
	if bm.GetBreakpoint(loc("main", 3)) != nil {
		t.Error("Breakpoint not deleted")
	}
	if err := bm.DeleteBreakpoint(999); err == nil {
		t.Error("Expected error when deleting non-existent breakpoint")
	}
}

func TestBreakpointManager_EnableDisable(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(loc("main", 3), false, "")

	if err := bm.DisableBreakpoint(bp.ID); err != nil {
		t.Fatalf("DisableBreakpoint failed: %v", err)
	}
	if bp.Enabled {
		t.Error("Breakpoint not disabled")
	}

	if err := bm.EnableBreakpoint(bp.ID); err != nil {
		t.Fatalf("EnableBreakpoint failed: %v", err)
	}
	if !bp.Enabled {
		t.Error("Breakpoint not enabled")
	}
}

func TestBreakpointManager_GetBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(loc("main", 3), false, "")
	bm.AddBreakpoint(loc("main", 7), false, "")

	bp := bm.GetBreakpoint(loc("main", 3))
	if bp == nil {
		t.Fatal("GetBreakpoint returned nil")
	}
	if bp.At != loc("main", 3) {
		t.Errorf("Wrong breakpoint returned: got %+v, want main:3", bp.At)
	}

	if bm.GetBreakpoint(loc("main", 99)) != nil {
		t.Error("GetBreakpoint should return nil for non-existent location")
	}
}

func TestBreakpointManager_GetBreakpointByID(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(loc("main", 3), false, "")
	bp2 := bm.AddBreakpoint(loc("main", 7), false, "")

	if found := bm.GetBreakpointByID(bp1.ID); found != bp1 {
		t.Error("GetBreakpointByID returned wrong breakpoint")
	}
	if found := bm.GetBreakpointByID(bp2.ID); found != bp2 {
		t.Error("GetBreakpointByID returned wrong breakpoint")
	}
	if found := bm.GetBreakpointByID(999); found != nil {
		t.Error("GetBreakpointByID should return nil for non-existent ID")
	}
}

func TestBreakpointManager_GetAllBreakpoints(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(loc("main", 3), false, "")
	bm.AddBreakpoint(loc("main", 7), false, "")
	bm.AddBreakpoint(loc("add", 1), false, "")

	if all := bm.GetAllBreakpoints(); len(all) != 3 {
		t.Errorf("Expected 3 breakpoints, got %d", len(all))
	}
}

func TestBreakpointManager_Clear(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(loc("main", 3), false, "")
	bm.AddBreakpoint(loc("main", 7), false, "")

	bm.Clear()

	if bm.Count() != 0 {
		t.Errorf("Expected 0 breakpoints after clear, got %d", bm.Count())
	}
}

func TestBreakpoint_Temporary(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(loc("main", 3), true, "")

	if !bp.Temporary {
		t.Error("Breakpoint should be temporary")
	}
}

func TestBreakpoint_Condition(t *testing.T) {
	bm := NewBreakpointManager()

	condition := "x == 42"
	bp := bm.AddBreakpoint(loc("main", 3), false, condition)

	if bp.Condition != condition {
		t.Errorf("Condition = %s, want %s", bp.Condition, condition)
	}
}

func TestBreakpointManager_ProcessHitTemporaryDeletes(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(loc("main", 3), true, "")

	hit := bm.ProcessHit(loc("main", 3))
	if hit == nil || hit.ID != bp.ID {
		t.Fatal("ProcessHit did not return the hit breakpoint")
	}
	if hit.HitCount != 1 {
		t.Errorf("HitCount = %d, want 1", hit.HitCount)
	}
	if bm.GetBreakpoint(loc("main", 3)) != nil {
		t.Error("temporary breakpoint should be removed after ProcessHit")
	}
}

func TestBreakpointManager_ProcessHitMissReturnsNil(t *testing.T) {
	bm := NewBreakpointManager()

	if bm.ProcessHit(loc("main", 3)) != nil {
		t.Error("ProcessHit on an unset location should return nil")
	}
}
