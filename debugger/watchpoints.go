package debugger

import (
	"fmt"
	"sync"

	"github.com/pebblelang/pebble/vm"
)

// WatchType is the access kind a watchpoint triggers on.
//
// The VM exposes no separate read/write hooks — a watchpoint works by
// re-evaluating its expression against the current frame each step and
// comparing against the last known value, so WatchRead and
// WatchReadWrite currently behave identically to WatchWrite: all three
// fire on value change.
type WatchType int

const (
	WatchWrite WatchType = iota
	WatchRead
	WatchReadWrite
)

// Watchpoint monitors a scalar or array-element expression for changes
// within the currently executing frame.
type Watchpoint struct {
	ID         int
	Type       WatchType
	Expression string
	Enabled    bool
	LastValue  int32
	HitCount   int
}

// WatchpointManager owns the set of active watchpoints, grounded on
// the teacher's address-keyed watchpoint manager
// (lookbusy1344/arm-emulator debugger/watchpoints.go), narrowed to
// evaluate Pebble variable expressions instead of memory addresses.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates a new watchpoint manager.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// AddWatchpoint adds a new watchpoint.
func (wm *WatchpointManager) AddWatchpoint(wpType WatchType, expression string) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Type:       wpType,
		Expression: expression,
		Enabled:    true,
	}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

// DeleteWatchpoint removes a watchpoint by ID.
func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

// EnableWatchpoint enables a watchpoint by ID.
func (wm *WatchpointManager) EnableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = true
	return nil
}

// DisableWatchpoint disables a watchpoint by ID.
func (wm *WatchpointManager) DisableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = false
	return nil
}

// GetWatchpoint gets a watchpoint by ID.
func (wm *WatchpointManager) GetWatchpoint(id int) *Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.watchpoints[id]
}

// GetAllWatchpoints returns every watchpoint, in no particular order.
func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}
	return result
}

// CheckWatchpoints re-evaluates every enabled watchpoint against the
// VM's current frame and returns the first whose value changed.
func (wm *WatchpointManager) CheckWatchpoints(machine *vm.VM, eval *ExpressionEvaluator) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	frame := machine.Current()
	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}

		current, err := eval.Value(wp.Expression, frame)
		if err != nil {
			continue // variable out of scope this frame; skip rather than fault
		}

		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			return wp, true
		}
	}

	return nil, false
}

// InitializeWatchpoint seeds a watchpoint's last-known value so it
// doesn't immediately fire on the value it already held when set.
func (wm *WatchpointManager) InitializeWatchpoint(id int, machine *vm.VM, eval *ExpressionEvaluator) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	value, err := eval.Value(wp.Expression, machine.Current())
	if err != nil {
		return fmt.Errorf("failed to initialize watchpoint: %w", err)
	}
	wp.LastValue = value
	return nil
}

// Clear removes every watchpoint.
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints.
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}
