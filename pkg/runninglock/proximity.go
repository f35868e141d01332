package runninglock

// ProximityController tracks the proximity sensor while a
// PROXIMITY_SCREEN_CONTROL lock is counted. It is guarded by the manager
// lock.
type ProximityController struct {
	enabled bool
	close   bool
}

// Enable starts following sensor reports.
func (p *ProximityController) Enable() { p.enabled = true }

// Disable stops following sensor reports.
func (p *ProximityController) Disable() { p.enabled = false }

// Clear forgets the last reading.
func (p *ProximityController) Clear() { p.close = false }

// IsEnabled reports whether sensor reports are followed.
func (p *ProximityController) IsEnabled() bool { return p.enabled }

// IsClose reports whether the last accepted reading was close.
func (p *ProximityController) IsClose() bool { return p.close }

// onClose records a close reading. It reports whether the reading
// changed the controller.
func (p *ProximityController) onClose() bool {
	if !p.enabled || p.close {
		return false
	}
	p.close = true
	return true
}

// onAway records an away reading. It reports whether the reading changed
// the controller.
func (p *ProximityController) onAway() bool {
	if !p.enabled || !p.close {
		return false
	}
	p.close = false
	return true
}
