package workers

import "time"

// SetClock replaces the sweep's time source.
func (w *ScheduledPublish) SetClock(now func() time.Time) { w.now = now }
