package scheduler

import "time"

// nowUTC is indirected through a package variable so tests can
// substitute a fixed clock when exercising deadline/start-time logic
// without sleeping in real time.
var nowUTC = func() time.Time { return time.Now().UTC() }
