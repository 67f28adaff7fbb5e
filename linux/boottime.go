package linux

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/openforensics/linmem/object"
)

const nsecsPerSec = 1_000_000_000

// BootTime is the derived boot instant as a raw Unix epoch value. Zone
// conversion is a presentation concern and stays with the caller.
type BootTime struct {
	Sec  int64
	Nsec int64
}

func (bt BootTime) Time() time.Time {
	return time.Unix(bt.Sec, bt.Nsec).UTC()
}

// timeVars locates the wall-to-monotonic and total-sleep timespecs. Linux
// moved them into an aggregate timekeeper structure around 3.4, so two
// layouts must be handled: standalone symbols first, then the aggregate.
func (s *Session) timeVars() (wall, sleep *object.Object, err error) {
	if wallAddr, ok := s.Symbol("wall_to_monotonic"); ok {
		wall, err = s.objects.ReadObject("timespec", wallAddr)
		if err != nil {
			return nil, nil, err
		}
		sleepAddr, ok := s.Symbol("total_sleep_time")
		if !ok {
			return nil, nil, fmt.Errorf("%w: total_sleep_time", ErrMissingSymbol)
		}
		sleep, err = s.objects.ReadObject("timespec", sleepAddr)
		if err != nil {
			return nil, nil, err
		}
		return wall, sleep, nil
	}

	tkAddr, ok := s.Symbol("timekeeper")
	if !ok {
		return nil, nil, fmt.Errorf("%w: wall_to_monotonic / timekeeper", ErrMissingSymbol)
	}
	tk, err := s.objects.ReadObject("timekeeper", tkAddr)
	if err != nil {
		return nil, nil, err
	}
	wall, err = tk.Embedded("wall_to_monotonic", "timespec")
	if err != nil {
		return nil, nil, err
	}
	sleep, err = tk.Embedded("total_sleep_time", "timespec")
	if err != nil {
		return nil, nil, err
	}
	return wall, sleep, nil
}

// BootTime computes when the captured machine booted. The kernel keeps the
// boot offset negated inside wall_to_monotonic/total_sleep_time, so the
// sums are negated back and the nanoseconds normalized into [0, 1e9). A
// capture without timekeeping data yields (zero, false); callers render
// that as unknown rather than failing the analysis.
func (s *Session) BootTime() (BootTime, bool) {
	wall, sleep, err := s.timeVars()
	if err != nil {
		slog.Warn("Unable to locate timekeeping data", "error", err)
		return BootTime{}, false
	}

	wsec, err1 := wall.Int("tv_sec")
	wnsec, err2 := wall.Int("tv_nsec")
	ssec, err3 := sleep.Int("tv_sec")
	snsec, err4 := sleep.Int("tv_nsec")
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		slog.Warn("Unreadable timekeeping fields", "wall", wall.Addr, "sleep", sleep.Addr)
		return BootTime{}, false
	}

	secs := -(wsec + ssec)
	nsecs := -(wnsec + snsec)
	secs += nsecs / nsecsPerSec
	nsecs %= nsecsPerSec
	if nsecs < 0 {
		nsecs += nsecsPerSec
		secs--
	}
	return BootTime{Sec: secs, Nsec: nsecs}, true
}

// TaskStartTime derives a task's start instant from boot time plus the
// task's monotonic start_time. Unallocated or trashed task records produce
// (zero, false) rather than an implausible date.
func (s *Session) TaskStartTime(task *object.Object) (time.Time, bool) {
	bt, ok := s.BootTime()
	if !ok {
		return time.Time{}, false
	}
	start, err := task.Embedded("start_time", "timespec")
	if err != nil {
		return time.Time{}, false
	}
	sec, err1 := start.Int("tv_sec")
	nsec, err2 := start.Int("tv_nsec")
	if err1 != nil || err2 != nil {
		return time.Time{}, false
	}

	t := time.Unix(bt.Sec+sec, bt.Nsec+nsec).UTC()
	if y := t.Year(); y < 1970 || y > 9999 {
		return time.Time{}, false
	}
	return t, true
}
