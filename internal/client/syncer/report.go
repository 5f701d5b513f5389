package syncer

import (
	"time"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
)

// EntityReport counts what one cycle did for one entity kind.
type EntityReport struct {
	// Enqueued is the number of unsynced records that had no outbox marker.
	Enqueued int64
	Pushed   int
	Deleted  int
	// Skipped counts markers dropped without a request: the record is gone,
	// already synced, or deleted before the backend ever saw it.
	Skipped int
	Failed  int
	Pulled  int
	// PullErr is set when this kind's pull was abandoned.
	PullErr error
}

type Report struct {
	Started  time.Time
	Duration time.Duration
	Entities map[models.EntityKind]*EntityReport
}

func newReport(start time.Time) Report {
	r := Report{Started: start, Entities: map[models.EntityKind]*EntityReport{}}
	for _, kind := range models.SyncOrder {
		r.Entities[kind] = &EntityReport{}
	}
	return r
}

// Entity returns the counters for kind; unknown kinds report zeros.
func (r Report) Entity(kind models.EntityKind) EntityReport {
	if er, ok := r.Entities[kind]; ok && er != nil {
		return *er
	}
	return EntityReport{}
}

// Failed is the number of pushes that failed across all kinds.
func (r Report) Failed() int {
	n := 0
	for _, er := range r.Entities {
		n += er.Failed
	}
	return n
}
