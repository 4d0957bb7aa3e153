package jobs

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/timetable/timetable"
	"github.com/robfig/cron/v3"
)

const DefaultAuditSchedule = "*/30 * * * *"

const auditTimeout = 2 * time.Minute

type Auditor interface {
	Audit(ctx context.Context) ([]timetable.Finding, error)
}

// ScheduleTimetableAudit registers the audit on c under spec, a standard
// five-field cron expression.
func ScheduleTimetableAudit(c *cron.Cron, spec string, a Auditor) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		TimetableAudit(ctx, a)
	})
}

// TimetableAudit logs every stored entry the current catalog would reject
// and returns how many there were.
func TimetableAudit(ctx context.Context, a Auditor) int {
	log.Println("Running job: TimetableAudit...")

	findings, err := a.Audit(ctx)
	if err != nil {
		log.Printf("🔥 Error auditing timetable: %v", err)
		return 0
	}

	if len(findings) == 0 {
		log.Println("✅ Timetable audit found no conflicts.")
		return 0
	}

	for _, f := range findings {
		for _, p := range f.Problems {
			log.Printf("⚠️ Entry %s (%s, %s): %v", f.Entry.ID, f.Entry.Day, f.Entry.ClassType, p)
		}
	}
	log.Printf("Timetable audit flagged %d entries.", len(findings))
	return len(findings)
}
