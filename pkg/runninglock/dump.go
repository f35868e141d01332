package runninglock

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/powerpolicy/powermgr-go/internal/tick"
	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// DumpInfo renders the records, counters and proxy table.
func (m *Manager) DumpInfo() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	b.WriteString("RUNNING LOCK DUMP:\n")
	fmt.Fprintf(&b, "  totalSize=%d validSize=%d\n", len(m.records), m.validNum(model.LockButt))

	b.WriteString("Summary By Type:\n")
	for _, typ := range model.AllLockTypes {
		fmt.Fprintf(&b, "  %s: %d\n", typ, m.validNum(typ))
	}

	if len(m.records) == 0 {
		b.WriteString("Lock List is Empty.\n")
	} else {
		recs := make([]*Record, 0, len(m.records))
		for _, rec := range m.records {
			recs = append(recs, rec)
		}
		slices.SortFunc(recs, func(a, b *Record) int { return cmp.Compare(a.param.LockID, b.param.LockID) })

		now := tick.Now()
		b.WriteString("Dump Lock List:\n")
		for i, rec := range recs {
			age := int64(0)
			if rec.lockTimeMs > 0 {
				age = now - rec.lockTimeMs
			}
			fmt.Fprintf(&b, "  index=%d time=%d type=%s name=%s uid=%d pid=%d state=%s overTime=%t\n",
				i+1, age, rec.typ(), rec.param.Name, rec.param.Uid, rec.param.Pid, rec.state, rec.overTime)
		}
	}

	b.WriteString("Dump Proxy List:\n")
	b.WriteString(m.proxy.Dump())
	fmt.Fprintf(&b, "Peripherals Info:\n  Proximity: Enabled=%t Status=%t\n",
		m.proximity.IsEnabled(), m.proximity.IsClose())
	return b.String()
}
