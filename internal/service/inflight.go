package service

import (
	"fmt"

	"golang.org/x/sync/singleflight"
)

type dedupObserver interface {
	RecordDeduplicated(action string)
}

// InflightGuard lets at most one backend call run per (session, action,
// resource). Concurrent duplicates wait for it and share its result.
type InflightGuard struct {
	group   singleflight.Group
	metrics dedupObserver
}

func NewInflightGuard(metrics dedupObserver) *InflightGuard {
	return &InflightGuard{metrics: metrics}
}

func inflightKey(sessionID, action string, resourceID int64) string {
	return fmt.Sprintf("%s|%s|%d", sessionID, action, resourceID)
}

// guarded runs fn under the guard. A nil guard runs fn directly.
func guarded[T any](g *InflightGuard, sessionID, action string, resourceID int64, fn func() (T, error)) (T, error) {
	if g == nil {
		return fn()
	}
	v, err, shared := g.group.Do(inflightKey(sessionID, action, resourceID), func() (interface{}, error) {
		return fn()
	})
	if shared && g.metrics != nil {
		g.metrics.RecordDeduplicated(action)
	}
	out, _ := v.(T)
	return out, err
}
