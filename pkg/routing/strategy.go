package routing

import (
	"sort"
)

// selectOrder computes the ordered candidate list for one request.
//
// Eligibility requires an enabled policy and an available provider. An
// empty eligible set falls back to the full configured set so that a
// later per-candidate rejection surfaces a meaningful error instead of
// "no providers configured". The preferred provider is moved to the
// front only when it is in the eligible set; the remainder keeps
// strategy order.
func (r *Router) selectOrder(preferred string) []string {
	r.mu.RLock()
	strategy := r.strategy
	policies := make(map[string]ProviderPolicy, len(r.policies))
	for id, policy := range r.policies {
		policies[id] = policy
	}
	r.mu.RUnlock()

	all := make([]string, 0, len(r.providers))
	eligible := make([]string, 0, len(r.providers))
	eligibleSet := make(map[string]bool, len(r.providers))
	for id, p := range r.providers {
		all = append(all, id)
		if policies[id].Enabled && p.IsAvailable() {
			eligible = append(eligible, id)
			eligibleSet[id] = true
		}
	}

	pool := eligible
	if len(pool) == 0 {
		pool = all
	}

	switch strategy {
	case StrategyRoundRobin:
		r.orderRoundRobin(pool)
	case StrategyFastest:
		r.orderFastest(pool)
	default:
		// primary-failover and least-cost: ascending priority, ties by
		// provider id.
		orderByPriority(pool, policies)
	}

	if preferred != "" && eligibleSet[preferred] {
		moveToFront(pool, preferred)
	}

	return pool
}

// orderByPriority sorts ids ascending by policy priority, ties broken
// by id for determinism.
func orderByPriority(ids []string, policies map[string]ProviderPolicy) {
	sort.Slice(ids, func(i, j int) bool {
		pi, pj := policies[ids[i]].Priority, policies[ids[j]].Priority
		if pi != pj {
			return pi < pj
		}
		return ids[i] < ids[j]
	})
}

// orderRoundRobin rotates a stable id ordering by the shared cursor.
// The cursor is monotonic and re-indexed modulo the current pool size,
// so a provider may be skipped or repeated once when the pool size
// changes between calls.
func (r *Router) orderRoundRobin(ids []string) {
	sort.Strings(ids)
	if len(ids) < 2 {
		return
	}

	offset := int(r.cursor.Add(1)-1) % len(ids)
	if offset == 0 {
		return
	}

	rotated := make([]string, 0, len(ids))
	rotated = append(rotated, ids[offset:]...)
	rotated = append(rotated, ids[:offset]...)
	copy(ids, rotated)
}

// orderFastest sorts ids ascending by moving-average latency; providers
// without samples report zero and sort first. Ties by id.
func (r *Router) orderFastest(ids []string) {
	latency := make(map[string]float64, len(ids))
	for _, id := range ids {
		latency[id] = r.perf[id].AvgLatencyMs()
	}
	sort.Slice(ids, func(i, j int) bool {
		li, lj := latency[ids[i]], latency[ids[j]]
		if li != lj {
			return li < lj
		}
		return ids[i] < ids[j]
	})
}

// moveToFront moves id to the front of ids, preserving the relative
// order of the rest.
func moveToFront(ids []string, id string) {
	idx := -1
	for i, candidate := range ids {
		if candidate == id {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return
	}
	copy(ids[1:idx+1], ids[:idx])
	ids[0] = id
}
