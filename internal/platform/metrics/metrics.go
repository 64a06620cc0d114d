package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Collector accumulates request counters in memory. Totals reset on restart.
type Collector struct {
	started       time.Time
	total         atomic.Uint64
	clientErrors  atomic.Uint64
	serverErrors  atomic.Uint64
	rateLimited   atomic.Uint64
	durationMicro atomic.Uint64

	mu     sync.Mutex
	routes map[string]uint64
}

type RouteCount struct {
	Route string `json:"route"`
	Count uint64 `json:"count"`
}

type Snapshot struct {
	UptimeSeconds  int64        `json:"uptimeSeconds"`
	RequestsTotal  uint64       `json:"requestsTotal"`
	ClientErrors   uint64       `json:"clientErrorsTotal"`
	ServerErrors   uint64       `json:"serverErrorsTotal"`
	RateLimited    uint64       `json:"rateLimitedTotal"`
	AvgDurationMs  float64      `json:"avgDurationMs"`
	RequestsByPath []RouteCount `json:"requestsByRoute"`
}

func New() *Collector {
	return &Collector{started: time.Now(), routes: make(map[string]uint64)}
}

// Record counts one finished request. route should be the matched route
// pattern rather than the raw path so ids do not explode the map.
func (c *Collector) Record(route string, status int, duration time.Duration) {
	c.total.Add(1)
	switch {
	case status == 429:
		c.rateLimited.Add(1)
		c.clientErrors.Add(1)
	case status >= 500:
		c.serverErrors.Add(1)
	case status >= 400:
		c.clientErrors.Add(1)
	}
	c.durationMicro.Add(uint64(duration.Microseconds()))

	if route == "" {
		route = "unmatched"
	}
	c.mu.Lock()
	c.routes[route]++
	c.mu.Unlock()
}

func (c *Collector) Snapshot() Snapshot {
	total := c.total.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(c.durationMicro.Load()) / float64(total) / 1000
	}

	c.mu.Lock()
	routes := make([]RouteCount, 0, len(c.routes))
	for route, count := range c.routes {
		routes = append(routes, RouteCount{Route: route, Count: count})
	}
	c.mu.Unlock()
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Count != routes[j].Count {
			return routes[i].Count > routes[j].Count
		}
		return routes[i].Route < routes[j].Route
	})

	return Snapshot{
		UptimeSeconds:  int64(time.Since(c.started).Seconds()),
		RequestsTotal:  total,
		ClientErrors:   c.clientErrors.Load(),
		ServerErrors:   c.serverErrors.Load(),
		RateLimited:    c.rateLimited.Load(),
		AvgDurationMs:  avg,
		RequestsByPath: routes,
	}
}
