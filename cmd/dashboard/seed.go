package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/service"
)

const demoTracker = "Login Events"

// demoClock is the sandbox time source. Seeding shifts it into the past so
// the demo graph spans several days.
type demoClock struct {
	mu    sync.RWMutex
	shift time.Duration
}

func (c *demoClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Now().Add(-c.shift)
}

func (c *demoClock) set(shift time.Duration) {
	c.mu.Lock()
	c.shift = shift
	c.mu.Unlock()
}

// demoDays holds the rows inserted per day, oldest first.
var demoDays = []int{4, 7, 3, 9, 6}

// seedDemo creates the demo tracker with an alert rule on failed logins and
// a few days of events.
func seedDemo(ctx context.Context, trackers service.TrackerService, clock *demoClock) error {
	defer clock.set(0)

	err := trackers.CreateTracker(ctx, model.TrackerSchema{
		Name: demoTracker,
		Properties: []model.Property{
			{Name: "user", Type: model.TypeString},
			{Name: "success", Type: model.TypeBoolean},
			{Name: "attempts", Type: model.TypeInteger, Nullable: true},
		},
	})
	if err != nil {
		return err
	}
	rule := model.Row{
		"name":         "failed login",
		"object_name":  demoTracker,
		"column_name":  "success",
		"column_value": "False",
	}
	if err := trackers.Insert(ctx, model.AlertRulesObject, rule); err != nil {
		return fmt.Errorf("insert alert rule: %w", err)
	}

	users := []string{"ada", "grace", "linus", "ken"}
	n := 0
	for i, count := range demoDays {
		clock.set(time.Duration(len(demoDays)-1-i) * 24 * time.Hour)
		for j := 0; j < count; j++ {
			row := model.Row{
				"user":     users[n%len(users)],
				"success":  n%5 != 3,
				"attempts": int64(1 + n%3),
			}
			if err := trackers.Insert(ctx, demoTracker, row); err != nil {
				return fmt.Errorf("insert demo row %d: %w", n, err)
			}
			n++
		}
	}
	return nil
}
