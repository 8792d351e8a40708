//go:build property

package watcher

import (
	"fmt"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestCoalesceProperties validates the debouncer's batch shaping.
func TestCoalesceProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	eventsGen := gen.SliceOf(gen.IntRange(0, 40)).Map(func(ids []int) []ChangeEvent {
		out := make([]ChangeEvent, len(ids))
		for i, id := range ids {
			out[i] = ChangeEvent{Type: EventType(i % 4), Path: fmt.Sprintf("p%d.json", id%7), Size: int64(i)}
		}
		return out
	})

	properties.Property("one event per path, sorted", prop.ForAll(
		func(events []ChangeEvent) bool {
			out := coalesce(events)
			seen := map[string]bool{}
			for _, e := range out {
				if seen[e.Path] {
					return false
				}
				seen[e.Path] = true
			}
			return sort.SliceIsSorted(out, func(i, j int) bool { return out[i].Path < out[j].Path })
		},
		eventsGen,
	))

	properties.Property("last event per path wins", prop.ForAll(
		func(events []ChangeEvent) bool {
			last := map[string]ChangeEvent{}
			for _, e := range events {
				last[e.Path] = e
			}
			out := coalesce(events)
			if len(out) != len(last) {
				return false
			}
			for _, e := range out {
				if last[e.Path] != e {
					return false
				}
			}
			return true
		},
		eventsGen,
	))

	properties.TestingRun(t)
}
