package gitlab

import (
	"sort"
	"strings"
	"time"

	"contrib-graph-service/internal/contributions/core/domain"
)

// event is the slice of the feed's event shape this adapter reads.
type event struct {
	ID         int64     `json:"id"`
	ActionName string    `json:"action_name"`
	TargetType string    `json:"target_type"`
	CreatedAt  time.Time `json:"created_at"`
	PushData   *pushData `json:"push_data"`
}

type pushData struct {
	CommitCount int `json:"commit_count"`
}

// wikiTarget is the target type of wiki page events. Both creating and
// editing a wiki page count.
const wikiTarget = "WikiPage::Meta"

// creationTargets are the target types whose creation counts as a
// contribution: issues, merge requests, snippets, and wiki pages.
var creationTargets = map[string]struct{}{
	"Issue":        {},
	"MergeRequest": {},
	"Snippet":      {},
	wikiTarget:     {},
}

// excludedTargets never count, whatever the action.
var excludedTargets = map[string]struct{}{
	"Milestone": {},
}

// normalizeAction folds the feed's textual action variants onto one
// logical action ("pushed to" and "pushed new" are both pushes, merge
// requests can come back as "accepted"). Membership and profile actions
// normalize to the empty string.
func normalizeAction(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.HasPrefix(name, "pushed"):
		return "pushed"
	case strings.HasPrefix(name, "commented"):
		return "commented"
	case name == "created" || name == "opened":
		return "created"
	case name == "updated":
		return "updated"
	case name == "merged" || name == "accepted":
		return "merged"
	case name == "approved":
		return "approved"
	default:
		return ""
	}
}

// contributionWeight returns how many contributions an event is worth,
// zero when it does not qualify. A push carries its embedded commit
// count when present, mirroring the convention that each commit is one
// unit of activity; without that metadata it counts as 1.
func contributionWeight(ev event) int {
	if _, excluded := excludedTargets[ev.TargetType]; excluded {
		return 0
	}

	switch normalizeAction(ev.ActionName) {
	case "pushed":
		if ev.PushData != nil && ev.PushData.CommitCount > 0 {
			return ev.PushData.CommitCount
		}
		return 1
	case "commented", "merged", "approved":
		return 1
	case "created":
		if _, ok := creationTargets[ev.TargetType]; ok {
			return 1
		}
		return 0
	case "updated":
		// Only wiki edits count as update contributions; retitling an
		// issue or amending a merge request does not.
		if ev.TargetType == wikiTarget {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// seriesFromBuckets turns day buckets into an ascending SourceSeries.
func seriesFromBuckets(identity string, buckets map[string]int) domain.SourceSeries {
	series := domain.SourceSeries{Source: domain.SourceGitLab, Identity: identity}
	for key, count := range buckets {
		day, err := domain.ParseDay(key)
		if err != nil {
			continue
		}
		series.Days = append(series.Days, domain.DayCount{Date: day, Count: count})
	}
	sort.Slice(series.Days, func(i, j int) bool { return series.Days[i].Date.Before(series.Days[j].Date) })
	return series
}
