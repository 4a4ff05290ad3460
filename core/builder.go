package core

import (
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/mrpulse/mrpulse/schema"
)

// commitSkewTolerance absorbs clock skew between the commit author's
// machine and the server: a commit authored at least this long before
// the MR creation time counts as pre-MR development work.
const commitSkewTolerance = 5 * time.Second

// System note phrases, matched against normalized (markdown-stripped)
// bodies. GitLab has used both draft and WIP wording over time.
var (
	draftPhrases = []string{
		"marked this merge request as draft",
		"marked as a work in progress",
	}
	readyPhrases = []string{
		"marked this merge request as ready",
		"unmarked as a work in progress",
	}
	approvedPhrases = []string{
		"approved this merge request",
	}
)

// BuildInput bundles the raw platform records for one merge request.
type BuildInput struct {
	MR              *schema.MergeRequest
	Commits         []schema.Commit
	Notes           []schema.Note
	Pipelines       []schema.Pipeline
	ReactionsByNote map[int64][]schema.AwardEmoji
}

// BuildEvents turns raw platform records into the unified, time-ordered
// event sequence. After assembly the events are sorted by timestamp,
// deduplicated on (timestamp, type, actor id), renumbered from 1, and
// annotated with the interval to the next event.
func BuildEvents(cl *Classifier, in BuildInput) []schema.Event {
	var events []schema.Event

	events = append(events, buildCommitEvents(in.MR, in.Commits)...)
	events = append(events, buildCreationEvent(in.MR))
	events = append(events, buildNoteEvents(cl, in)...)
	events = append(events, buildPipelineEvents(in.Pipelines)...)

	if in.MR.MergedAt != nil {
		events = append(events, schema.Event{
			Timestamp: *in.MR.MergedAt,
			Actor:     systemActor(),
			Type:      schema.EventMerged,
		})
	}

	return finalizeEvents(events)
}

// buildCreationEvent records the MR creation itself.
func buildCreationEvent(mr *schema.MergeRequest) schema.Event {
	return schema.Event{
		Timestamp: mr.CreatedAt,
		Actor:     authorActor(mr),
		Type:      schema.EventMRCreated,
		Details:   &schema.EventDetails{Message: excerpt(mr.Title)},
	}
}

// buildCommitEvents synthesizes BranchCreated from the earliest commit
// and classifies each commit as pre-MR development or a push to the
// open MR.
func buildCommitEvents(mr *schema.MergeRequest, commits []schema.Commit) []schema.Event {
	if len(commits) == 0 {
		return nil // no commits, no branch event
	}

	earliest := commits[0].AuthoredDate
	for _, c := range commits[1:] {
		if c.AuthoredDate.Before(earliest) {
			earliest = c.AuthoredDate
		}
	}

	events := make([]schema.Event, 0, len(commits)+1)
	events = append(events, schema.Event{
		Timestamp: earliest,
		Actor:     authorActor(mr),
		Type:      schema.EventBranchCreated,
	})

	for _, c := range commits {
		eventType := schema.EventCommitPushed
		if mr.CreatedAt.Sub(c.AuthoredDate) >= commitSkewTolerance {
			eventType = schema.EventCodeCommitted
		}
		events = append(events, schema.Event{
			Timestamp: c.AuthoredDate,
			Actor:     commitActor(mr, c),
			Type:      eventType,
			Details: &schema.EventDetails{
				Message: excerpt(c.Title),
				SHA:     c.ShortID,
			},
		})
	}
	return events
}

// buildNoteEvents translates discussion notes into typed events.
// System notes are matched against the lifecycle phrase sets; everything
// else goes through the content-priority chain: CI pattern first, then
// bot classification, then author check, else human.
func buildNoteEvents(cl *Classifier, in BuildInput) []schema.Event {
	notes := append([]schema.Note(nil), in.Notes...)
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})

	stats := buildCommentStats(notes)
	lastCommit := latestCommitBefore(in.Commits)

	var events []schema.Event
	priorAIReview := false

	for _, note := range notes {
		if note.System {
			if ev, ok := buildSystemEvent(note); ok {
				events = append(events, ev)
			}
			// Unmatched system notes (e.g. "added 2 commits") are noise.
			continue
		}

		reactions := reactionNames(in.ReactionsByNote[note.ID])

		if cl.IsCIContent(note.Body) {
			events = append(events, schema.Event{
				Timestamp: note.CreatedAt,
				Actor:     noteActor(note, schema.Role(""), false, schema.RoleSystem),
				Type:      schema.EventCIBotResponse,
				Details:   noteDetails(note, reactions),
			})
			continue
		}

		decision := cl.Classify(ClassifyInput{
			Username:         note.Author.Username,
			Body:             note.Body,
			CreatedAt:        note.CreatedAt,
			MRCreatedAt:      in.MR.CreatedAt,
			LastCommitAt:     lastCommit(note.CreatedAt),
			AvgCommentLength: stats.avgLength(note.Author.Username),
			RecentSameUser:   stats.otherTimes(note.Author.Username, note.CreatedAt),
			PriorAIReview:    priorAIReview,
			IsAuthor:         note.Author.ID == in.MR.Author.ID,
		})

		eventType := schema.EventHumanReviewStarted
		switch {
		case decision.Role == schema.RoleAuthor:
			eventType = schema.EventAuthorResponse
		case decision.IsAIBot:
			eventType = schema.EventAIReviewStarted
			if !cl.IsHybrid(note.Author.Username) {
				priorAIReview = true
			}
		}

		events = append(events, schema.Event{
			Timestamp: note.CreatedAt,
			Actor:     noteActor(note, decision.Role, decision.IsAIBot, decision.Role),
			Type:      eventType,
			Details:   noteDetails(note, reactions),
		})
	}
	return events
}

// buildSystemEvent matches a system note against the lifecycle phrase sets.
func buildSystemEvent(note schema.Note) (schema.Event, bool) {
	body := schema.StripMarkdown(note.Body)

	var eventType schema.EventType
	switch {
	case matchesAny(body, draftPhrases):
		eventType = schema.EventMarkedAsDraft
	case matchesAny(body, readyPhrases):
		eventType = schema.EventMarkedAsReady
	case matchesAny(body, approvedPhrases):
		eventType = schema.EventApproved
	default:
		return schema.Event{}, false
	}

	return schema.Event{
		Timestamp: note.CreatedAt,
		Actor: schema.Actor{
			ID:       note.Author.ID,
			Username: note.Author.Username,
			Name:     note.Author.Name,
			Role:     schema.RoleSystem,
		},
		Type: eventType,
	}, true
}

// buildPipelineEvents records terminal pipeline runs only; pending or
// running pipelines carry no timeline signal.
func buildPipelineEvents(pipelines []schema.Pipeline) []schema.Event {
	var events []schema.Event
	for _, p := range pipelines {
		var eventType schema.EventType
		switch p.Status {
		case "success":
			eventType = schema.EventPipelineSuccess
		case "failed":
			eventType = schema.EventPipelineFailed
		default:
			continue
		}
		ts := p.UpdatedAt
		if ts.IsZero() {
			ts = p.CreatedAt
		}
		events = append(events, schema.Event{
			Timestamp: ts,
			Actor:     systemActor(),
			Type:      eventType,
			Details:   &schema.EventDetails{PipelineID: p.ID},
		})
	}
	return events
}

// finalizeEvents sorts, deduplicates, renumbers, and fills intervals.
func finalizeEvents(events []schema.Event) []schema.Event {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	// Deduplicate identical (timestamp, type, actor id) records; these
	// come from duplicate API pagination, not real activity.
	type dedupeKey struct {
		ts      int64
		evtType schema.EventType
		actorID int64
	}
	seen := make(map[dedupeKey]struct{}, len(events))
	deduped := events[:0]
	for _, ev := range events {
		key := dedupeKey{ts: ev.Timestamp.UnixNano(), evtType: ev.Type, actorID: ev.Actor.ID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, ev)
	}

	for i := range deduped {
		deduped[i].Sequence = i + 1
		if i < len(deduped)-1 {
			interval := deduped[i+1].Timestamp.Sub(deduped[i].Timestamp).Seconds()
			deduped[i].IntervalToNext = &interval
		}
	}
	return deduped
}

// commentStats holds per-user historical statistics for one MR's notes.
type commentStats struct {
	lengths map[string][]int
	times   map[string][]time.Time
}

func buildCommentStats(notes []schema.Note) *commentStats {
	stats := &commentStats{
		lengths: make(map[string][]int),
		times:   make(map[string][]time.Time),
	}
	for _, n := range notes {
		if n.System {
			continue
		}
		key := strings.ToLower(n.Author.Username)
		stats.lengths[key] = append(stats.lengths[key], len(n.Body))
		stats.times[key] = append(stats.times[key], n.CreatedAt)
	}
	return stats
}

func (s *commentStats) avgLength(username string) float64 {
	lengths := s.lengths[strings.ToLower(username)]
	if len(lengths) == 0 {
		return 0
	}
	total := 0
	for _, l := range lengths {
		total += l
	}
	return float64(total) / float64(len(lengths))
}

// otherTimes returns the user's note timestamps excluding the one at ts.
func (s *commentStats) otherTimes(username string, ts time.Time) []time.Time {
	all := s.times[strings.ToLower(username)]
	others := make([]time.Time, 0, len(all))
	skipped := false
	for _, t := range all {
		if !skipped && t.Equal(ts) {
			skipped = true
			continue
		}
		others = append(others, t)
	}
	return others
}

// latestCommitBefore returns a lookup for the most recent commit
// authored before a given time.
func latestCommitBefore(commits []schema.Commit) func(time.Time) *time.Time {
	sorted := append([]schema.Commit(nil), commits...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].AuthoredDate.Before(sorted[j].AuthoredDate)
	})
	return func(before time.Time) *time.Time {
		var latest *time.Time
		for i := range sorted {
			if sorted[i].AuthoredDate.After(before) {
				break
			}
			latest = &sorted[i].AuthoredDate
		}
		return latest
	}
}

func matchesAny(body string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(body, p) {
			return true
		}
	}
	return false
}

func reactionNames(reactions []schema.AwardEmoji) []string {
	if len(reactions) == 0 {
		return nil
	}
	names := make([]string, 0, len(reactions))
	for _, r := range reactions {
		names = append(names, r.Name)
	}
	return names
}

func noteDetails(note schema.Note, reactions []string) *schema.EventDetails {
	return &schema.EventDetails{
		Message:   excerpt(note.Body),
		Reactions: reactions,
	}
}

// excerpt keeps message details short enough for detail output.
func excerpt(s string) string {
	const maxExcerpt = 120
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxExcerpt {
		return s
	}
	return string(runes[:maxExcerpt]) + "..."
}

func authorActor(mr *schema.MergeRequest) schema.Actor {
	return schema.Actor{
		ID:       mr.Author.ID,
		Username: mr.Author.Username,
		Name:     mr.Author.Name,
		Role:     schema.RoleAuthor,
	}
}

// commitActor builds the actor for a commit event. Commit identities
// carry no platform user id, so a stable synthetic id is derived from
// the author email to keep deduplication keys distinct per author.
func commitActor(mr *schema.MergeRequest, c schema.Commit) schema.Actor {
	username := c.AuthorEmail
	if at := strings.IndexByte(username, '@'); at > 0 {
		username = username[:at]
	}
	role := schema.RoleReviewer
	id := syntheticActorID(c.AuthorEmail)
	if strings.EqualFold(username, mr.Author.Username) || strings.EqualFold(c.AuthorName, mr.Author.Name) {
		role = schema.RoleAuthor
		id = mr.Author.ID
		username = mr.Author.Username
	}
	return schema.Actor{
		ID:       id,
		Username: username,
		Name:     c.AuthorName,
		Role:     role,
	}
}

func noteActor(note schema.Note, role schema.Role, isAIBot bool, fallback schema.Role) schema.Actor {
	if role == "" {
		role = fallback
	}
	return schema.Actor{
		ID:       note.Author.ID,
		Username: note.Author.Username,
		Name:     note.Author.Name,
		Role:     role,
		IsAIBot:  isAIBot,
	}
}

func systemActor() schema.Actor {
	return schema.Actor{
		Username: "system",
		Name:     "System",
		Role:     schema.RoleSystem,
	}
}

// syntheticActorID hashes an identity string into a stable negative id,
// out of the range of real platform user ids.
func syntheticActorID(identity string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(identity)))
	return -int64(h.Sum32())
}
