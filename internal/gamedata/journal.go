package gamedata

import (
	"fmt"
	"log"
	"strings"
)

// Category is the part of the session that wrote a journal entry.
type Category string

const (
	CategorySession  Category = "session"
	CategoryMission  Category = "mission"
	CategoryPhase    Category = "phase"
	CategoryRoster   Category = "roster"
	CategorySkirmish Category = "skirmish"
	CategoryDemo     Category = "demo"
)

// NoSubject marks entries about the session rather than one recruit.
const NoSubject = "--"

// JournalEntry is one progression event.
type JournalEntry struct {
	Tick     uint32
	Category Category
	Event    string  // e.g. "promote", "goal_met"
	Subject  string  // recruit label, or NoSubject
	Detail   string
	Value    float64 // numeric payload, event specific
}

// String renders the entry as "tick category.event subject detail".
func (e JournalEntry) String() string {
	return fmt.Sprintf("%7d %s.%-14s %-4s %s", e.Tick, e.Category, e.Event, e.Subject, e.Detail)
}

// Query selects journal entries. Zero fields match anything.
type Query struct {
	Category Category
	Event    string
	Subject  string
	Contains string // substring of Detail
}

func (q Query) matches(e JournalEntry) bool {
	return (q.Category == "" || e.Category == q.Category) &&
		(q.Event == "" || e.Event == q.Event) &&
		(q.Subject == "" || e.Subject == q.Subject) &&
		(q.Contains == "" || strings.Contains(e.Detail, q.Contains))
}

// Journal is the append-only record of a session's progression. Per-tick
// detail is kept only in verbose mode. Counts per category and event are
// indexed as entries arrive.
type Journal struct {
	entries []JournalEntry
	counts  map[Category]map[string]int
	verbose bool
	out     *log.Logger
}

// NewJournal returns an empty journal.
func NewJournal(verbose bool) *Journal {
	return &Journal{verbose: verbose, counts: make(map[Category]map[string]int)}
}

// SetOutput mirrors every new entry to l. Pass nil to stop.
func (j *Journal) SetOutput(l *log.Logger) {
	j.out = l
}

// Verbose reports whether per-tick detail is kept.
func (j *Journal) Verbose() bool {
	return j.verbose
}

// Record appends e.
func (j *Journal) Record(e JournalEntry) {
	if e.Subject == "" {
		e.Subject = NoSubject
	}
	j.entries = append(j.entries, e)
	if j.counts == nil {
		j.counts = make(map[Category]map[string]int)
	}
	byEvent := j.counts[e.Category]
	if byEvent == nil {
		byEvent = make(map[string]int)
		j.counts[e.Category] = byEvent
	}
	byEvent[e.Event]++
	if j.out != nil {
		j.out.Print(e.String())
	}
}

// Trace appends e in verbose mode only.
func (j *Journal) Trace(e JournalEntry) {
	if j.verbose {
		j.Record(e)
	}
}

// fork returns an empty journal with the same verbosity that writes nowhere.
// Staged changes record into a fork; merge publishes them once committed.
func (j *Journal) fork() *Journal {
	return NewJournal(j.verbose)
}

// merge appends every entry of o, in order.
func (j *Journal) merge(o *Journal) {
	for _, e := range o.entries {
		j.Record(e)
	}
}

// Len is the number of entries.
func (j *Journal) Len() int {
	return len(j.entries)
}

// Entries returns a copy of every entry.
func (j *Journal) Entries() []JournalEntry {
	return append([]JournalEntry(nil), j.entries...)
}

// Count returns how many entries have category c and event. An empty event
// counts the whole category.
func (j *Journal) Count(c Category, event string) int {
	byEvent := j.counts[c]
	if event != "" {
		return byEvent[event]
	}
	n := 0
	for _, v := range byEvent {
		n += v
	}
	return n
}

// Find returns the entries q selects, oldest first.
func (j *Journal) Find(q Query) []JournalEntry {
	var out []JournalEntry
	for _, e := range j.entries {
		if q.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the newest entry q selects.
func (j *Journal) Last(q Query) (JournalEntry, bool) {
	for i := len(j.entries) - 1; i >= 0; i-- {
		if q.matches(j.entries[i]) {
			return j.entries[i], true
		}
	}
	return JournalEntry{}, false
}

// Any reports whether q selects at least one entry.
func (j *Journal) Any(q Query) bool {
	_, ok := j.Last(q)
	return ok
}

// Recent returns at most n of the newest entries, oldest first.
func (j *Journal) Recent(n int) []JournalEntry {
	if n <= 0 {
		return nil
	}
	if n > len(j.entries) {
		n = len(j.entries)
	}
	return append([]JournalEntry(nil), j.entries[len(j.entries)-n:]...)
}

// Format renders the whole journal, one entry per line.
func (j *Journal) Format() string {
	var sb strings.Builder
	for _, e := range j.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
