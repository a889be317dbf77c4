package status

import "strings"

// Status is the bridge lifecycle shared by every external source.
type Status string

const (
	Waiting Status = "waiting"
	Success Status = "success"
	Clean   Status = "clean"
	Fail    Status = "fail"
)

var synonyms = map[string]Status{
	"waiting":     Waiting,
	"queued":      Waiting,
	"pending":     Waiting,
	"success":     Success,
	"processing":  Success,
	"in_progress": Success,
	"active":      Success,
	"clean":       Clean,
	"done":        Clean,
	"finished":    Clean,
	"completed":   Clean,
	"fail":        Fail,
	"canceled":    Fail,
	"cancel":      Fail,
	"cancelled":   Fail,
}

// All lists the closed set in lifecycle order.
func All() []Status { return []Status{Waiting, Success, Clean, Fail} }

// Lookup reports the mapped status and whether raw was recognised.
func Lookup(raw string) (Status, bool) {
	s, ok := synonyms[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return Waiting, false
	}
	return s, true
}

// Normalize never fails: empty or unknown input is Waiting.
func Normalize(raw string) Status {
	s, _ := Lookup(raw)
	return s
}

// Vocabulary maps a bridge Status onto a local lifecycle enum.
type Vocabulary[T ~string] struct {
	table    map[Status]T
	fallback T
}

func NewVocabulary[T ~string](fallback T, table map[Status]T) Vocabulary[T] {
	return Vocabulary[T]{table: table, fallback: fallback}
}

func (v Vocabulary[T]) Map(s Status) T {
	if t, ok := v.table[s]; ok {
		return t
	}
	return v.fallback
}

// FromRaw normalizes raw first.
func (v Vocabulary[T]) FromRaw(raw string) T { return v.Map(Normalize(raw)) }
