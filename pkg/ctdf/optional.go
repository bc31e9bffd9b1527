package ctdf

type AbsenceReason string

const (
	AbsenceNone                       AbsenceReason = ""
	AbsenceFieldMissing               AbsenceReason = "FieldMissing"
	AbsenceMalformedField             AbsenceReason = "MalformedField"
	AbsenceFeedUnreachable            AbsenceReason = "FeedUnreachable"
	AbsenceFallbackAbsent             AbsenceReason = "FallbackAbsent"
	AbsenceItineraryDetailUnavailable AbsenceReason = "ItineraryDetailUnavailable"
)

// Optional carries a value read from an external document along with the reason it is missing.
// A zero Reason means the value is present.
type Optional[T any] struct {
	Value  T
	Reason AbsenceReason
}

func Present[T any](value T) Optional[T] {
	return Optional[T]{Value: value}
}

func Absent[T any](reason AbsenceReason) Optional[T] {
	return Optional[T]{Reason: reason}
}

func (o Optional[T]) Valid() bool {
	return o.Reason == AbsenceNone
}

// Get returns the value and whether it is present, in the style of a map lookup
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid()
}

func (o Optional[T]) OrElse(fallback T) T {
	if o.Valid() {
		return o.Value
	}
	return fallback
}
