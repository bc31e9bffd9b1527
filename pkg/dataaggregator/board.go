package dataaggregator

import (
	"sync"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/travigo/nextdepartures/pkg/ctdf"
)

// Board holds the committed state of every stop. Each refresh takes a generation for its key
// before fetching and only the latest issued generation may commit. Committed states are never
// modified in place, updates replace them.
type Board struct {
	mutex sync.RWMutex

	issued map[ctdf.StopKey]uint64
	states map[ctdf.StopKey]*ctdf.StopState

	messageGenerations map[string]uint64
	messages           map[string][]*ctdf.TrafficMessage
}

func NewBoard() *Board {
	return &Board{
		issued:             map[ctdf.StopKey]uint64{},
		states:             map[ctdf.StopKey]*ctdf.StopState{},
		messageGenerations: map[string]uint64{},
		messages:           map[string][]*ctdf.TrafficMessage{},
	}
}

func (b *Board) NextGeneration(key ctdf.StopKey) uint64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.issued[key]++
	return b.issued[key]
}

// Commit stores the state if its generation is still the latest issued for its key
func (b *Board) Commit(state *ctdf.StopState) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if state.Generation != b.issued[state.Key] {
		log.Debug().
			Str("stop", state.Key.String()).
			Uint64("generation", state.Generation).
			Uint64("latest", b.issued[state.Key]).
			Msg("Discarding superseded stop state")
		return false
	}

	b.states[state.Key] = state
	return true
}

// AttachItinerary sets the itinerary of a destination group on the committed state, provided
// the lookup's generation is still the latest issued and the committed state belongs to it
func (b *Board) AttachItinerary(key ctdf.StopKey, generation uint64, destination string, itinerary string, reason ctdf.AbsenceReason) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.issued[key] != generation {
		return false
	}

	current, exists := b.states[key]
	if !exists || current.Generation != generation {
		return false
	}

	updated := *current
	updated.Groups = make([]*ctdf.DepartureGroup, len(current.Groups))
	attached := false

	for i, group := range current.Groups {
		if group.Destination == destination && !attached {
			replacement := *group
			replacement.Itinerary = itinerary
			replacement.ItineraryReason = reason
			updated.Groups[i] = &replacement
			attached = true
		} else {
			updated.Groups[i] = group
		}
	}

	if attached {
		b.states[key] = &updated
	}
	return attached
}

func (b *Board) NextMessageGeneration(lineID string) uint64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.messageGenerations[lineID]++
	return b.messageGenerations[lineID]
}

func (b *Board) CommitTrafficMessages(lineID string, generation uint64, messages []*ctdf.TrafficMessage) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if generation != b.messageGenerations[lineID] {
		return false
	}

	b.messages[lineID] = messages
	return true
}

// Get returns a deep copy of the committed state so callers can reduce or reshape it freely
func (b *Board) Get(key ctdf.StopKey) (*ctdf.StopState, bool) {
	b.mutex.RLock()
	state, exists := b.states[key]
	b.mutex.RUnlock()

	if !exists {
		return nil, false
	}

	var snapshot ctdf.StopState
	if err := copier.CopyWithOption(&snapshot, state, copier.Option{DeepCopy: true}); err != nil {
		log.Error().Err(err).Str("stop", key.String()).Msg("Failed to copy stop state")
		return nil, false
	}
	// time.Time only has unexported fields, copy it by value
	snapshot.GeneratedAt = state.GeneratedAt

	return &snapshot, true
}

func (b *Board) TrafficMessages(lineID string) []*ctdf.TrafficMessage {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	messages := make([]*ctdf.TrafficMessage, 0, len(b.messages[lineID]))
	for _, message := range b.messages[lineID] {
		copied := *message
		messages = append(messages, &copied)
	}

	return messages
}
