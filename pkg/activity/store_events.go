package activity

import (
	"strings"
	"time"
)

const (
	VerbStoreSet       = "store.set"
	VerbStoreDelete    = "store.delete"
	VerbStoreDestroyed = "store.destroyed"

	ObjectPointer = "store.pointer"
	ObjectStore   = "store"

	// RootObjectID stands in for the whole-document pointer, which is empty.
	RootObjectID = "#"
)

// Actor identifies who performs store writes.
type Actor struct {
	ActorID  string
	UserID   string
	TenantID string
}

// StoreEventInput describes a single applied mutation.
type StoreEventInput struct {
	Actor      Actor
	StoreID    string
	Pointer    string
	Channel    string
	Deferred   bool
	BatchSize  int
	Value      any
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildStoreSetEvent builds the event emitted after a value is written.
func BuildStoreSetEvent(input StoreEventInput) Event {
	event := buildStoreEvent(VerbStoreSet, ObjectPointer, input)
	if input.Value != nil {
		event.Metadata["value"] = input.Value
	}
	return event
}

// BuildStoreDeleteEvent builds the event emitted after a pointer is removed.
func BuildStoreDeleteEvent(input StoreEventInput) Event {
	return buildStoreEvent(VerbStoreDelete, ObjectPointer, input)
}

// BuildStoreDestroyedEvent builds the event emitted when a store is torn down.
func BuildStoreDestroyedEvent(input StoreEventInput) Event {
	return buildStoreEvent(VerbStoreDestroyed, ObjectStore, input)
}

func buildStoreEvent(verb, objectType string, input StoreEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if input.StoreID != "" {
		metadata["store_id"] = input.StoreID
	}
	if input.BatchSize > 0 {
		metadata["batch_size"] = input.BatchSize
	}
	metadata["deferred"] = input.Deferred

	objectID := input.StoreID
	if objectType == ObjectPointer {
		objectID = input.Pointer
		if objectID == "" {
			objectID = RootObjectID
		}
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.Actor.ActorID),
		UserID:     strings.TrimSpace(input.Actor.UserID),
		TenantID:   strings.TrimSpace(input.Actor.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
