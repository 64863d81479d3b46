package contract

import (
	"anongram/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// OutboundSink is one live client connection seen from the registry side.
// Deliver must never block on a slow consumer: implementations enqueue and
// return ErrSlowConsumer when the buffer is full.
type OutboundSink interface {
	Deliver(payload []byte) error
	Open() bool
}

// MessageStore is the persistence collaborator of the relay.
// Append must complete (or fail) before the message is broadcast.
type MessageStore interface {
	Append(msg domain.ChatMessage) error
	QueryByParticipants(a, b domain.ParticipantID) ([]domain.ChatMessage, error)
}

// UserDirectory is the profile collaborator. The relay itself never touches it;
// it serves the HTTP surface and the seeding done at startup.
type UserDirectory interface {
	FindByEmail(email string) (domain.User, error)
	Create(email string) (domain.User, error)
	List() ([]domain.User, error)
}
