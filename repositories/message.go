package repositories

import (
	"anongram/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

type IMessageRepository interface {
	Append(msg domain.ChatMessage) error
	QueryByParticipants(a, b domain.ParticipantID) ([]domain.ChatMessage, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// Append persists a message in BadgerDB.
// The key is formatted as "msg:{pair}:{timestamp_padded}:{uuid}" to:
//  1. Group the two directions of a conversation under one prefix: {pair} is
//     the lexicographically sorted participant couple, so (a,b) and (b,a)
//     land on the same keyspace.
//  2. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order), with the message UUID as a collision
//     disconnector if two messages arrive at the same nanosecond.
//
// Messages are immutable: keys are never rewritten or deleted here.
func (m MessageRepository) Append(msg domain.ChatMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		pairKey(msg.SenderID, msg.ReceiverID),
		msg.Timestamp.UnixNano(),
		msg.ID,
	)
	bytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// QueryByParticipants retrieves the conversation between two participants
// using a prefix scan. Thanks to the padded timestamp in the key, messages
// come out naturally sorted by ascending time, and thanks to the sorted pair
// the query is symmetric: (a,b) and (b,a) return the same sequence.
// It stops collecting once the configured limitMessages is reached.
func (m MessageRepository) QueryByParticipants(a, b domain.ParticipantID) ([]domain.ChatMessage, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", pairKey(a, b)))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(byteMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, 0, len(byteMessages))
	for _, bytes := range byteMessages {
		var msg domain.ChatMessage
		if err = json.Unmarshal(bytes, &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// pairKey builds the order-independent conversation prefix. Participant ids
// are client-supplied strings, so each one is percent-encoded before joining:
// a raw "|" or ":" inside an id would otherwise collide with the key
// separators and alias two distinct conversations onto one prefix.
func pairKey(a, b domain.ParticipantID) string {
	ids := []string{url.QueryEscape(string(a)), url.QueryEscape(string(b))}
	sort.Strings(ids)
	return ids[0] + "|" + ids[1]
}
