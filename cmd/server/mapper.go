package main

import (
	"anongram/domain"
	"encoding/json"
	"fmt"

	"github.com/mama165/sdk-go/database"
)

// MessageMapper renders stored chat messages in the Badger inspector.
// Keys that do not hold a message (user records for instance) fall back to
// the default raw rendering.
func MessageMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	var msg domain.ChatMessage
	if err := json.Unmarshal(val, &msg); err != nil {
		return row
	}
	if msg.ID == "" {
		return row
	}

	row.Type = "MSG"
	row.Detail = msg.Text
	row.Scores = fmt.Sprintf("%s -> %s", msg.SenderID, msg.ReceiverID)
	return row
}
