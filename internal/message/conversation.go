package message

import (
	"sort"

	"farmstand/internal/dbmysql"
)

// Conversation is a derived per-counterpart summary. It is never
// stored; it is recomputed from the message list on every fetch.
type Conversation struct {
	CounterpartID    uint64           `json:"counterpartId"`
	CounterpartName  string           `json:"counterpartName"`
	CounterpartImage string           `json:"counterpartImage,omitempty"`
	LastMessage      *dbmysql.Message `json:"lastMessage"`
	UnreadCount      int64            `json:"unreadCount"`
}

// aggregate folds a user's messages into one summary per counterpart.
// LastMessage is the member with the greatest CreatedAt; ties go to
// the highest message id, which keeps the result deterministic.
// UnreadCount counts members addressed to the user and still unread.
func aggregate(userID uint64, messages []*dbmysql.Message) []*Conversation {
	byCounterpart := make(map[uint64]*Conversation)

	for _, msg := range messages {
		counterpartID := msg.SenderID
		if msg.SenderID == userID {
			counterpartID = msg.RecipientID
		}

		conv, ok := byCounterpart[counterpartID]
		if !ok {
			conv = &Conversation{CounterpartID: counterpartID}
			byCounterpart[counterpartID] = conv
		}

		if conv.LastMessage == nil || newer(msg, conv.LastMessage) {
			conv.LastMessage = msg
		}
		if msg.RecipientID == userID && !msg.IsRead {
			conv.UnreadCount++
		}
	}

	conversations := make([]*Conversation, 0, len(byCounterpart))
	for _, conv := range byCounterpart {
		conversations = append(conversations, conv)
	}

	// Most recently active first; counterpart id breaks exact ties
	sort.Slice(conversations, func(i, j int) bool {
		a, b := conversations[i].LastMessage, conversations[j].LastMessage
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.MessageID != b.MessageID {
			return a.MessageID > b.MessageID
		}
		return conversations[i].CounterpartID < conversations[j].CounterpartID
	})

	return conversations
}

func newer(a, b *dbmysql.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.MessageID > b.MessageID
}
