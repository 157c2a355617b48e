package domain

import (
	"errors"
	"time"
)

// ErrBroadcastNotFound is returned for an unknown broadcast id
var ErrBroadcastNotFound = errors.New("broadcast not found")

// Audience selects broadcast recipients
type Audience string

const (
	AudienceAll    Audience = "all"
	AudienceNormal Audience = "normal"
	AudienceVIP    Audience = "vip"
)

// Valid reports whether a is a known audience
func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceNormal, AudienceVIP:
		return true
	}
	return false
}

// Broadcast is the persisted summary of one fan-out
type Broadcast struct {
	ID          int64     `db:"id"`
	Target      Audience  `db:"target"`
	Kind        MediaKind `db:"kind"`
	Text        string    `db:"text"`
	FileID      string    `db:"file_id"`
	SentCount   int       `db:"sent_count"`
	FailedCount int       `db:"failed_count"`
	CreatedAt   time.Time `db:"created_at"`
}

// Payload rebuilds the message that was broadcast
func (b Broadcast) Payload() Payload {
	return Payload{Kind: b.Kind, Text: b.Text, FileID: b.FileID}
}

// Total is the number of delivery attempts
func (b Broadcast) Total() int {
	return b.SentCount + b.FailedCount
}
