package domain

import "time"

// MediaKind tells how a payload is delivered
type MediaKind string

const (
	MediaText      MediaKind = "text"
	MediaPhoto     MediaKind = "photo"
	MediaVideo     MediaKind = "video"
	MediaDocument  MediaKind = "document"
	MediaAnimation MediaKind = "animation"
)

// Payload is a message body: plain text or a media reference with caption
type Payload struct {
	Kind   MediaKind
	Text   string // text or caption
	FileID string
}

// IsMedia reports whether the payload carries a file reference
func (p Payload) IsMedia() bool {
	return p.Kind != MediaText && p.Kind != "" && p.FileID != ""
}

// Direction of a logged message
type Direction string

const (
	FromUser  Direction = "user"
	FromAdmin Direction = "admin"
)

// MessageLog is a row of the user <-> admin message archive
type MessageLog struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Direction Direction `db:"direction"`
	Kind      MediaKind `db:"kind"`
	Text      string    `db:"text"`
	FileID    string    `db:"file_id"`
	CreatedAt time.Time `db:"created_at"`
}

// AIChatLog is a question/answer pair from the AI chat
type AIChatLog struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	CreatedAt time.Time `db:"created_at"`
}

// Role of a completion turn
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Turn is one role-tagged entry sent to the completion provider
type Turn struct {
	Role Role
	Text string
}
