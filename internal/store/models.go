package store

import (
	"time"

	"gorm.io/datatypes"
)

type Room struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	PasswordHash   *string
	OwnerID        *string
	IsGameOver     bool
	ActiveStoryID  *string
	CreatedAt      time.Time
	LastActivityAt time.Time `gorm:"index"`
}

type Member struct {
	ID             string `gorm:"primaryKey"`
	RoomID         string `gorm:"index"`
	Name           string
	IsObserver     bool
	JoinedAt       time.Time
	LastReaction   *string
	LastReactionAt *time.Time
}

// Vote's composite primary key doubles as the unique (room, member) index.
type Vote struct {
	RoomID   string `gorm:"primaryKey"`
	MemberID string `gorm:"primaryKey"`
	Label    *string
	Value    *float64
	Icon     *string
	CastAt   time.Time
}

type CanvasObject struct {
	RoomID        string `gorm:"primaryKey"`
	ObjectID      string `gorm:"primaryKey"`
	Kind          string
	X             float64
	Y             float64
	Payload       datatypes.JSON
	IsLocked      bool
	LastUpdatedBy string
	LastUpdatedAt time.Time
}

type Presence struct {
	RoomID   string `gorm:"primaryKey"`
	MemberID string `gorm:"primaryKey"`
	CursorX  *float64
	CursorY  *float64
	IsActive bool
	LastPing time.Time `gorm:"index"`
}

// Activity is the append-only audit feed for a room (member left / kicked).
type Activity struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	RoomID    string `gorm:"index"`
	Kind      string
	UserName  string
	CreatedAt time.Time
}
