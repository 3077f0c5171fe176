/*
Package historysink is the Call-History Sink: an append-only record of
conversation turns, menus, digit presses, transfers, and terminations. Every operation is fire-and-forget from the
orchestrator's perspective — failures are logged, never surfaced.

Shaped as one mutable "current state" row (CallRecord) plus an
append-only JSONB event ledger (CallEvent) carrying a small tagged
union, the shape the call-history store's event stream needs.
*/
package historysink

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CallRecord is the upsert-by-call-id row.
type CallRecord struct {
	CallID    string         `gorm:"column:call_id;primaryKey" json:"call_id"`
	To        string         `gorm:"column:to_number;index" json:"to"`
	From      string         `gorm:"column:from_number;index" json:"from"`
	Status    string         `gorm:"column:status;not null;default:'in_progress';index" json:"status"`
	Purpose   string         `gorm:"column:purpose" json:"purpose,omitempty"`
	Conversation datatypes.JSON `gorm:"column:conversation;type:jsonb" json:"conversation,omitempty"`
	Digits    datatypes.JSON `gorm:"column:digits;type:jsonb" json:"digits,omitempty"`
	TransferStatus string    `gorm:"column:transfer_status" json:"transfer_status,omitempty"`
	TerminationReason string `gorm:"column:termination_reason" json:"termination_reason,omitempty"`
	StartedAt time.Time      `gorm:"column:started_at;not null;default:now()" json:"started_at"`
	EndedAt   *time.Time     `gorm:"column:ended_at" json:"ended_at,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CallRecord) TableName() string { return "call_record" }

// CallEventKind tags the small union of event kinds this stream carries:
// {conversation | dtmf | menu | transfer | termination}.
type CallEventKind string

const (
	EventConversation CallEventKind = "conversation"
	EventDTMF         CallEventKind = "dtmf"
	EventMenu         CallEventKind = "menu"
	EventTransfer     CallEventKind = "transfer"
	EventTermination  CallEventKind = "termination"
)

// CallEvent is one append-only ledger row.
type CallEvent struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	CallID    string         `gorm:"column:call_id;not null;index" json:"call_id"`
	Kind      CallEventKind  `gorm:"column:kind;not null;index" json:"kind"`
	Data      datatypes.JSON `gorm:"column:data;type:jsonb" json:"data,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (CallEvent) TableName() string { return "call_event" }
