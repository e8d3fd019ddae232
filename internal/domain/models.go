// Package domain defines the persistence models for the SOS backend:
// settings, contacts, alerts, alert recipients, and audit log entries.
// These types are mapped with GORM and form the core data layer of the
// application.
package domain

import (
	"time"
)

// Channel identifies a messaging medium a contact can be reached on.
type Channel string

// Supported channels.
const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Delivery states for a dispatched recipient. A recipient row starts as
// not_attempted and transitions at most once, set by the dispatcher's
// immediate outcome (never retried).
const (
	DeliveryNotAttempted = "not_attempted"
	DeliveryDelivered    = "delivered"
	DeliveryFailed       = "failed"
)

// Response states for a recipient. A valid token redemption overwrites the
// current state unconditionally; the latest submission wins.
const (
	ResponsePending       = "pending"
	ResponseResponding    = "responding"
	ResponseNotResponding = "not_responding"
)

// Setting is the single-row owner configuration. The table only ever holds
// one row (id = 1), mirroring a simple key-value settings store.
type Setting struct {
	ID        int       `json:"-"          gorm:"primaryKey;check:id = 1"`
	OwnerName string    `json:"owner_name" gorm:"type:varchar(255);not null;default:''"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// TableName returns the database table name for Setting.
func (Setting) TableName() string { return "settings" }

// Contact is a person registered to receive alerts. Contacts are owned by the
// setup flow and referenced, never mutated, during an alert's lifetime.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name / Phone: display name and phone-like address.
//   - ViaSMS / ViaWhatsApp: channels the contact accepts.
type Contact struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name"         gorm:"type:varchar(255);not null"`
	Phone       string    `json:"phone"        gorm:"type:varchar(64);not null"`
	ViaSMS      bool      `json:"via_sms"      gorm:"not null;default:true"`
	ViaWhatsApp bool      `json:"via_whatsapp" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Contact.
func (Contact) TableName() string { return "contacts" }

// Channels returns the channels enabled on the contact.
func (c Contact) Channels() []Channel {
	var out []Channel
	if c.ViaSMS {
		out = append(out, ChannelSMS)
	}
	if c.ViaWhatsApp {
		out = append(out, ChannelWhatsApp)
	}
	return out
}

// Alert is one SOS event with an optional free-text message. Alerts are
// immutable after creation: no edits, no cancellation.
type Alert struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Message   string    `json:"message"    gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for Alert.
func (Alert) TableName() string { return "alerts" }

// Recipient is the per-contact-per-channel unit of dispatch and response
// tracking for one alert. Exactly one row exists per (alert, contact,
// channel) combination attempted at fan-out time.
//
// Delivery state and response state are orthogonal: a message can be
// delivered and still awaiting a human reply, and the two are written by
// different actors (dispatcher vs. token redemption) to disjoint columns.
//
// Token is the sole credential to mutate the row's response state; it is
// globally unique, enforced by the database index.
type Recipient struct {
	ID            string     `json:"id"             gorm:"type:char(36);primaryKey"`
	AlertID       string     `json:"alert_id"       gorm:"type:char(36);not null;index:idx_alert_recipients"`
	ContactID     string     `json:"contact_id"     gorm:"type:char(36);not null;index"`
	Channel       Channel    `json:"channel"        gorm:"type:varchar(16);not null;check:channel IN ('sms','whatsapp')"`
	Token         string     `json:"-"              gorm:"type:varchar(64);not null;uniqueIndex:ux_recipient_token"`
	Delivery      string     `json:"delivery"       gorm:"type:varchar(16);not null;default:'not_attempted';check:delivery IN ('not_attempted','delivered','failed')"`
	DeliveryError string     `json:"delivery_error,omitempty" gorm:"type:text"`
	Response      string     `json:"response"       gorm:"type:varchar(16);not null;default:'pending';check:response IN ('pending','responding','not_responding')"`
	Note          string     `json:"note,omitempty" gorm:"type:text"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	// Alert and Contact are the parent rows; recipients are cascade-deleted
	// with their alert.
	Alert   Alert   `json:"-" gorm:"foreignKey:AlertID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Contact Contact `json:"-" gorm:"foreignKey:ContactID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Recipient.
func (Recipient) TableName() string { return "recipients" }

// AuditLog is an append-only trail entry (event plus JSON metadata) recording
// dispatch outcomes, reactions, and setup changes for later inspection.
type AuditLog struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Level     string    `json:"level"      gorm:"type:varchar(16);not null;default:'info'"`
	Event     string    `json:"event"      gorm:"type:varchar(64);not null"`
	Meta      string    `json:"meta"       gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for AuditLog.
func (AuditLog) TableName() string { return "audit_log" }

// ValidResponseStatus reports whether s is a status a recipient may submit.
// "pending" is the initial state only and cannot be set via a token.
func ValidResponseStatus(s string) bool {
	return s == ResponseResponding || s == ResponseNotResponding
}
