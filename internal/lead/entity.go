// AngelaMos | 2026
// entity.go

package lead

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusContacted Status = "contacted"
	StatusResponded Status = "responded"
	StatusClosed    Status = "closed"
)

var statusOrder = map[Status]int{
	StatusPending:   0,
	StatusContacted: 1,
	StatusResponded: 2,
	StatusClosed:    3,
}

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := statusOrder[st]
	return st, ok
}

// CanTransition allows forward moves only. Closed is terminal.
func (s Status) CanTransition(next Status) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

type Channel string

const (
	ChannelChat       Channel = "chat"
	ChannelEmailProxy Channel = "email_proxy"
	ChannelPlatform   Channel = "platform"
	ChannelDirect     Channel = "direct"
)

const OriginPlatform = "platform"

// Lead is the proof of introduction between an initiator and a recipient.
// The *Locked fields are captured once at creation and never rewritten.
type Lead struct {
	ID                    string          `db:"id"`
	InitiatorID           string          `db:"initiator_id"`
	RecipientID           string          `db:"recipient_id"`
	ProjectID             *string         `db:"project_id"`
	ListingID             *string         `db:"listing_id"`
	Channel               Channel         `db:"channel"`
	Status                Status          `db:"status"`
	Origin                string          `db:"origin"`
	FirstContactIP        string          `db:"first_contact_ip"`
	FirstContactUserAgent *string         `db:"first_contact_user_agent"`
	InitiatorTierLocked   string          `db:"initiator_tier_locked"`
	RecipientTierLocked   string          `db:"recipient_tier_locked"`
	SuccessFeeRateLocked  decimal.Decimal `db:"success_fee_rate_locked"`
	CreatedAt             time.Time       `db:"created_at"`
	UpdatedAt             time.Time       `db:"updated_at"`
	InitiatorName         *string         `db:"initiator_name"`
	InitiatorEmail        *string         `db:"initiator_email"`
	RecipientName         *string         `db:"recipient_name"`
	RecipientEmail        *string         `db:"recipient_email"`
	ProjectTitle          *string         `db:"project_title"`
}

func (l *Lead) HasParticipant(userID string) bool {
	return userID != "" && (l.InitiatorID == userID || l.RecipientID == userID)
}

// Key is the uniqueness tuple of a lead. Nil project or listing ids only
// match nil.
type Key struct {
	InitiatorID string
	RecipientID string
	ProjectID   *string
	ListingID   *string
}

type Message struct {
	ID         string    `db:"id"`
	LeadID     string    `db:"lead_id"`
	SenderID   *string   `db:"sender_id"`
	Content    string    `db:"content"`
	IsRead     bool      `db:"is_read"`
	IPAddress  *string   `db:"ip_address"`
	UserAgent  *string   `db:"user_agent"`
	SentAt     time.Time `db:"sent_at"`
	SenderName *string   `db:"sender_name"`
}

// RequestMeta is what the transport knows about the caller's connection.
type RequestMeta struct {
	IP        string
	UserAgent string
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
