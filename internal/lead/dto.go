// AngelaMos | 2026
// dto.go

package lead

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateLeadRequest struct {
	RecipientID string  `json:"recipient_id"         validate:"required,uuid"`
	ProjectID   *string `json:"project_id,omitempty" validate:"omitempty,uuid"`
	ListingID   *string `json:"listing_id,omitempty" validate:"omitempty,uuid"`
	Channel     string  `json:"channel,omitempty"    validate:"omitempty,oneof=chat email_proxy platform direct"`
	Message     *string `json:"message,omitempty"    validate:"omitempty,min=1,max=1000"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending contacted responded closed"`
}

type LeadResponse struct {
	ID                    string          `json:"id"`
	InitiatorID           string          `json:"initiator_id"`
	InitiatorName         string          `json:"initiator_name,omitempty"`
	InitiatorEmail        string          `json:"initiator_email,omitempty"`
	RecipientID           string          `json:"recipient_id"`
	RecipientName         string          `json:"recipient_name,omitempty"`
	RecipientEmail        string          `json:"recipient_email,omitempty"`
	ProjectID             *string         `json:"project_id,omitempty"`
	ProjectTitle          string          `json:"project_title,omitempty"`
	ListingID             *string         `json:"listing_id,omitempty"`
	Channel               string          `json:"channel"`
	Status                string          `json:"status"`
	Origin                string          `json:"origin"`
	FirstContactIP        string          `json:"first_contact_ip"`
	FirstContactUserAgent string          `json:"first_contact_user_agent,omitempty"`
	InitiatorTierLocked   string          `json:"initiator_tier_locked"`
	RecipientTierLocked   string          `json:"recipient_tier_locked"`
	SuccessFeeRateLocked  decimal.Decimal `json:"success_fee_rate_locked"`
	CreatedAt             time.Time       `json:"created_at"`
}

type MessageResponse struct {
	ID         string    `json:"id"`
	LeadID     string    `json:"lead_id"`
	SenderID   string    `json:"sender_id,omitempty"`
	SenderName string    `json:"sender_name,omitempty"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	SentFromIP string    `json:"sent_from_ip,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

type LeadListResponse struct {
	Leads []LeadResponse `json:"leads"`
	Total int            `json:"total"`
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int               `json:"total"`
}

func ToLeadResponse(l *Lead) LeadResponse {
	return LeadResponse{
		ID:                    l.ID,
		InitiatorID:           l.InitiatorID,
		InitiatorName:         deref(l.InitiatorName),
		InitiatorEmail:        deref(l.InitiatorEmail),
		RecipientID:           l.RecipientID,
		RecipientName:         deref(l.RecipientName),
		RecipientEmail:        deref(l.RecipientEmail),
		ProjectID:             l.ProjectID,
		ProjectTitle:          deref(l.ProjectTitle),
		ListingID:             l.ListingID,
		Channel:               string(l.Channel),
		Status:                string(l.Status),
		Origin:                l.Origin,
		FirstContactIP:        l.FirstContactIP,
		FirstContactUserAgent: deref(l.FirstContactUserAgent),
		InitiatorTierLocked:   l.InitiatorTierLocked,
		RecipientTierLocked:   l.RecipientTierLocked,
		SuccessFeeRateLocked:  l.SuccessFeeRateLocked,
		CreatedAt:             l.CreatedAt,
	}
}

func ToLeadListResponse(leads []Lead) LeadListResponse {
	out := make([]LeadResponse, 0, len(leads))
	for i := range leads {
		out = append(out, ToLeadResponse(&leads[i]))
	}
	return LeadListResponse{Leads: out, Total: len(out)}
}

func ToMessageResponse(m *Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		LeadID:     m.LeadID,
		SenderID:   deref(m.SenderID),
		SenderName: deref(m.SenderName),
		Content:    m.Content,
		IsRead:     m.IsRead,
		SentFromIP: deref(m.IPAddress),
		SentAt:     m.SentAt,
	}
}

func ToMessageListResponse(msgs []Message) MessageListResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, ToMessageResponse(&msgs[i]))
	}
	return MessageListResponse{Messages: out, Total: len(out)}
}
