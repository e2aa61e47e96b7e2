package notifypaymentinstruction

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"qris-workers/internal/common/logger"
	"qris-workers/internal/common/telegram"
)

type Input struct {
	OrderID            string          `json:"orderId"`
	Amount             int64           `json:"amount"`
	QRISString         string          `json:"qrisString"`
	CustomerName       string          `json:"customerName,omitempty"`
	CustomerEmail      string          `json:"customerEmail,omitempty"`
	CustomerPhone      string          `json:"customerPhone,omitempty"`
	Items              []telegram.Item `json:"items,omitempty"`
	ProjectName        string          `json:"projectName,omitempty"`
	ProjectDescription string          `json:"projectDescription,omitempty"`
	RequireDelivery    bool            `json:"requireDelivery,omitempty"`
}

type Output struct {
	NotificationID  string        `json:"notificationId"`
	OrderID         string        `json:"orderId"`
	Status          string        `json:"status"`
	AmountFormatted string        `json:"amountFormatted"`
	WhatsAppLink    string        `json:"whatsappLink"`
	Instruction     string        `json:"instruction"`
	Email           ChannelResult `json:"email"`
	SMS             ChannelResult `json:"sms"`
	Telegram        ChannelResult `json:"telegram"`
	SentAt          string        `json:"sentAt"` // ISO 8601
}

type ChannelResult struct {
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
	StatusDisabled = "disabled"
)

// EmailSender is satisfied by the SES client.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SMSSender is satisfied by the SNS client.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// ChatSender is satisfied by the Telegram bot client.
type ChatSender interface {
	SendHTML(ctx context.Context, text string) (int64, error)
}

// ServiceDependencies holds the delivery channels. A nil channel is disabled.
type ServiceDependencies struct {
	Email    EmailSender
	SMS      SMSSender
	Telegram ChatSender
	Logger   logger.Logger
}
