package notifypaymentinstruction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	awsclient "qris-workers/internal/common/aws"
	commonerrors "qris-workers/internal/common/errors"
	"qris-workers/internal/common/logger"
	"qris-workers/internal/common/metrics"
	"qris-workers/internal/common/money"
	"qris-workers/internal/common/telegram"
	"qris-workers/internal/qris"
)

var (
	ErrInvalidNotificationRequest = errors.New("INVALID_NOTIFICATION_REQUEST")
	ErrNotificationSendFailed     = errors.New("NOTIFICATION_SEND_FAILED")
)

type Service struct {
	config    *Config
	formatter *money.Formatter
	email     EmailSender
	sms       SMSSender
	telegram  ChatSender
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) (*Service, error) {
	formatter, err := money.NewFormatter(config.Currency, config.Locale)
	if err != nil {
		return nil, fmt.Errorf("currency formatter: %w", err)
	}
	return &Service{
		config:    config,
		formatter: formatter,
		email:     deps.Email,
		sms:       deps.SMS,
		telegram:  deps.Telegram,
		logger:    deps.Logger,
	}, nil
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := s.validate(input); err != nil {
		return nil, commonerrors.NewInvalidNotificationRequestError(fmt.Errorf("%w: %v", ErrInvalidNotificationRequest, err))
	}

	total := s.formatter.Format(input.Amount)
	in := instruction{
		OrderID:       input.OrderID,
		Amount:        input.Amount,
		CustomerName:  input.CustomerName,
		QRISString:    strings.TrimSpace(input.QRISString),
		Total:         total,
		AdminTelegram: s.config.AdminTelegram,
		AdminWhatsApp: s.config.AdminWhatsApp,
		WhatsAppLink:  WhatsAppLink(s.config.AdminWhatsApp, s.config.AdminName, input.OrderID, total),
	}

	out := &Output{
		NotificationID:  uuid.NewString(),
		OrderID:         input.OrderID,
		AmountFormatted: total,
		WhatsAppLink:    in.WhatsAppLink,
		Instruction:     in.text(),
	}

	// Channels never return an error; each goroutine owns one result field.
	var g errgroup.Group
	g.Go(func() error {
		out.Email = s.sendEmail(ctx, input, in)
		return nil
	})
	g.Go(func() error {
		out.SMS = s.sendSMS(ctx, input, in)
		return nil
	})
	g.Go(func() error {
		out.Telegram = s.announce(ctx, input)
		return nil
	})
	_ = g.Wait()

	out.Status = overallStatus(out.Email, out.SMS, out.Telegram)
	out.SentAt = time.Now().UTC().Format(time.RFC3339)

	for channel, res := range map[string]ChannelResult{"email": out.Email, "sms": out.SMS, "telegram": out.Telegram} {
		metrics.PaymentNotifications.WithLabelValues(channel, res.Status).Inc()
	}

	if input.RequireDelivery && out.Status != StatusSent {
		return nil, commonerrors.NewNotificationSendFailedError("payment-instruction",
			fmt.Errorf("%w: email=%s sms=%s telegram=%s", ErrNotificationSendFailed,
				out.Email.Status, out.SMS.Status, out.Telegram.Status))
	}

	s.logger.Info("payment instruction dispatched", map[string]interface{}{
		"orderId":        input.OrderID,
		"notificationId": out.NotificationID,
		"status":         out.Status,
	})
	return out, nil
}

func (s *Service) validate(input *Input) error {
	if strings.TrimSpace(input.OrderID) == "" {
		return fmt.Errorf("orderId is required")
	}
	if input.Amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	code := strings.TrimSpace(input.QRISString)
	if code == "" {
		return fmt.Errorf("qrisString is required")
	}
	if !qris.ValidateChecksum(code) {
		return fmt.Errorf("qrisString checksum does not match")
	}
	if input.CustomerEmail != "" && !isValidEmail(input.CustomerEmail) {
		return fmt.Errorf("invalid customer email address: %s", input.CustomerEmail)
	}
	return nil
}

func (s *Service) sendEmail(ctx context.Context, input *Input, in instruction) ChannelResult {
	if s.email == nil || !s.config.EmailEnabled {
		return ChannelResult{Status: StatusDisabled}
	}
	if input.CustomerEmail == "" {
		return ChannelResult{Status: StatusSkipped}
	}

	res, err := s.email.SendEmail(ctx, awsclient.EmailInput(s.config.FromEmail, input.CustomerEmail,
		in.subject(), in.text(), in.html()))
	if err != nil {
		return s.failed("email", input.OrderID, err)
	}
	result := ChannelResult{Status: StatusSent}
	if res != nil && res.MessageId != nil {
		result.MessageID = *res.MessageId
	}
	return result
}

func (s *Service) sendSMS(ctx context.Context, input *Input, in instruction) ChannelResult {
	if s.sms == nil || !s.config.SMSEnabled {
		return ChannelResult{Status: StatusDisabled}
	}
	phone := NormalizePhone(input.CustomerPhone)
	if phone == "" {
		return ChannelResult{Status: StatusSkipped}
	}

	res, err := s.sms.Publish(ctx, awsclient.SMSInput("+"+phone, in.sms()))
	if err != nil {
		return s.failed("sms", input.OrderID, err)
	}
	result := ChannelResult{Status: StatusSent}
	if res != nil && res.MessageId != nil {
		result.MessageID = *res.MessageId
	}
	return result
}

func (s *Service) announce(ctx context.Context, input *Input) ChannelResult {
	if s.telegram == nil {
		return ChannelResult{Status: StatusDisabled}
	}

	text := telegram.FormatOrder(telegram.Order{
		ID:                 input.OrderID,
		CustomerName:       input.CustomerName,
		CustomerEmail:      input.CustomerEmail,
		CustomerPhone:      input.CustomerPhone,
		Items:              input.Items,
		Total:              input.Amount,
		ProjectName:        input.ProjectName,
		ProjectDescription: input.ProjectDescription,
	})
	id, err := s.telegram.SendHTML(ctx, text)
	if err != nil {
		if errors.Is(err, telegram.ErrNotConfigured) {
			return ChannelResult{Status: StatusDisabled}
		}
		return s.failed("telegram", input.OrderID, err)
	}
	return ChannelResult{Status: StatusSent, MessageID: strconv.FormatInt(id, 10)}
}

func (s *Service) failed(channel, orderID string, err error) ChannelResult {
	s.logger.Warn("notification channel failed", map[string]interface{}{
		"channel": channel,
		"orderId": orderID,
		"error":   err,
	})
	return ChannelResult{Status: StatusFailed, Error: err.Error()}
}

// overallStatus is failed if any channel failed, sent if at least one went
// out, and disabled otherwise.
func overallStatus(results ...ChannelResult) string {
	status := StatusDisabled
	for _, r := range results {
		switch r.Status {
		case StatusFailed:
			return StatusFailed
		case StatusSent:
			status = StatusSent
		}
	}
	return status
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	return strings.Contains(parts[1], ".")
}
