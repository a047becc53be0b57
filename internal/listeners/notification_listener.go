package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"inventory-system/internal/events"
	"inventory-system/internal/services"
	"inventory-system/pkg/config"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/mailer"
)

const defaultSMTPPort = 587

// MailerFactory строит отправщика по итоговой конфигурации SMTP.
type MailerFactory func(cfg mailer.Config) mailer.Mailer

// NotificationListener отправляет сформированный термо сотруднику на почту.
type NotificationListener struct {
	settings  services.SettingsServiceInterface
	smtpEnv   config.SMTPConfig
	newMailer MailerFactory
	logger    *zap.Logger
}

func NewNotificationListener(
	settings services.SettingsServiceInterface,
	smtpEnv config.SMTPConfig,
	newMailer MailerFactory,
	logger *zap.Logger,
) *NotificationListener {
	if newMailer == nil {
		newMailer = func(cfg mailer.Config) mailer.Mailer { return mailer.NewSMTPMailer(cfg, logger) }
	}
	return &NotificationListener{
		settings:  settings,
		smtpEnv:   smtpEnv,
		newMailer: newMailer,
		logger:    logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.TermIssuedEventName, l.handleTermIssued)
	l.logger.Info("NotificationListener подписан на событие", zap.String("event", events.TermIssuedEventName))
}

func (l *NotificationListener) handleTermIssued(ctx context.Context, e eventbus.Event) error {
	event, ok := e.(events.TermIssuedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", e)
	}
	if event.Email == "" {
		l.logger.Debug("Термо не отправлен: нет email сотрудника", zap.Uint64("equipment_id", event.Equipment.ID))
		return nil
	}

	cfg, ok := l.smtpConfig(ctx)
	if !ok {
		l.logger.Debug("SMTP не настроен, отправка термо пропущена")
		return nil
	}

	msg := mailer.Message{
		To:      []string{event.Email},
		Subject: termSubject(event),
		Body:    event.Term,
	}
	return l.newMailer(cfg).Send(ctx, msg)
}

// smtpConfig - настройки из app_config, иначе переменные окружения SMTP_*.
func (l *NotificationListener) smtpConfig(ctx context.Context) (mailer.Config, bool) {
	if l.settings != nil {
		current, err := l.settings.Current(ctx)
		if err != nil {
			l.logger.Warn("Не удалось прочитать настройки SMTP", zap.Error(err))
		} else if current.SMTP.Server != "" {
			from := l.smtpEnv.From
			if from == "" {
				from = current.SMTP.User
			}
			port := current.SMTP.Port
			if port == 0 {
				port = defaultSMTPPort
			}
			return mailer.Config{
				Host:     current.SMTP.Server,
				Port:     port,
				User:     current.SMTP.User,
				Password: current.SMTP.Password,
				From:     from,
			}, from != ""
		}
	}
	if !l.smtpEnv.Enabled() {
		return mailer.Config{}, false
	}
	return mailer.Config{
		Host:     l.smtpEnv.Host,
		Port:     l.smtpEnv.Port,
		User:     l.smtpEnv.User,
		Password: l.smtpEnv.Password,
		From:     l.smtpEnv.From,
	}, true
}

func termSubject(e events.TermIssuedEvent) string {
	kind := "Entrega"
	if e.Kind == string(services.TermDevolucao) {
		kind = "Devolução"
	}
	return fmt.Sprintf("Termo de Responsabilidade (%s): %s", kind, e.Equipment.DisplayName())
}
