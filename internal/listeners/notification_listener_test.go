package listeners

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/pkg/config"
	"inventory-system/pkg/mailer"
)

type stubSettings struct {
	current entities.AppSettings
}

func (s *stubSettings) Current(context.Context) (entities.AppSettings, error) { return s.current, nil }
func (s *stubSettings) Get(context.Context) (*entities.AppSettings, error)    { return &s.current, nil }
func (s *stubSettings) Save(_ context.Context, in entities.AppSettings) (*entities.AppSettings, error) {
	s.current = in
	return &s.current, nil
}
func (s *stubSettings) TermTemplates(context.Context) (*dto.TermTemplatesDTO, error) {
	return &dto.TermTemplatesDTO{}, nil
}
func (s *stubSettings) Invalidate(context.Context) {}

type recordingMailer struct {
	mu   sync.Mutex
	cfgs []mailer.Config
	sent []mailer.Message
}

func (r *recordingMailer) factory(cfg mailer.Config) mailer.Mailer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfgs = append(r.cfgs, cfg)
	return r
}

func (r *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func termEvent(email string) events.TermIssuedEvent {
	return events.TermIssuedEvent{
		Kind:      "entrega",
		Equipment: entities.Equipment{ID: 7, Serial: "SN-7", Equipamento: "Notebook"},
		Term:      "TERMO DE RESPONSABILIDADE",
		Email:     email,
		ActorName: "admin",
	}
}

func TestNotificationListener_SendsWithAppSettings(t *testing.T) {
	settings := &stubSettings{current: entities.AppSettings{SMTP: entities.SMTPSettings{Server: "smtp.local", User: "ti@empresa.com"}}}
	rec := &recordingMailer{}
	l := NewNotificationListener(settings, config.SMTPConfig{}, rec.factory, zap.NewNop())

	require.NoError(t, l.handleTermIssued(context.Background(), termEvent("joao@empresa.com")))

	require.Len(t, rec.sent, 1)
	assert.Equal(t, []string{"joao@empresa.com"}, rec.sent[0].To)
	assert.Equal(t, "TERMO DE RESPONSABILIDADE", rec.sent[0].Body)
	assert.Contains(t, rec.sent[0].Subject, "Entrega")
	assert.Equal(t, "smtp.local", rec.cfgs[0].Host)
	assert.Equal(t, defaultSMTPPort, rec.cfgs[0].Port)
	assert.Equal(t, "ti@empresa.com", rec.cfgs[0].From)
}

func TestNotificationListener_FallsBackToEnv(t *testing.T) {
	rec := &recordingMailer{}
	env := config.SMTPConfig{Host: "mail.env", Port: 2525, From: "noreply@empresa.com"}
	l := NewNotificationListener(&stubSettings{}, env, rec.factory, zap.NewNop())

	require.NoError(t, l.handleTermIssued(context.Background(), termEvent("joao@empresa.com")))

	require.Len(t, rec.cfgs, 1)
	assert.Equal(t, "mail.env", rec.cfgs[0].Host)
	assert.Equal(t, 2525, rec.cfgs[0].Port)
}

func TestNotificationListener_Skips(t *testing.T) {
	t.Run("без email", func(t *testing.T) {
		rec := &recordingMailer{}
		env := config.SMTPConfig{Host: "mail.env", From: "noreply@empresa.com"}
		l := NewNotificationListener(&stubSettings{}, env, rec.factory, zap.NewNop())
		require.NoError(t, l.handleTermIssued(context.Background(), termEvent("")))
		assert.Empty(t, rec.sent)
	})

	t.Run("SMTP не настроен", func(t *testing.T) {
		rec := &recordingMailer{}
		l := NewNotificationListener(&stubSettings{}, config.SMTPConfig{}, rec.factory, zap.NewNop())
		require.NoError(t, l.handleTermIssued(context.Background(), termEvent("joao@empresa.com")))
		assert.Empty(t, rec.sent)
	})
}

func TestNotificationListener_RejectsForeignEvent(t *testing.T) {
	l := NewNotificationListener(&stubSettings{}, config.SMTPConfig{}, (&recordingMailer{}).factory, zap.NewNop())
	assert.Error(t, l.handleTermIssued(context.Background(), otherEvent{}))
}

type otherEvent struct{}

func (otherEvent) Name() string { return "other" }
