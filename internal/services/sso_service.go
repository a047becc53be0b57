package services

import (
	"bytes"
	"compress/flate"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "inventory-system/pkg/errors"
)

const (
	samlProtocolNS  = "urn:oasis:names:tc:SAML:2.0:protocol"
	samlAssertionNS = "urn:oasis:names:tc:SAML:2.0:assertion"
	samlPostBinding = "urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST"
	samlNameIDAny   = "urn:oasis:names:tc:SAML:1.1:nameid-format:unspecified"
)

type authnRequest struct {
	XMLName                     xml.Name     `xml:"samlp:AuthnRequest"`
	ProtocolNS                  string       `xml:"xmlns:samlp,attr"`
	AssertionNS                 string       `xml:"xmlns:saml,attr"`
	ID                          string       `xml:"ID,attr"`
	Version                     string       `xml:"Version,attr"`
	IssueInstant                string       `xml:"IssueInstant,attr"`
	Destination                 string       `xml:"Destination,attr"`
	ProtocolBinding             string       `xml:"ProtocolBinding,attr"`
	AssertionConsumerServiceURL string       `xml:"AssertionConsumerServiceURL,attr"`
	Issuer                      string       `xml:"saml:Issuer"`
	NameIDPolicy                nameIDPolicy `xml:"samlp:NameIDPolicy"`
}

type nameIDPolicy struct {
	Format      string `xml:"Format,attr"`
	AllowCreate bool   `xml:"AllowCreate,attr"`
}

type SSOServiceInterface interface {
	LoginURL(ctx context.Context, baseURL string) (string, error)
	Callback(ctx context.Context, samlResponse string) error
}

type SSOService struct {
	settings SettingsServiceInterface
	logger   *zap.Logger
}

func NewSSOService(settings SettingsServiceInterface, logger *zap.Logger) SSOServiceInterface {
	return &SSOService{settings: settings, logger: logger}
}

// LoginURL строит адрес IdP с SAMLRequest (HTTP-Redirect binding).
// baseURL - внешний адрес этого сервиса, из него берутся ACS и Issuer по умолчанию.
func (s *SSOService) LoginURL(ctx context.Context, baseURL string) (string, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return "", err
	}
	if !settings.SSO.Configured() {
		return "", apperrors.NewInvalidInputError("O Login SSO não está habilitado ou a URL do SSO não foi configurada. Por favor, contate o administrador.")
	}

	baseURL = strings.TrimRight(baseURL, "/")
	entityID := settings.SSO.EntityID
	if entityID == "" {
		entityID = baseURL
	}

	encoded, err := EncodeAuthnRequest(authnRequest{
		ID:                          "_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
		IssueInstant:                timeNow().UTC().Format(time.RFC3339),
		Destination:                 settings.SSO.URL,
		AssertionConsumerServiceURL: baseURL + "/api/auth/sso/callback",
		Issuer:                      entityID,
	})
	if err != nil {
		s.logger.Error("Не удалось собрать SAML-запрос", zap.Error(err))
		return "", err
	}

	target, err := url.Parse(settings.SSO.URL)
	if err != nil {
		return "", apperrors.NewInvalidInputError("URL do SSO inválida: %s", settings.SSO.URL)
	}
	q := target.Query()
	q.Set("SAMLRequest", encoded)
	target.RawQuery = q.Encode()
	return target.String(), nil
}

// Callback: проверка подписи утверждения IdP не реализована.
func (s *SSOService) Callback(_ context.Context, samlResponse string) error {
	s.logger.Info("Получен SAML-ответ", zap.Int("length", len(samlResponse)))
	return apperrors.ErrNotImplemented
}

// EncodeAuthnRequest сериализует запрос, сжимает raw deflate и кодирует в base64.
func EncodeAuthnRequest(req authnRequest) (string, error) {
	req.ProtocolNS = samlProtocolNS
	req.AssertionNS = samlAssertionNS
	req.Version = "2.0"
	req.ProtocolBinding = samlPostBinding
	req.NameIDPolicy = nameIDPolicy{Format: samlNameIDAny, AllowCreate: true}

	payload, err := xml.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации AuthnRequest: %w", err)
	}

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return "", fmt.Errorf("ошибка сжатия AuthnRequest: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return "", fmt.Errorf("ошибка сжатия AuthnRequest: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("ошибка сжатия AuthnRequest: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
