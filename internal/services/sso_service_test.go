package services

import (
	"bytes"
	"compress/flate"
	"context"
	"encoding/base64"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

func decodeSAMLRequest(t *testing.T, encoded string) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	xmlBytes, err := io.ReadAll(flate.NewReader(bytes.NewReader(raw)))
	require.NoError(t, err)
	return string(xmlBytes)
}

func TestSSO_LoginURLRequiresConfiguration(t *testing.T) {
	e := newEnv()
	svc := NewSSOService(e.settingsService(), e.logger)

	_, err := svc.LoginURL(context.Background(), "https://inventario.local")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSSO_LoginURLCarriesAuthnRequest(t *testing.T) {
	fixedNow(t, time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	e := newEnv()
	e.settings = newFakeSettingsRepo(entities.AppSettings{
		SSO: entities.SSOSettings{Enabled: true, URL: "https://idp.example.com/sso?tenant=acme"},
	})
	svc := NewSSOService(e.settingsService(), e.logger)

	target, err := svc.LoginURL(context.Background(), "https://inventario.local/")
	require.NoError(t, err)

	u, err := url.Parse(target)
	require.NoError(t, err)
	assert.Equal(t, "idp.example.com", u.Host)
	assert.Equal(t, "acme", u.Query().Get("tenant"))

	doc := decodeSAMLRequest(t, u.Query().Get("SAMLRequest"))
	assert.Contains(t, doc, `AssertionConsumerServiceURL="https://inventario.local/api/auth/sso/callback"`)
	assert.Contains(t, doc, `Destination="https://idp.example.com/sso?tenant=acme"`)
	assert.Contains(t, doc, `IssueInstant="2024-06-01T09:30:00Z"`)
	assert.Contains(t, doc, `<saml:Issuer>https://inventario.local</saml:Issuer>`)
}

func TestSSO_EntityIDOverridesIssuer(t *testing.T) {
	e := newEnv()
	e.settings = newFakeSettingsRepo(entities.AppSettings{
		SSO: entities.SSOSettings{Enabled: true, URL: "https://idp.example.com/sso", EntityID: "urn:inventario"},
	})
	svc := NewSSOService(e.settingsService(), e.logger)

	target, err := svc.LoginURL(context.Background(), "http://localhost:8080")
	require.NoError(t, err)
	u, err := url.Parse(target)
	require.NoError(t, err)
	assert.Contains(t, decodeSAMLRequest(t, u.Query().Get("SAMLRequest")), `<saml:Issuer>urn:inventario</saml:Issuer>`)
}

func TestSSO_CallbackNotImplemented(t *testing.T) {
	e := newEnv()
	svc := NewSSOService(e.settingsService(), e.logger)
	assert.ErrorIs(t, svc.Callback(context.Background(), "PHNhbWw+"), apperrors.ErrNotImplemented)
}
