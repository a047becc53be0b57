package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
)

const settingsTable = "app_config"

// Ключи таблицы app_config.
const (
	keyCompanyName                 = "companyName"
	keySSOEnabled                  = "isSsoEnabled"
	keySSOURL                      = "ssoUrl"
	keySSOEntityID                 = "ssoEntityId"
	keySSOCertificate              = "ssoCertificate"
	key2FAEnabled                  = "is2faEnabled"
	keyRequire2FA                  = "require2fa"
	keySMTPServer                  = "smtpServer"
	keySMTPPort                    = "smtpPort"
	keySMTPUser                    = "smtpUser"
	keySMTPPass                    = "smtpPass"
	keySMTPSecure                  = "smtpSecure"
	keyTermoEntrega                = "termo_entrega_template"
	keyTermoDevolucao              = "termo_devolucao_template"
	keyHasInitialConsolidationRun  = "hasInitialConsolidationRun"
	keyLastAbsoluteUpdateTimestamp = "lastAbsoluteUpdateTimestamp"
	keyLicenseTotals               = "license_totals"
)

// SettingsRepositoryInterface - единая точка чтения и записи настроек приложения.
type SettingsRepositoryInterface interface {
	Load(ctx context.Context, tx pgx.Tx) (entities.AppSettings, error)
	Save(ctx context.Context, tx pgx.Tx, settings entities.AppSettings) error
	DeleteAll(ctx context.Context, tx pgx.Tx) error
}

type settingsRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSettingsRepository(storage *pgxpool.Pool, logger *zap.Logger) SettingsRepositoryInterface {
	return &settingsRepository{storage: storage, logger: logger}
}

func (r *settingsRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *settingsRepository) Load(ctx context.Context, tx pgx.Tx) (entities.AppSettings, error) {
	rows, err := r.getQuerier(tx).Query(ctx, "SELECT config_key, config_value FROM "+settingsTable)
	if err != nil {
		return entities.AppSettings{}, fmt.Errorf("ошибка чтения app_config: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return entities.AppSettings{}, fmt.Errorf("ошибка сканирования app_config: %w", err)
		}
		raw[key] = value
	}
	if err := rows.Err(); err != nil {
		return entities.AppSettings{}, err
	}
	return decodeSettings(raw)
}

// Save записывает все ключи одним upsert.
func (r *settingsRepository) Save(ctx context.Context, tx pgx.Tx, settings entities.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	raw, err := encodeSettings(settings)
	if err != nil {
		return err
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Insert(settingsTable).Columns("config_key", "config_value")
	for key, value := range raw {
		builder = builder.Values(key, value)
	}
	query, args, err := builder.Suffix("ON CONFLICT (config_key) DO UPDATE SET config_value = EXCLUDED.config_value").ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL сохранения настроек: %w", err)
	}
	if _, err := r.getQuerier(tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка сохранения настроек: %w", err)
	}
	return nil
}

func (r *settingsRepository) DeleteAll(ctx context.Context, tx pgx.Tx) error {
	if _, err := r.getQuerier(tx).Exec(ctx, "DELETE FROM "+settingsTable); err != nil {
		return fmt.Errorf("ошибка очистки app_config: %w", err)
	}
	return nil
}

func encodeSettings(s entities.AppSettings) (map[string]string, error) {
	totals := s.LicenseTotals
	if totals == nil {
		totals = entities.ProductTotals{}
	}
	totalsJSON, err := json.Marshal(totals)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации license_totals: %w", err)
	}

	lastUpdate := ""
	if s.LastAbsoluteUpdateTimestamp != nil {
		lastUpdate = s.LastAbsoluteUpdateTimestamp.UTC().Format(time.RFC3339)
	}
	smtpPort := ""
	if s.SMTP.Port > 0 {
		smtpPort = strconv.Itoa(s.SMTP.Port)
	}

	return map[string]string{
		keyCompanyName:                 s.CompanyName,
		keySSOEnabled:                  strconv.FormatBool(s.SSO.Enabled),
		keySSOURL:                      s.SSO.URL,
		keySSOEntityID:                 s.SSO.EntityID,
		keySSOCertificate:              s.SSO.Certificate,
		key2FAEnabled:                  strconv.FormatBool(s.Is2FAEnabled),
		keyRequire2FA:                  strconv.FormatBool(s.Require2FA),
		keySMTPServer:                  s.SMTP.Server,
		keySMTPPort:                    smtpPort,
		keySMTPUser:                    s.SMTP.User,
		keySMTPPass:                    s.SMTP.Password,
		keySMTPSecure:                  strconv.FormatBool(s.SMTP.Secure),
		keyTermoEntrega:                s.TermoEntregaTemplate,
		keyTermoDevolucao:              s.TermoDevolucaoTemplate,
		keyHasInitialConsolidationRun:  strconv.FormatBool(s.HasInitialConsolidationRun),
		keyLastAbsoluteUpdateTimestamp: lastUpdate,
		keyLicenseTotals:               string(totalsJSON),
	}, nil
}

// decodeSettings строит AppSettings из сырых строк. Отсутствующие ключи берутся из DefaultSettings.
func decodeSettings(raw map[string]string) (entities.AppSettings, error) {
	s := entities.DefaultSettings()
	if v, ok := raw[keyCompanyName]; ok && v != "" {
		s.CompanyName = v
	}
	s.SSO.Enabled = raw[keySSOEnabled] == "true"
	s.SSO.URL = raw[keySSOURL]
	s.SSO.EntityID = raw[keySSOEntityID]
	s.SSO.Certificate = raw[keySSOCertificate]
	s.Is2FAEnabled = raw[key2FAEnabled] == "true"
	s.Require2FA = raw[keyRequire2FA] == "true"
	s.SMTP.Server = raw[keySMTPServer]
	s.SMTP.User = raw[keySMTPUser]
	s.SMTP.Password = raw[keySMTPPass]
	s.SMTP.Secure = raw[keySMTPSecure] == "true"
	s.TermoEntregaTemplate = raw[keyTermoEntrega]
	s.TermoDevolucaoTemplate = raw[keyTermoDevolucao]
	s.HasInitialConsolidationRun = raw[keyHasInitialConsolidationRun] == "true"

	if v := raw[keySMTPPort]; v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return s, fmt.Errorf("некорректный smtpPort %q: %w", v, err)
		}
		s.SMTP.Port = port
	}
	if v := raw[keyLastAbsoluteUpdateTimestamp]; v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return s, fmt.Errorf("некорректный lastAbsoluteUpdateTimestamp %q: %w", v, err)
		}
		s.LastAbsoluteUpdateTimestamp = &ts
	}
	if v := raw[keyLicenseTotals]; v != "" {
		totals := entities.ProductTotals{}
		if err := json.Unmarshal([]byte(v), &totals); err != nil {
			return s, fmt.Errorf("некорректный license_totals: %w", err)
		}
		s.LicenseTotals = totals
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
