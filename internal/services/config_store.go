package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"coinpay-backend/internal/models"
	"coinpay-backend/internal/payment"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormConfigStore reads provider settings from the payment_configs table.
type GormConfigStore struct {
	DB *gorm.DB
}

func NewGormConfigStore(db *gorm.DB) *GormConfigStore {
	return &GormConfigStore{DB: db}
}

func (s *GormConfigStore) Get(ctx context.Context, provider string) (ProviderSettings, error) {
	var cfg models.PaymentConfig
	if err := s.DB.WithContext(ctx).Where("provider = ?", provider).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProviderSettings{}, ErrProviderNotFound
		}
		return ProviderSettings{}, err
	}

	settings, err := cfg.SettingsMap()
	if err != nil {
		return ProviderSettings{}, fmt.Errorf("decode %s settings: %w", provider, err)
	}

	return ProviderSettings{
		Config: payment.Config{
			AppID:      settingString(settings, "app_id"),
			Secret:     settingString(settings, "secret"),
			GatewayURL: settingString(settings, "gateway_url"),
			ReturnURL:  settingString(settings, "return_url"),
		},
		Name:    cfg.Name,
		Enabled: cfg.Enable,
	}, nil
}

// settingString accepts both strings and JSON numbers, since admins tend to
// type numeric app ids without quotes. Numbers keep their literal digits.
func settingString(settings map[string]interface{}, key string) string {
	switch v := settings[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func (s *GormConfigStore) List(ctx context.Context) ([]models.PaymentConfig, error) {
	var configs []models.PaymentConfig
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (s *GormConfigStore) GetByID(ctx context.Context, id uint) (*models.PaymentConfig, error) {
	var cfg models.PaymentConfig
	if err := s.DB.WithContext(ctx).First(&cfg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (s *GormConfigStore) Create(ctx context.Context, provider, name string, settings map[string]interface{}, enable bool) (*models.PaymentConfig, error) {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.PaymentConfig{}).Where("provider = ?", provider).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateProvider
	}

	now := time.Now()
	cfg := &models.PaymentConfig{
		UUID:      uuid.New().String(),
		Provider:  provider,
		Name:      name,
		Settings:  datatypes.JSON(settingsJSON),
		Enable:    enable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.DB.WithContext(ctx).Create(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *GormConfigStore) Update(ctx context.Context, id uint, name string, settings map[string]interface{}, enable *bool) (*models.PaymentConfig, error) {
	cfg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if settings != nil {
		settingsJSON, err := json.Marshal(settings)
		if err != nil {
			return nil, err
		}
		updates["settings"] = datatypes.JSON(settingsJSON)
	}
	if enable != nil {
		updates["enable"] = *enable
	}
	updates["updated_at"] = time.Now()

	if err := s.DB.WithContext(ctx).Model(cfg).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *GormConfigStore) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.PaymentConfig{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConfigNotFound
	}
	return nil
}

// Seed creates the provider row when it does not exist yet. Existing rows
// are left untouched so admin edits survive restarts.
func (s *GormConfigStore) Seed(ctx context.Context, provider, name string, settings map[string]interface{}) (bool, error) {
	_, err := s.Create(ctx, provider, name, settings, true)
	if errors.Is(err, ErrDuplicateProvider) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
