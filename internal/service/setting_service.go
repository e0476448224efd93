package service

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ShopSettings 店铺运行时配置（配置文件默认值 + 后台覆盖）
type ShopSettings struct {
	Currency              string          `json:"currency"`
	FlatShippingFee       decimal.Decimal `json:"flat_shipping_fee"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	AdminAlertEmail       string          `json:"admin_alert_email"`
}

// ShippingPolicy 返回运费策略
func (s ShopSettings) ShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FlatFee:       s.FlatShippingFee,
		FreeThreshold: s.FreeShippingThreshold,
		Currency:      s.Currency,
	}
}

// ShopSettingsFromConfig 从配置文件构建默认店铺配置，非法金额回退内置默认值
func ShopSettingsFromConfig(cfg config.ShopConfig) ShopSettings {
	settings := ShopSettings{
		Currency:              strings.ToUpper(strings.TrimSpace(cfg.Currency)),
		FlatShippingFee:       DefaultFlatShippingFee,
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		AdminAlertEmail:       strings.TrimSpace(cfg.AdminAlertEmail),
	}
	if settings.Currency == "" {
		settings.Currency = constants.CurrencyDefault
	}
	if fee, err := parseSettingDecimal(cfg.FlatShippingFee); err == nil {
		settings.FlatShippingFee = fee
	} else if strings.TrimSpace(cfg.FlatShippingFee) != "" {
		logger.Warnw("shop_config_flat_shipping_fee_invalid", "value", cfg.FlatShippingFee, "error", err)
	}
	if threshold, err := parseSettingDecimal(cfg.FreeShippingThreshold); err == nil {
		settings.FreeShippingThreshold = threshold
	} else if strings.TrimSpace(cfg.FreeShippingThreshold) != "" {
		logger.Warnw("shop_config_free_shipping_threshold_invalid", "value", cfg.FreeShippingThreshold, "error", err)
	}
	return settings
}

// SettingService 设置业务服务
type SettingService struct {
	repo     repository.SettingRepository
	defaults ShopSettings
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository, defaults ShopSettings) *SettingService {
	return &SettingService{repo: repo, defaults: defaults}
}

// GetShopSettings 获取店铺配置（后台覆盖合并默认值）
func (s *SettingService) GetShopSettings() (ShopSettings, error) {
	if s == nil {
		return ShopSettings{}, nil
	}
	settings := s.defaults
	if s.repo == nil {
		return settings, nil
	}
	stored, err := s.repo.GetByKey(constants.SettingKeyShopConfig)
	if err != nil {
		return settings, err
	}
	if stored == nil {
		return settings, nil
	}
	return mergeShopSettings(settings, stored.ValueJSON), nil
}

// UpdateShopSettings 校验并保存店铺配置覆盖项
func (s *SettingService) UpdateShopSettings(value map[string]interface{}) (ShopSettings, error) {
	normalized, err := normalizeShopSettingValue(value)
	if err != nil {
		return ShopSettings{}, err
	}
	if _, err := s.repo.Upsert(constants.SettingKeyShopConfig, normalized); err != nil {
		return ShopSettings{}, err
	}
	return mergeShopSettings(s.defaults, normalized), nil
}

func mergeShopSettings(base ShopSettings, value models.JSON) ShopSettings {
	if raw, ok := value[constants.SettingFieldCurrency].(string); ok && strings.TrimSpace(raw) != "" {
		base.Currency = strings.ToUpper(strings.TrimSpace(raw))
	}
	if raw, ok := value[constants.SettingFieldFlatShippingFee]; ok {
		if fee, err := parseSettingDecimal(raw); err == nil {
			base.FlatShippingFee = fee
		}
	}
	if raw, ok := value[constants.SettingFieldFreeShippingThreshold]; ok {
		if threshold, err := parseSettingDecimal(raw); err == nil {
			base.FreeShippingThreshold = threshold
		}
	}
	if raw, ok := value[constants.SettingFieldAdminAlertEmail].(string); ok {
		base.AdminAlertEmail = strings.TrimSpace(raw)
	}
	return base
}

// normalizeShopSettingValue 只保留已知字段，金额统一为两位小数字符串
func normalizeShopSettingValue(value map[string]interface{}) (models.JSON, error) {
	normalized := make(models.JSON)
	if raw, ok := value[constants.SettingFieldCurrency]; ok {
		currency, ok := raw.(string)
		currency = strings.ToUpper(strings.TrimSpace(currency))
		if !ok || len(currency) != 3 {
			return nil, ErrSettingInvalid
		}
		normalized[constants.SettingFieldCurrency] = currency
	}
	for _, field := range []string{constants.SettingFieldFlatShippingFee, constants.SettingFieldFreeShippingThreshold} {
		raw, ok := value[field]
		if !ok {
			continue
		}
		amount, err := parseSettingDecimal(raw)
		if err != nil || amount.IsNegative() {
			return nil, ErrSettingInvalid
		}
		normalized[field] = amount.StringFixed(2)
	}
	if raw, ok := value[constants.SettingFieldAdminAlertEmail]; ok {
		email, ok := raw.(string)
		email = strings.TrimSpace(email)
		if !ok {
			return nil, ErrSettingInvalid
		}
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return nil, ErrSettingInvalid
			}
		}
		normalized[constants.SettingFieldAdminAlertEmail] = email
	}
	return normalized, nil
}

func parseSettingDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Zero, fmt.Errorf("empty string")
		}
		return decimal.NewFromString(trimmed)
	default:
		return decimal.Zero, fmt.Errorf("unsupported value type %T", value)
	}
}
