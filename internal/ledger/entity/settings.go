package entity

import "time"

// SettingsLabel 设置单例的固定主键
const SettingsLabel = "default"

// Settings 全局设置单例。更新采用 read-merge-write，无版本校验，
// 并发写入以后写者为准。
type Settings struct {
	Label              string    `json:"label" gorm:"primaryKey;size:16"`
	ExchangeRate       float64   `json:"exchange_rate" gorm:"type:decimal(10,4);not null;default:1"`
	LicenseComputers   int       `json:"license_computers" gorm:"not null;default:0"`
	LicensePerComputer float64   `json:"license_per_computer" gorm:"type:decimal(12,2);not null;default:0"`
	UnitPrice          *float64  `json:"unit_price" gorm:"type:decimal(12,2)"` // 旧版全局时薪覆盖
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Settings) TableName() string {
	return "settings"
}

// LicenseTotal 许可证总成本
func (s *Settings) LicenseTotal() float64 {
	if s == nil {
		return 0
	}
	return float64(s.LicenseComputers) * s.LicensePerComputer
}
