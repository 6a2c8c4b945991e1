package models

import "github.com/shopspring/decimal"

// ElectricityPrice is one tariff row per region, month, electricity types
// and voltage level. Prices are 元/千瓦时; nil means no price for that period.
type ElectricityPrice struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	RegionName string `json:"region_name" gorm:"column:region_name;size:64;index:idx_region_date"`
	PriceDate  string `json:"price_date" gorm:"column:price_date;size:16;index:idx_region_date"` // 2024年12月

	ElectricityType1Value string  `json:"electricity_type1_value" gorm:"column:electricity_type1_value;size:32"`
	ElectricityType1Desc  string  `json:"electricity_type1_desc" gorm:"column:electricity_type1_desc;size:64"`
	ElectricityType2Value *string `json:"electricity_type2_value" gorm:"column:electricity_type2_value;size:32"`
	ElectricityType2Desc  *string `json:"electricity_type2_desc" gorm:"column:electricity_type2_desc;size:64"`
	VoltageLevelValue     string  `json:"voltage_level_value" gorm:"column:voltage_level_value;size:32"`
	VoltageLevelDesc      string  `json:"voltage_level_desc" gorm:"column:voltage_level_desc;size:64"`

	PeakPrice       *decimal.Decimal `json:"peak_price" gorm:"column:peak_price;type:decimal(10,4)"`               // 峰时电价
	SharpPeakPrice  *decimal.Decimal `json:"sharp_peak_price" gorm:"column:sharp_peak_price;type:decimal(10,4)"`   // 尖峰电价
	ValleyPrice     *decimal.Decimal `json:"valley_price" gorm:"column:valley_price;type:decimal(10,4)"`           // 谷时电价
	NormalPrice     *decimal.Decimal `json:"normal_price" gorm:"column:normal_price;type:decimal(10,4)"`           // 平时电价
	DeepValleyPrice *decimal.Decimal `json:"deep_valley_price" gorm:"column:deep_valley_price;type:decimal(10,4)"` // 深谷电价
}

func (ElectricityPrice) TableName() string {
	return "electricity_prices"
}

// TypeDescription joins the two electricity type descriptions with "/",
// dropping the second when it is missing.
func (p ElectricityPrice) TypeDescription() string {
	if p.ElectricityType2Desc == nil || *p.ElectricityType2Desc == "" {
		return p.ElectricityType1Desc
	}
	return p.ElectricityType1Desc + "/" + *p.ElectricityType2Desc
}
