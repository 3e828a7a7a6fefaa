// internal/service/store/domain/shipping.go
package domain

// 按 wilaya (阿尔及利亚行政区) 查询的到付运费表，单位 DZD。
// 未列出的地区使用 DefaultShippingRate。
var shippingRates = map[string]float64{
	"Adrar":       1200,
	"Alger":       400,
	"Annaba":      700,
	"Batna":       700,
	"Bejaia":      600,
	"Blida":       450,
	"Boumerdes":   450,
	"Constantine": 700,
	"Djelfa":      800,
	"Ghardaia":    900,
	"Oran":        600,
	"Ouargla":     1000,
	"Setif":       650,
	"Tamanrasset": 1600,
	"Tipaza":      450,
	"Tizi Ouzou":  550,
	"Tlemcen":     700,
}

// DefaultShippingRate 兜底运费，用于运费表没有覆盖的地区。
const DefaultShippingRate = 800

// ShippingCost 返回目的地区的运费。
func ShippingCost(wilaya string) float64 {
	if rate, ok := shippingRates[wilaya]; ok {
		return rate
	}
	return DefaultShippingRate
}
