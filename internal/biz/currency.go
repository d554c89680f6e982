package biz

// Currency 货币静态配置
// 价格为该货币下单个 pin 的标价 (约等于 $2 美元基准), 由部署方维护, 绝不信任客户端金额
type Currency struct {
	Code    string  `json:"code"`
	Symbol  string  `json:"symbol"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Country string  `json:"country"`
}

// currencies 支持的货币列表
var currencies = map[string]Currency{
	"PHP": {Code: "PHP", Symbol: "₱", Name: "Philippine Peso", Price: 100, Country: "Philippines"},
	"MYR": {Code: "MYR", Symbol: "RM", Name: "Malaysian Ringgit", Price: 10, Country: "Malaysia"},
	"SGD": {Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", Price: 3, Country: "Singapore"},
	"THB": {Code: "THB", Symbol: "฿", Name: "Thai Baht", Price: 70, Country: "Thailand"},
	"IDR": {Code: "IDR", Symbol: "Rp", Name: "Indonesian Rupiah", Price: 32000, Country: "Indonesia"},
	"VND": {Code: "VND", Symbol: "₫", Name: "Vietnamese Dong", Price: 50000, Country: "Vietnam"},
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", Price: 2, Country: "International"},
	"HKD": {Code: "HKD", Symbol: "HK$", Name: "Hong Kong Dollar", Price: 16, Country: "Hong Kong"},
	"MXN": {Code: "MXN", Symbol: "MX$", Name: "Mexican Peso", Price: 40, Country: "Mexico"},
	"BRL": {Code: "BRL", Symbol: "R$", Name: "Brazilian Real", Price: 12, Country: "Brazil"},
	"COP": {Code: "COP", Symbol: "CO$", Name: "Colombian Peso", Price: 8500, Country: "Colombia"},
	"ARS": {Code: "ARS", Symbol: "AR$", Name: "Argentine Peso", Price: 2000, Country: "Argentina"},
}

// countryToCurrency 国家代码 (ISO 3166-1 alpha-2) 到货币的映射
var countryToCurrency = map[string]string{
	"PH": "PHP",
	"MY": "MYR",
	"SG": "SGD",
	"TH": "THB",
	"ID": "IDR",
	"VN": "VND",
	"HK": "HKD",
	"MX": "MXN",
	"BR": "BRL",
	"CO": "COP",
	"AR": "ARS",
	"US": "USD",
}

// GetCurrency 根据货币代码获取货币配置, 未知代码回退到 fallback
// 面向线下即买即用的客户, 可用性优先于严格校验, 未知货币不报错
func GetCurrency(code, fallback string) Currency {
	if c, ok := currencies[code]; ok {
		return c
	}
	if c, ok := currencies[fallback]; ok {
		return c
	}
	return currencies["PHP"]
}

// GetCurrencyByCountry 根据国家代码推断货币, 未知国家回退到 fallback
func GetCurrencyByCountry(countryCode, fallback string) Currency {
	if code, ok := countryToCurrency[countryCode]; ok {
		return GetCurrency(code, fallback)
	}
	return GetCurrency(fallback, fallback)
}

// AllCurrencies 返回所有支持的货币
func AllCurrencies() []Currency {
	out := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, c)
	}
	return out
}

// IsSupportedCurrency 判断货币代码是否在配置表中
func IsSupportedCurrency(code string) bool {
	_, ok := currencies[code]
	return ok
}
