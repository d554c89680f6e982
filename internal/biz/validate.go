package biz

import (
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^\+?\d{7,15}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneNoise   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// CleanPhone 去掉电话号码中的空格/连字符/括号/点
func CleanPhone(phone string) string {
	return phoneNoise.Replace(phone)
}

// ValidPhone 校验电话号码 (清洗后 7-15 位, 可带 + 前缀)
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(CleanPhone(phone))
}

// ValidEmail 校验邮箱格式
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidCoordinate 校验坐标范围
func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
