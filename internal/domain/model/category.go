package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// 絞り込みなし
const AllCategories = "Todas"

var Categories = []string{
	"Electrónica",
	"Ropa y Moda",
	"Hogar y Muebles",
	"Vehículos y Repuestos",
	"Libros y Papelería",
	"Instrumentos Musicales",
	"Alimentos y Bebidas",
	"Deportes y Fitness",
	"Bebés y Juguetes",
	"Herramientas y Construcción",
}

// NormalizeCategory は入力を NFC に揃えて既知のカテゴリと突き合わせる。
// 結合文字（e + ´）で送られてきた場合も同じカテゴリになる。
func NormalizeCategory(s string) (string, bool) {
	n := norm.NFC.String(strings.TrimSpace(s))
	for _, c := range Categories {
		if n == c {
			return c, true
		}
	}
	return "", false
}
