package checkout

import (
	"marketplace/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 出品者ごとの配送料（デフォルト）
var DefaultDeliveryFeeUSD = decimal.RequireFromString("5.00")

// Draft は保存前の「出品者1件ぶんの注文」。
type Draft struct {
	SellerID string
	Lines    []model.CartLine
	TotalUSD decimal.Decimal
}

// BuildDrafts はカートを出品者ごとに分けて合計を出す。
// 出品者は最初に出てきた順、各グループ内は元の並び順のまま。
// 配送料はチェックアウト1回ではなく出品者グループごとにかかる。
func BuildDrafts(lines []model.CartLine, delivery bool, fee decimal.Decimal) []Draft {
	drafts := make([]Draft, 0)
	index := make(map[string]int)

	for _, l := range lines {
		i, ok := index[l.SellerID]
		if !ok {
			i = len(drafts)
			index[l.SellerID] = i
			drafts = append(drafts, Draft{SellerID: l.SellerID, TotalUSD: decimal.Zero})
		}
		drafts[i].Lines = append(drafts[i].Lines, l)
		drafts[i].TotalUSD = drafts[i].TotalUSD.Add(l.PriceUSD)
	}

	if delivery {
		for i := range drafts {
			drafts[i].TotalUSD = drafts[i].TotalUSD.Add(fee)
		}
	}
	return drafts
}

// Last4 は参照番号の末尾4文字。4文字未満ならそのまま。
func Last4(ref string) string {
	r := []rune(ref)
	if len(r) <= 4 {
		return ref
	}
	return string(r[len(r)-4:])
}
