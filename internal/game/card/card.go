package card

import (
	"fmt"
	"math/rand/v2"

	"github.com/YUVAUV7/set-card-pass/internal/apperrors"
)

const (
	// CopiesPerItem 每个收集目标的牌数
	CopiesPerItem = 4
	// NoHolder 牌在牌堆中（尚未发出）
	NoHolder = -1
)

// Card 定义一张牌
// 创建后除 Holder 外不可变，Holder 记录当前持有者座位号
type Card struct {
	ID       string `json:"id"`
	Item     string `json:"item"`
	Category string `json:"category"`
	Holder   int    `json:"holder"`
}

// Deck 牌堆
type Deck []Card

// BuildDeck 按玩家选择的目标构建牌堆：每个目标 4 张，洗牌后返回
// rng 由调用方注入，测试中可传入固定种子以复现洗牌结果
func BuildDeck(items []string, category string, rng *rand.Rand) (Deck, error) {
	if len(items) == 0 {
		return nil, apperrors.ErrInvalidSetup
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item == "" {
			return nil, apperrors.ErrInvalidSetup
		}
		if _, dup := seen[item]; dup {
			return nil, apperrors.ErrInvalidSetup
		}
		seen[item] = struct{}{}
	}

	deck := make(Deck, 0, len(items)*CopiesPerItem)
	for _, item := range items {
		for i := 1; i <= CopiesPerItem; i++ {
			deck = append(deck, Card{
				ID:       fmt.Sprintf("%s-%d", item, i),
				Item:     item,
				Category: category,
				Holder:   NoHolder,
			})
		}
	}

	deck.shuffle(rng)

	return deck, nil
}

// shuffle Fisher-Yates 洗牌
func (d Deck) shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}
