package game

import "math/rand/v2"

// Strategy 机器人决策函数：返回该座位要传出的牌 ID
// 机器人与真人走完全相同的 PassCard/DeclareSet 入口，引擎内没有独立的机器人路径
type Strategy func(g *Game, seat int) string

// GreedyStrategy 默认策略：保留手中数量最多的目标，传出最少见目标中随机一张
func GreedyStrategy(rng *rand.Rand) Strategy {
	return func(g *Game, seat int) string {
		hand := g.Players[seat].Hand
		if len(hand) == 0 {
			return ""
		}

		counts := make(map[string]int, len(hand))
		for _, c := range hand {
			counts[c.Item]++
		}

		// 找出手中最少见的目标张数
		minCount := len(hand) + 1
		for _, n := range counts {
			if n < minCount {
				minCount = n
			}
		}

		candidates := make([]string, 0, len(hand))
		for _, c := range hand {
			if counts[c.Item] == minCount {
				candidates = append(candidates, c.ID)
			}
		}

		return candidates[rng.IntN(len(candidates))]
	}
}

// RandomStrategy 随机策略：无差别传出任意一张（与超时强制传牌行为一致）
func RandomStrategy(rng *rand.Rand) Strategy {
	return func(g *Game, seat int) string {
		hand := g.Players[seat].Hand
		if len(hand) == 0 {
			return ""
		}
		return hand[rng.IntN(len(hand))].ID
	}
}
