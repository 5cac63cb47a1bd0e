package card

// SetSize 集齐所需的同目标牌数
const SetSize = 4

// Evaluate 检查一手牌：返回同一目标的最大张数，以及是否已集齐
// 纯函数，无副作用，O(手牌数)
func Evaluate(hand []Card) (matching int, hasSet bool) {
	counts := make(map[string]int, len(hand))
	for _, c := range hand {
		counts[c.Item]++
		if counts[c.Item] > matching {
			matching = counts[c.Item]
		}
	}
	return matching, matching >= SetSize
}
