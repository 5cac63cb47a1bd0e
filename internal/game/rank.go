package game

import "sort"

// rankPlayers 结算名次：集齐者在前，其余按同目标最大张数降序
// 稳定排序，平局按原始座位顺序
// 正常对局最多只有一名集齐者，但比较器对强制终局等异常状态也保持全序
func rankPlayers(players []*Player) []*Player {
	ranked := make([]*Player, len(players))
	copy(ranked, players)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].HasSet != ranked[j].HasSet {
			return ranked[i].HasSet
		}
		return ranked[i].Matching > ranked[j].Matching
	})

	return ranked
}
