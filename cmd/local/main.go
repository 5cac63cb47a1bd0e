package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/YUVAUV7/set-card-pass/internal/game"
	"github.com/YUVAUV7/set-card-pass/internal/game/catalog"
)

// 机器人行动前的停顿，让人跟得上局面
const botPause = 600 * time.Millisecond

var botNames = []string{"小智", "小淘", "小胖"}

func main() {
	categoryName := flag.String("category", "animals", "卡牌类别")
	playerName := flag.String("name", "玩家", "你的昵称")
	timeLimit := flag.Duration("time-limit", 0, "对局时长上限，0 表示不限时")
	flag.Parse()

	cat, ok := catalog.Find(*categoryName)
	if !ok {
		fmt.Println("未知类别，可选：")
		for _, c := range catalog.Categories() {
			fmt.Printf("  %s %s\n", c.Icon, c.Name)
		}
		os.Exit(1)
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	reader := bufio.NewScanner(os.Stdin)

	// 选目标：玩家先选，机器人随机分剩下的
	fmt.Printf("%s 类别 %s，可收集目标：\n", cat.Icon, cat.Name)
	for i, item := range cat.Items {
		fmt.Printf("  [%d] %s\n", i, item)
	}
	humanItem := promptChoice(reader, "选择你的收集目标", cat.Items)

	remaining := make([]string, 0, len(cat.Items)-1)
	for _, item := range cat.Items {
		if item != humanItem {
			remaining = append(remaining, item)
		}
	}
	rng.Shuffle(len(remaining), func(i, j int) { remaining[i], remaining[j] = remaining[j], remaining[i] })

	players := []*game.Player{
		{ID: "human", Name: *playerName, ChosenItem: humanItem},
	}
	for i, name := range botNames {
		players = append(players, &game.Player{
			ID:         fmt.Sprintf("bot-%d", i+1),
			Name:       name,
			ChosenItem: remaining[i],
			IsBot:      true,
		})
	}

	g := game.New(players, cat.Name, rng)
	if err := g.DealCards(); err != nil {
		log.Fatalf("发牌失败: %v", err)
	}

	fmt.Println()
	for _, p := range g.Players {
		fmt.Printf("座位 %d: %s（收集 %s）\n", p.Seat, p.Name, p.ChosenItem)
	}

	strategy := game.GreedyStrategy(rng)
	deadline := time.Time{}
	if *timeLimit > 0 {
		deadline = time.Now().Add(*timeLimit)
		fmt.Printf("⏱️ 本局限时 %v\n", *timeLimit)
	}

	for g.Phase == game.PhasePlaying {
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Println("\n⏱️ 时间到，按当前形势结算！")
			g.EndByTimer()
			break
		}
		current := g.Players[g.CurrentTurn]
		if current.IsBot {
			playBot(g, current, strategy)
		} else {
			playHuman(g, current, reader)
		}
	}

	printResult(g)
}

// playBot 机器人回合：先宣告，否则按策略传牌
func playBot(g *game.Game, bot *game.Player, strategy game.Strategy) {
	time.Sleep(botPause)

	if bot.HasSet {
		if err := g.DeclareSet(bot.Seat); err != nil {
			log.Fatalf("机器人宣告失败: %v", err)
		}
		fmt.Printf("📣 %s 宣告集齐 %s！\n", bot.Name, bot.ChosenItem)
		return
	}

	cardID := strategy(g, bot.Seat)
	res, err := g.PassCard(cardID, bot.Seat)
	if err != nil {
		log.Fatalf("机器人传牌失败: %v", err)
	}
	fmt.Printf("🤖 %s 把一张牌传给了座位 %d\n", bot.Name, res.ToSeat)
}

// playHuman 人类回合：展示手牌，选一张传出或宣告集齐
func playHuman(g *game.Game, p *game.Player, reader *bufio.Scanner) {
	fmt.Printf("\n轮到你了，手牌：\n")
	for i, c := range p.Hand {
		fmt.Printf("  [%d] %s\n", i, c.Item)
	}
	if p.HasSet {
		fmt.Println("✨ 你已集齐四张！输入 s 宣告获胜")
	}

	for {
		fmt.Print("传出哪张牌？> ")
		if !reader.Scan() {
			fmt.Println("\n再见！")
			os.Exit(0)
		}
		input := strings.TrimSpace(reader.Text())

		if strings.EqualFold(input, "s") {
			if err := g.DeclareSet(p.Seat); err != nil {
				fmt.Printf("不能宣告：%v\n", err)
				continue
			}
			fmt.Printf("📣 你宣告集齐 %s！\n", p.ChosenItem)
			return
		}

		idx, err := strconv.Atoi(input)
		if err != nil || idx < 0 || idx >= len(p.Hand) {
			fmt.Println("请输入手牌编号")
			continue
		}

		res, err := g.PassCard(p.Hand[idx].ID, p.Seat)
		if err != nil {
			fmt.Printf("传牌失败：%v\n", err)
			continue
		}
		fmt.Printf("👉 你把 %s 传给了座位 %d\n", res.Card.Item, res.ToSeat)
		return
	}
}

// promptChoice 让玩家从列表中选一项
func promptChoice(reader *bufio.Scanner, prompt string, options []string) string {
	for {
		fmt.Printf("%s（0-%d）> ", prompt, len(options)-1)
		if !reader.Scan() {
			fmt.Println("\n再见！")
			os.Exit(0)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(reader.Text()))
		if err == nil && idx >= 0 && idx < len(options) {
			return options[idx]
		}
		fmt.Println("请输入有效编号")
	}
}

// printResult 打印终局名次
func printResult(g *game.Game) {
	winner := g.Players[g.WinnerSeat]
	fmt.Printf("\n🏆 %s 获胜（收集 %s）！\n\n终局名次：\n", winner.Name, winner.ChosenItem)
	for _, p := range g.Rankings {
		fmt.Printf("  %d. %s（最多 %d 张 %s）\n", p.Rank, p.Name, p.Matching, p.ChosenItem)
	}
}
