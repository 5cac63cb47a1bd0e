package catalog

// Category 一个可选类别：名称、图标与互不相同的收集目标列表
type Category struct {
	Name  string
	Icon  string
	Items []string
}

// categories 固定类别目录，每个类别 8 个目标（不少于任何支持的玩家数）
var categories = []Category{
	{
		Name:  "animals",
		Icon:  "🦁",
		Items: []string{"Tiger", "Lion", "Cat", "Dog", "Elephant", "Bear", "Wolf", "Fox"},
	},
	{
		Name:  "colors",
		Icon:  "🎨",
		Items: []string{"Red", "Blue", "Green", "Yellow", "Purple", "Orange", "Pink", "Black"},
	},
	{
		Name:  "fruits",
		Icon:  "🍎",
		Items: []string{"Apple", "Banana", "Orange", "Grape", "Strawberry", "Mango", "Kiwi", "Pineapple"},
	},
	{
		Name:  "vehicles",
		Icon:  "🚗",
		Items: []string{"Car", "Truck", "Bike", "Bus", "Train", "Plane", "Boat", "Motorcycle"},
	},
	{
		Name:  "sports",
		Icon:  "🏅",
		Items: []string{"Soccer", "Basketball", "Tennis", "Baseball", "Cricket", "Rugby", "Golf", "Hockey"},
	},
	{
		Name:  "countries",
		Icon:  "🌍",
		Items: []string{"USA", "Canada", "Brazil", "Germany", "India", "Japan", "Australia", "France"},
	},
	{
		Name:  "instruments",
		Icon:  "🎵",
		Items: []string{"Guitar", "Piano", "Violin", "Drums", "Flute", "Saxophone", "Trumpet", "Cello"},
	},
}

// Categories 返回全部类别
func Categories() []Category {
	return categories
}

// Find 按名称查找类别
func Find(name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// HasItem 检查目标是否属于该类别
func (c Category) HasItem(item string) bool {
	for _, it := range c.Items {
		if it == item {
			return true
		}
	}
	return false
}
