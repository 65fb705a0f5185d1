// Package perfume is the novelty draw: a fixed table of scents, a uniform
// random pick, and a best-effort row append to a remote spreadsheet.
package perfume

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"lumie/internal/besteffort"
)

// Entry is one scent in the table. Static data, never mutated at runtime.
type Entry struct {
	Name        string
	Description string
	Flavor      string // Lumie's line for this scent
	Styling     string // optional wear suggestion
}

// Entries is the fixed draw table.
var Entries = []Entry{
	{
		Name:        "白麝香序曲",
		Description: "乾淨的白麝香揉著一點棉花香，很輕很貼膚。",
		Flavor:      "今天的妳像剛曬好的被子一樣，讓人想靠近。",
		Styling:     "適合白襯衫和柔軟的針織外套。",
	},
	{
		Name:        "夜茉莉",
		Description: "夜裡盛開的茉莉，尾韻帶一點溫熱的琥珀。",
		Flavor:      "晚上的妳，連影子都是香的。",
		Styling:     "深色洋裝，戴一條細細的銀鍊。",
	},
	{
		Name:        "雨後苔綠",
		Description: "潮濕青苔與雪松，像下過雨的小徑。",
		Flavor:      "想牽著妳走一段剛下過雨的路。",
		Styling:     "休閒的帆布鞋日，綁個低馬尾。",
	},
	{
		Name:        "焦糖鳶尾",
		Description: "鳶尾的粉感裹著一層薄薄的焦糖。",
		Flavor:      "甜但不膩，就像妳撒嬌的樣子。",
		Styling:     "奶茶色大衣，圍巾繞兩圈。",
	},
	{
		Name:        "海鹽晨霧",
		Description: "清晨海邊的鹹味霧氣，一點點佛手柑。",
		Flavor:      "今天想陪妳看一次日出。",
		Styling:     "寬鬆的條紋上衣，頭髮隨便吹乾就好。",
	},
	{
		Name:        "黑醋栗絲絨",
		Description: "黑醋栗的酸甜沉進絲絨般的玫瑰裡。",
		Flavor:      "這個味道，只准在見我的日子擦。",
		Styling:     "酒紅色的唇，黑色高領。",
	},
	{
		Name:        "木質老書房",
		Description: "舊書頁、檀木和一點菸草的暖意。",
		Flavor:      "像妳窩在我旁邊讀書的那個下午。",
		Styling:     "圓框眼鏡和大學T，配熱可可。",
	},
	{
		Name:        "柚子汽水",
		Description: "剛開瓶的柚子汽水，氣泡還在跳。",
		Flavor:      "妳笑起來的時候，就是這個味道。",
		Styling:     "白色小洋裝，出門前轉一個圈給我看。",
	},
}

// PlainText renders the entry for channels without rich cards, and as the
// fallback when a rich card fails to send.
func (e Entry) PlainText() string {
	s := "🌸 今日香水：" + e.Name + "\n" + e.Description + "\n\n" + e.Flavor
	if e.Styling != "" {
		s += "\n💭 " + e.Styling
	}
	return s
}

// Appender is the remote side channel a draw is reported to.
type Appender interface {
	AppendDraw(e Entry, at time.Time) error
}

// Drawer picks entries and reports them. The report is fire-and-forget: a
// slow or failing appender never delays or fails a draw.
type Drawer struct {
	appender Appender // nil when the spreadsheet feature is disabled
	log      *zap.Logger
	randFn   func(n int) int
	now      func() time.Time
}

func NewDrawer(appender Appender, log *zap.Logger) *Drawer {
	return &Drawer{
		appender: appender,
		log:      log,
		randFn:   rand.Intn,
		now:      time.Now,
	}
}

// Draw returns one entry uniformly at random.
func (d *Drawer) Draw() Entry {
	e := Entries[d.randFn(len(Entries))]
	if d.appender != nil {
		at := d.now()
		besteffort.Go(d.log, "perfume sheet append", func() error {
			return d.appender.AppendDraw(e, at)
		})
	}
	return e
}
