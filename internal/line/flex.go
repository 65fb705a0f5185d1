package line

import (
	"errors"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"lumie/internal/perfume"
)

var errNoDefaultUser = errors.New("no default user cached")

// perfumeFlex renders a draw as a bubble card. The alt text carries the full
// plain form so notification previews stay readable.
func perfumeFlex(e perfume.Entry) *linebot.FlexMessage {
	contents := []linebot.FlexComponent{
		&linebot.TextComponent{
			Type:  linebot.FlexComponentTypeText,
			Text:  "🌸 今日香水",
			Size:  linebot.FlexTextSizeTypeSm,
			Color: "#aaaaaa",
		},
		&linebot.TextComponent{
			Type:   linebot.FlexComponentTypeText,
			Text:   e.Name,
			Weight: linebot.FlexTextWeightTypeBold,
			Size:   linebot.FlexTextSizeTypeXl,
			Wrap:   true,
		},
		&linebot.TextComponent{
			Type: linebot.FlexComponentTypeText,
			Text: e.Description,
			Wrap: true,
		},
		&linebot.TextComponent{
			Type:  linebot.FlexComponentTypeText,
			Text:  e.Flavor,
			Wrap:  true,
			Color: "#8866aa",
		},
	}
	if e.Styling != "" {
		contents = append(contents, &linebot.TextComponent{
			Type:  linebot.FlexComponentTypeText,
			Text:  "💭 " + e.Styling,
			Wrap:  true,
			Size:  linebot.FlexTextSizeTypeSm,
			Color: "#888888",
		})
	}

	bubble := &linebot.BubbleContainer{
		Type: linebot.FlexContainerTypeBubble,
		Body: &linebot.BoxComponent{
			Type:     linebot.FlexComponentTypeBox,
			Layout:   linebot.FlexBoxLayoutTypeVertical,
			Spacing:  linebot.FlexComponentSpacingTypeMd,
			Contents: contents,
		},
	}
	return linebot.NewFlexMessage(e.PlainText(), bubble)
}
