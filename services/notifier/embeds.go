package notifier

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"moadeal/hotdealbot/internal/deal"
)

var pricePrinter = message.NewPrinter(language.Korean)

const (
	colorNewDeal     = 0x2ECC71 // green
	colorSimilarDeal = 0xE67E22 // orange
	colorDigest      = 0x3498DB // blue

	noInfo = "정보 없음"
)

// FieldSeparator divides record groups inside a multi-record embed
const FieldSeparator = "------------------------------"

// RecordEmbedFields renders one record as the shared embed field group
// used by every listing surface (DM alerts and search results alike)
func RecordEmbedFields(record deal.ListingRecord) []*discordgo.MessageEmbedField {
	title := record.Title
	if title == "" {
		title = noInfo
	}
	price := record.Price
	if price == "" {
		price = noInfo
	}
	link := noInfo
	if record.Link != "" {
		link = fmt.Sprintf("[바로가기](%s)", record.Link)
	}
	timestamp := record.Timestamp
	if timestamp == "" {
		timestamp = noInfo
	}

	return []*discordgo.MessageEmbedField{
		{Name: "제목", Value: title},
		{Name: "가격", Value: price, Inline: true},
		{Name: "링크", Value: link},
		{Name: "등록 시간", Value: timestamp, Inline: true},
	}
}

// dealEmbed renders one newly matched record
func dealEmbed(keyword string, record deal.ListingRecord) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("🔔 새로운 키워드 알림: '%s'", keyword),
		Color:  colorNewDeal,
		Fields: RecordEmbedFields(record),
	}
}

// similarEmbed renders the similar-deals group for a matched record
func similarEmbed(anchor deal.ListingRecord, similar []deal.ListingRecord) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📦 유사 핫딜 정보: '%s'", anchor.Title),
		Description: fmt.Sprintf("**%s**과 비슷한 과거 핫딜 가격을 비교합니다.", anchor.Title),
		Color:       colorSimilarDeal,
	}
	for i, record := range similar {
		fields := RecordEmbedFields(record)
		fields[1].Value += priceComparison(anchor, record)
		embed.Fields = append(embed.Fields, fields...)
		if i < len(similar)-1 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "​", Value: FieldSeparator})
		}
	}
	return embed
}

// priceComparison annotates a past deal's price relative to the anchor.
// Empty when either price text has no extractable numeric value.
func priceComparison(anchor, candidate deal.ListingRecord) string {
	a, okA := deal.ExtractPrice(anchor.Price)
	c, okC := deal.ExtractPrice(candidate.Price)
	if !okA || !okC {
		return ""
	}

	switch {
	case c > a:
		return pricePrinter.Sprintf(" (현재가보다 %.0f원 비쌈)", c-a)
	case c < a:
		return pricePrinter.Sprintf(" (현재가보다 %.0f원 저렴)", a-c)
	default:
		return " (현재가와 동일)"
	}
}

// digestEmbed renders the recent-results digest sent right after subscribe
func digestEmbed(keyword string, records []deal.ListingRecord) *discordgo.MessageEmbed {
	var lines []string
	for _, record := range records {
		price := record.Price
		if price == "" {
			price = noInfo
		}
		lines = append(lines, fmt.Sprintf("[%s](%s) - **가격: %s**", record.Title, record.Link, price))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🕐 '%s' 관련 최근 1시간 이내 정보", keyword),
		Description: strings.Join(lines, "\n"),
		Color:       colorDigest,
	}
}
