package bot

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"moadeal/hotdealbot/internal/deal"
	"moadeal/hotdealbot/internal/scan"
	"moadeal/hotdealbot/services/notifier"
)

const (
	searchPageSize = 4
	maxSearchPages = 5

	colorSearch = 0x3498DB // blue
	colorStatus = 0xE67E22 // orange
)

// commandDefinitions is the slash-command surface registered on startup
var commandDefinitions = []*discordgo.ApplicationCommand{
	{
		Name:        "검색",
		Description: "키워드와 일치하는 정보를 보냅니다.",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "키워드", Description: "검색할 키워드", Required: true},
		},
	},
	{
		Name:        "스캔시작",
		Description: "새로운 키워드 알림 스캔을 시작합니다.",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "키워드", Description: "스캔할 키워드", Required: true},
		},
	},
	{
		Name:        "스캔중지",
		Description: "키워드 알림 스캔을 중지합니다.(all=전체 키워드 종료)",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "키워드", Description: "중지할 키워드 또는 all", Required: true},
		},
	},
	{
		Name:        "스캔확인",
		Description: "현재 스캔 중인 키워드를 확인합니다.",
	},
}

// searchRecords returns records whose title contains the keyword,
// case-insensitively, newest ordinal first
func searchRecords(records []deal.ListingRecord, keyword string) []deal.ListingRecord {
	needle := strings.ToLower(keyword)

	var matched []deal.ListingRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Title), needle) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].No > matched[j].No })
	return matched
}

// searchPages chunks matched records into paginated embeds
func searchPages(keyword string, matched []deal.ListingRecord) []*discordgo.MessageEmbed {
	var chunks [][]deal.ListingRecord
	for i := 0; i < len(matched); i += searchPageSize {
		end := i + searchPageSize
		if end > len(matched) {
			end = len(matched)
		}
		chunks = append(chunks, matched[i:end])
	}
	if len(chunks) > maxSearchPages {
		chunks = chunks[:maxSearchPages]
	}

	pages := make([]*discordgo.MessageEmbed, 0, len(chunks))
	for pageNum, chunk := range chunks {
		embed := &discordgo.MessageEmbed{
			Title: fmt.Sprintf("🔍 키워드 '%s' 검색 결과 (페이지 %d/%d)", keyword, pageNum+1, len(chunks)),
			Color: colorSearch,
		}
		for i, record := range chunk {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  fmt.Sprintf("🎁 상품 %d", pageNum*searchPageSize+i+1),
				Value: "​",
			})
			embed.Fields = append(embed.Fields, notifier.RecordEmbedFields(record)...)
			if i < len(chunk)-1 {
				embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "​", Value: notifier.FieldSeparator})
			}
		}
		pages = append(pages, embed)
	}
	return pages
}

// recentRecords returns keyword matches posted after the lookback instant
// and marks their titles seen so the scan cycle never re-notifies them
func recentRecords(records []deal.ListingRecord, keyword string, since time.Time, sub *scan.Subscription) []deal.ListingRecord {
	needle := strings.ToLower(keyword)

	var matched []deal.ListingRecord
	for _, r := range records {
		if r.Title == "" || r.PostedAt == nil {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Title), needle) {
			continue
		}
		if !r.PostedAt.After(since) {
			continue
		}
		matched = append(matched, r)
		sub.MarkSeen(r.Title)
	}
	return matched
}

// statusEmbed renders the subscriber's active scans for the DM
func statusEmbed(username string, infos []scan.Info) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🔍 현재 스캔 상태",
		Description: fmt.Sprintf("%s님이 스캔 중인 키워드 목록입니다.", username),
		Color:       colorStatus,
	}
	for _, info := range infos {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("**%s**", info.Keyword),
			Value: fmt.Sprintf("시작 시간: %s", info.StartTime.In(deal.KST).Format("2006-01-02 15:04:05 KST")),
		})
	}
	return embed
}
