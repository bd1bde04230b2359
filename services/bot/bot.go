package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"moadeal/hotdealbot/internal/deal"
	"moadeal/hotdealbot/internal/scan"
	"moadeal/hotdealbot/logger"
	apperr "moadeal/hotdealbot/pkg/errors"
	"moadeal/hotdealbot/services/notifier"
	"moadeal/hotdealbot/services/store"
)

// Bot wires the slash-command surface to the subscription registry and
// the record store. Notifications triggered by commands go through the
// same notifier the scan worker uses.
type Bot struct {
	session  *discordgo.Session
	store    store.Store
	registry *scan.Registry
	notifier notifier.Notifier
	lookback time.Duration
	log      *logger.Logger

	registered []*discordgo.ApplicationCommand
}

// New creates a bot on an unopened Discord session
func New(session *discordgo.Session, s store.Store, registry *scan.Registry, n notifier.Notifier, lookback time.Duration) *Bot {
	return &Bot{
		session:  session,
		store:    s,
		registry: registry,
		notifier: n,
		lookback: lookback,
		log:      logger.ForBot(),
	}
}

// Start opens the gateway connection and registers the slash commands
func (b *Bot) Start() error {
	b.session.AddHandler(b.handleInteraction)
	b.session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

	if err := b.session.Open(); err != nil {
		return apperr.NewConfiguration("failed to open Discord session", err)
	}

	appID := b.session.State.User.ID
	for _, def := range commandDefinitions {
		cmd, err := b.session.ApplicationCommandCreate(appID, "", def)
		if err != nil {
			return apperr.NewConfiguration(fmt.Sprintf("failed to register command %q", def.Name), err)
		}
		b.registered = append(b.registered, cmd)
	}

	b.log.Info().Int("commands", len(b.registered)).Msg("Discord bot started")
	return nil
}

// Stop deregisters the commands and closes the session
func (b *Bot) Stop() {
	appID := b.session.State.User.ID
	for _, cmd := range b.registered {
		if err := b.session.ApplicationCommandDelete(appID, "", cmd.ID); err != nil {
			b.log.Warn().Str("command", cmd.Name).Err(err).Msg("Failed to deregister command")
		}
	}
	if err := b.session.Close(); err != nil {
		b.log.Warn().Err(err).Msg("Failed to close Discord session")
	}
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	// Record loads can outlast the 3-second interaction deadline
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		b.log.Warn().Err(err).Msg("Failed to acknowledge interaction")
		return
	}

	data := i.ApplicationCommandData()
	userID := interactionUserID(i)
	keyword := optionValue(data.Options, "키워드")

	b.log.Debug().
		Str("command", data.Name).
		Str("subscriber", userID).
		Str("keyword", keyword).
		Msg("Handling command")

	var reply string
	switch data.Name {
	case "검색":
		b.handleSearch(i, keyword)
		return
	case "스캔시작":
		reply = b.handleScanStart(userID, keyword)
	case "스캔중지":
		reply = b.handleScanStop(userID, keyword)
	case "스캔확인":
		reply = b.handleScanStatus(userID, interactionUsername(i))
	default:
		return
	}

	b.followUp(i, reply)
}

// handleSearch sends the paginated search result pages as ephemeral
// follow-ups
func (b *Bot) handleSearch(i *discordgo.InteractionCreate, keyword string) {
	records, err := b.store.Load(context.Background())
	if err != nil {
		b.log.Warn().Err(err).Msg("Search failed, record snapshot unavailable")
		b.followUp(i, "검색 중 오류가 발생했습니다. 다시 시도해주세요.")
		return
	}

	matched := searchRecords(records, keyword)
	if len(matched) == 0 {
		b.followUp(i, "해당 키워드에 대한 결과를 찾을 수 없습니다.")
		return
	}

	for _, page := range searchPages(keyword, matched) {
		_, err := b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{page},
			Flags:  discordgo.MessageFlagsEphemeral,
		})
		if err != nil {
			b.log.Warn().Err(err).Msg("Failed to send search page")
			return
		}
	}
}

// handleScanStart subscribes the keyword and DMs a digest of matching
// records from the lookback window
func (b *Bot) handleScanStart(userID, keyword string) string {
	now := time.Now().In(deal.KST)

	sub, err := b.registry.Subscribe(userID, keyword, now)
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicateSubscription) {
			return fmt.Sprintf("'%s' 키워드는 이미 스캔 중입니다.", keyword)
		}
		b.log.Warn().Str("keyword", keyword).Err(err).Msg("Subscribe failed")
		return "스캔을 시작하는 중 오류가 발생했습니다."
	}

	records, err := b.store.Load(context.Background())
	if err != nil {
		b.log.Warn().Err(err).Msg("Digest skipped, record snapshot unavailable")
		return fmt.Sprintf("**'%s'**에 대한 스캔을 시작합니다. 새로운 결과가 있으면 DM으로 알려드릴게요.", keyword)
	}

	recent := recentRecords(records, keyword, now.Add(-b.lookback), sub)
	if len(recent) > 0 {
		if err := b.notifier.NotifyDigest(userID, keyword, recent); err != nil {
			b.log.Warn().Str("subscriber", userID).Err(err).Msg("Digest delivery failed")
			return fmt.Sprintf("'%s' 스캔을 시작했지만, DM 전송이 차단되어 있어 알림을 보내지 못했습니다. DM 설정을 확인해주세요.", keyword)
		}
	}

	return fmt.Sprintf("**'%s'**에 대한 스캔을 시작합니다. 새로운 결과가 있으면 DM으로 알려드릴게요. (최대 1시간 내의 최근 정보는 이미 DM으로 발송되었습니다.)", keyword)
}

// handleScanStop removes one keyword, or every keyword for "all"
func (b *Bot) handleScanStop(userID, keyword string) string {
	if strings.EqualFold(keyword, "all") {
		if err := b.registry.UnsubscribeAll(userID); err != nil {
			return "현재 활성화된 키워드 스캔이 없습니다."
		}
		return "모든 키워드에 대한 스캔을 중지했습니다."
	}

	if err := b.registry.Unsubscribe(userID, keyword); err != nil {
		return fmt.Sprintf("'%s'에 대한 스캔이 활성화되어 있지 않습니다.", keyword)
	}
	return fmt.Sprintf("**'%s'**에 대한 스캔을 중지합니다.", keyword)
}

// handleScanStatus DMs the subscriber their active scan list
func (b *Bot) handleScanStatus(userID, username string) string {
	infos := b.registry.List(userID)
	if len(infos) == 0 {
		return "현재 스캔 중인 키워드가 없습니다."
	}

	channel, err := b.session.UserChannelCreate(userID)
	if err == nil {
		_, err = b.session.ChannelMessageSendEmbed(channel.ID, statusEmbed(username, infos))
	}
	if err != nil {
		b.log.Warn().Str("subscriber", userID).Err(err).Msg("Scan status DM failed")
		return "DM을 보낼 수 없습니다. DM 설정을 확인해주세요."
	}
	return "현재 스캔 상태를 DM으로 보냈습니다."
}

func (b *Bot) followUp(i *discordgo.InteractionCreate, content string) {
	_, err := b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		b.log.Warn().Err(err).Msg("Failed to send command reply")
	}
}

// interactionUserID handles both guild (Member) and DM (User) invocations
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func interactionUsername(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return ""
}

func optionValue(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}
