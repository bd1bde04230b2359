package notifier

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"moadeal/hotdealbot/internal/deal"
	"moadeal/hotdealbot/logger"
	apperr "moadeal/hotdealbot/pkg/errors"
)

// dmSession is the slice of discordgo.Session the notifier needs
type dmSession interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier implements Notifier over Discord direct messages
type DiscordNotifier struct {
	session dmSession
	log     *logger.Logger
}

// NewDiscordNotifier creates a notifier on an open Discord session
func NewDiscordNotifier(session dmSession) *DiscordNotifier {
	return &DiscordNotifier{
		session: session,
		log:     logger.ForBot(),
	}
}

// NotifyDeal sends one newly matched record
func (n *DiscordNotifier) NotifyDeal(subscriberID, keyword string, record deal.ListingRecord) error {
	return n.sendEmbed(subscriberID, dealEmbed(keyword, record))
}

// NotifySimilar sends the similar-deals group for a matched record
func (n *DiscordNotifier) NotifySimilar(subscriberID string, anchor deal.ListingRecord, similar []deal.ListingRecord) error {
	if len(similar) == 0 {
		return nil
	}
	return n.sendEmbed(subscriberID, similarEmbed(anchor, similar))
}

// NotifyDigest sends the recent-results digest after a subscribe
func (n *DiscordNotifier) NotifyDigest(subscriberID, keyword string, records []deal.ListingRecord) error {
	if len(records) == 0 {
		return nil
	}
	return n.sendEmbed(subscriberID, digestEmbed(keyword, records))
}

func (n *DiscordNotifier) sendEmbed(subscriberID string, embed *discordgo.MessageEmbed) error {
	channel, err := n.session.UserChannelCreate(subscriberID)
	if err != nil {
		return apperr.NewDelivery(subscriberID, "failed to open DM channel", err)
	}

	if _, err := n.session.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		if isDMBlocked(err) {
			return apperr.NewDelivery(subscriberID, "DM rejected", fmt.Errorf("%w: %v", apperr.ErrDeliveryBlocked, err))
		}
		return apperr.NewDelivery(subscriberID, "failed to send DM", err)
	}
	return nil
}

// isDMBlocked reports whether the recipient has DMs disabled
func isDMBlocked(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser
	}
	return false
}
