// Package discordgw is the Discord chat-gateway reference transport: a
// combined sense+effector pair grounded on internal/senses/discord.go
// (session setup, intents, message-create handling, self/channel filtering)
// and internal/effectors/discord.go (chunked sends, typing indicators),
// collapsed into a single adapter since this organism has no separate
// inbox/outbox queue — every inbound message is handed straight to the
// caller's OnMessage callback.
package discordgw

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mneme-ai/organism/internal/logging"
)

const subsystem = "discordgw"

// maxMessageLen is Discord's hard per-message character limit.
const maxMessageLen = 2000

// Config holds Discord connection settings.
type Config struct {
	Token     string
	ChannelID string // if set, only this channel's messages are delivered
	OwnerID   string
}

// IncomingMessage is what Gateway hands to OnMessage for every non-self
// message it receives.
type IncomingMessage struct {
	ChannelID string
	AuthorID  string
	Author    string
	Content   string
	IsOwner   bool
	IsDM      bool
}

// Gateway is a Discord session wired as both sense (incoming messages) and
// effector (outgoing sends), used by cmd/organismd as the chat surface.
type Gateway struct {
	session   *discordgo.Session
	channelID string
	ownerID   string
	botID     string

	OnMessage func(IncomingMessage)
}

// New opens a bot session and registers the message handler. It does not
// call Start; callers must call Start to begin receiving events.
func New(cfg Config) (*Gateway, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	g := &Gateway{session: session, channelID: cfg.ChannelID, ownerID: cfg.OwnerID}
	session.AddHandler(g.handleMessage)
	return g, nil
}

// Start opens the gateway connection.
func (g *Gateway) Start() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord connection: %w", err)
	}
	g.botID = g.session.State.User.ID
	logging.Info(subsystem, "connected as %s", g.session.State.User.Username)
	return nil
}

// Stop closes the gateway connection.
func (g *Gateway) Stop() error {
	return g.session.Close()
}

func (g *Gateway) handleMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == g.botID {
		return
	}
	if g.channelID != "" && m.ChannelID != g.channelID {
		return
	}
	if strings.TrimSpace(m.Content) == "" {
		return
	}

	if g.OnMessage != nil {
		g.OnMessage(IncomingMessage{
			ChannelID: m.ChannelID,
			AuthorID:  m.Author.ID,
			Author:    m.Author.Username,
			Content:   m.Content,
			IsOwner:   m.Author.ID == g.ownerID,
			IsDM:      m.GuildID == "",
		})
	}
}

// Send chunks content to Discord's 2000-character message limit and sends
// each chunk in order.
func (g *Gateway) Send(channelID, content string) error {
	for _, chunk := range chunkMessage(content, maxMessageLen) {
		if _, err := g.session.ChannelMessageSend(channelID, chunk); err != nil {
			return fmt.Errorf("send to %s: %w", channelID, err)
		}
	}
	return nil
}

// StartTyping begins a typing indicator in channelID, refreshed every 8
// seconds until stop is called.
func (g *Gateway) StartTyping(channelID string) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(8 * time.Second)
		defer ticker.Stop()
		g.session.ChannelTyping(channelID)
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				g.session.ChannelTyping(channelID)
			}
		}
	}()
	return func() { close(done) }
}

// chunkMessage splits content into pieces no longer than maxLen, preferring
// to split on newline or space boundaries near the limit.
func chunkMessage(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}

	var chunks []string
	for len(content) > maxLen {
		splitAt := findSplitPoint(content, maxLen)
		chunks = append(chunks, content[:splitAt])
		content = strings.TrimLeft(content[splitAt:], " \n")
	}
	if len(content) > 0 {
		chunks = append(chunks, content)
	}
	return chunks
}

func findSplitPoint(content string, maxLen int) int {
	if idx := strings.LastIndex(content[:maxLen], "\n"); idx > maxLen/2 {
		return idx
	}
	if idx := strings.LastIndex(content[:maxLen], " "); idx > maxLen/2 {
		return idx
	}
	return maxLen
}
