package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"species-bot/api/internal/species/state"
	"species-bot/api/internal/util"
)

const maxMessageLen = 3900

// botAPI is the part of *tgbotapi.BotAPI the router needs.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot        botAPI
	Runner     state.Runner
	MinDisplay time.Duration

	chats sync.Map // chatID -> *state.Machine
	wg    sync.WaitGroup
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	cid := msg.Chat.ID

	if msg.IsCommand() {
		r.HandleCommand(msg)
		return
	}

	switch {
	case len(msg.Photo) > 0:
		ph := msg.Photo[len(msg.Photo)-1]
		r.acceptImage(cid, ph.FileID, "photo.jpg", "image/jpeg")
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		r.acceptImage(cid, msg.Document.FileID, msg.Document.FileName, msg.Document.MimeType)
	default:
		r.send(cid, helpText)
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, helpText)
	case "cancel":
		if r.cancelChat(cid) {
			r.send(cid, "Cancelled.")
		} else {
			r.send(cid, "Nothing to cancel.")
		}
	default:
		r.send(cid, "Unknown command. "+helpText)
	}
}

// Wait blocks until all in-flight identifications have finished.
func (r *Router) Wait() { r.wg.Wait() }

func (r *Router) machineFor(chatID int64) *state.Machine {
	if v, ok := r.chats.Load(chatID); ok {
		return v.(*state.Machine)
	}
	m := state.New(r.Runner, r.MinDisplay)
	m.Subscribe(func(s state.Snapshot) { r.report(chatID, s) })
	v, loaded := r.chats.LoadOrStore(chatID, m)
	if loaded {
		m.Close()
	}
	return v.(*state.Machine)
}

// cancelChat closes the chat's machine and reports whether an identification was running.
func (r *Router) cancelChat(chatID int64) bool {
	v, ok := r.chats.LoadAndDelete(chatID)
	if !ok {
		return false
	}
	m := v.(*state.Machine)
	loading := m.State().State == state.Loading
	m.Close()
	return loading
}

func (r *Router) identify(chatID int64, fileID, name, mime string) {
	defer r.wg.Done()
	m := r.machineFor(chatID)
	f := r.remoteFile(fileID, name, mime)
	if _, err := m.Submit(context.Background(), f); err != nil {
		slog.Debug("identification not delivered", "chat", chatID, "err", err)
		return
	}
	// The reply is out; the chat no longer needs the image.
	m.Reset()
}

func (r *Router) report(chatID int64, s state.Snapshot) {
	switch s.State {
	case state.Loading:
		r.send(chatID, loadingText)
	case state.Success, state.Failure:
		r.send(chatID, resultText(s))
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, util.Truncate(text, maxMessageLen))
	msg.DisableWebPagePreview = true
	if _, err := r.Bot.Send(msg); err != nil {
		slog.Warn("telegram send failed", "chat", chatID, "err", err)
	}
}
