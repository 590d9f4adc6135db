package bot

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ledger-bot/internal/model"
	"ledger-bot/internal/parser"
)

const (
	msgNoHandle      = "Sorry, I could not identify you. Please make sure you have a username set in Telegram."
	msgNotSignedUp   = "Please sign up first using /signup command"
	msgSaveFailed    = "Sorry, there was an error saving your transaction. Please try again later."
	msgProcessFailed = "Sorry, there was an error processing your transaction. Please try again later."

	msgBadFormat = "Invalid format. Use: [date] amount [currency_code] category\n" +
		"Examples:\n" +
		"25.03.2024 100 USD Groceries\n" +
		"100 food (uses your default currency)"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type userStore interface {
	FindByHandle(ctx context.Context, handle string) (*model.User, error)
	Insert(ctx context.Context, user *model.User) error
	UpdateChatID(ctx context.Context, userUUID string, chatID int64) error
	ListAll(ctx context.Context) ([]model.User, error)
}

type transactionStore interface {
	Insert(ctx context.Context, tx *model.Transaction) error
	LastByUser(ctx context.Context, userUUID string) (*model.Transaction, error)
	DeleteByID(ctx context.Context, transactionID string) (int64, error)
}

type reporter interface {
	SpendingSummary(ctx context.Context, user model.User, now time.Time) (string, error)
}

// Bot routes Telegram updates to the transaction flow or to the signup
// conversation active for the chat.
type Bot struct {
	api     telegramAPI
	users   userStore
	txs     transactionStore
	parser  *parser.Parser
	reports reporter
	log     *log.Logger

	mu            sync.Mutex
	conversations map[int64]*signupState
}

func New(token string, users userStore, txs transactionStore, p *parser.Parser, reports reporter, logger *log.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("bot authorized", "account", api.Self.UserName)

	return newBot(api, users, txs, p, reports, logger), nil
}

func newBot(api telegramAPI, users userStore, txs transactionStore, p *parser.Parser, reports reporter, logger *log.Logger) *Bot {
	return &Bot{
		api:           api,
		users:         users,
		txs:           txs,
		parser:        p,
		reports:       reports,
		log:           logger,
		conversations: make(map[int64]*signupState),
	}
}

// Start begins polling updates until ctx is cancelled. Updates are
// consumed one at a time, which keeps messages from the same chat in
// arrival order.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.Error("handle message", "err", err)
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		b.log.Info("command", "chat", msg.Chat.ID, "cmd", msg.Command())
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.Chat.ID) {
		return b.handleCurrencyChoice(ctx, msg)
	}

	return b.handleTransaction(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "signup":
		return b.startSignup(ctx, msg)
	case "cancel":
		return b.cancelSignup(msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "undo":
		return b.handleUndo(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	default:
		return b.sendText(msg.Chat.ID, "Unsupported command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	handle := senderHandle(msg)
	if handle == "" {
		return b.sendText(msg.Chat.ID, msgNoHandle)
	}

	user, err := b.users.FindByHandle(ctx, handle)
	if err != nil {
		b.log.Error("find user", "handle", handle, "err", err)
		return b.sendText(msg.Chat.ID, msgProcessFailed)
	}
	if user == nil {
		return b.sendText(msg.Chat.ID, "Greetings human, to sign-up use /signup command")
	}

	b.refreshChatID(ctx, user, msg.Chat.ID)
	return b.sendText(msg.Chat.ID, "Greetings human, you are signed up and ready to go!")
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /signup — register and pick a default currency\n" +
		"• /report — spending summary by currency\n" +
		"• /undo — delete your last transaction\n" +
		"• /cancel — abort the signup dialog\n\n" +
		"Log a transaction by sending: [date] amount [currency] category\n" +
		"e.g. <code>yesterday 250 taxi</code> or <code>100 USD groceries</code>"
	return b.sendText(msg.Chat.ID, text)
}

// handleTransaction is the default flow for any plain text message.
func (b *Bot) handleTransaction(ctx context.Context, msg *tgbotapi.Message) error {
	handle := senderHandle(msg)
	if handle == "" {
		return b.sendText(msg.Chat.ID, msgNoHandle)
	}

	user, err := b.users.FindByHandle(ctx, handle)
	if err != nil {
		b.log.Error("find user", "handle", handle, "err", err)
		return b.sendText(msg.Chat.ID, msgProcessFailed)
	}
	if user == nil {
		return b.sendText(msg.Chat.ID, msgNotSignedUp)
	}

	tx, err := b.parser.Parse(msg.Text, user.DefaultCurrencyCode)
	if err != nil {
		b.log.Info("unparseable message", "chat", msg.Chat.ID, "err", err)
		return b.sendText(msg.Chat.ID, msgBadFormat)
	}
	tx.UserUUID = user.UserUUID

	b.refreshChatID(ctx, user, msg.Chat.ID)

	if err := b.txs.Insert(ctx, tx); err != nil {
		b.log.Error("insert transaction", "id", tx.TransactionID, "err", err)
		return b.sendText(msg.Chat.ID, msgSaveFailed)
	}

	b.log.Info("transaction saved", "id", tx.TransactionID, "user", user.UserUUID)

	text := fmt.Sprintf("Transaction saved successfully!\n"+
		"Amount: %s %s\n"+
		"Category: %s\n"+
		"Date: %s",
		tx.AmountLcy.String(), tx.CurrencyCode,
		html.EscapeString(tx.Category),
		tx.LclDttm.Format("2006-01-02 15:04:05"))
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	handle := senderHandle(msg)
	if handle == "" {
		return b.sendText(msg.Chat.ID, msgNoHandle)
	}

	user, err := b.users.FindByHandle(ctx, handle)
	if err != nil {
		b.log.Error("find user", "handle", handle, "err", err)
		return b.sendText(msg.Chat.ID, msgProcessFailed)
	}
	if user == nil {
		return b.sendText(msg.Chat.ID, msgNotSignedUp)
	}

	text, err := b.reports.SpendingSummary(ctx, *user, time.Now())
	if err != nil {
		b.log.Error("build summary", "user", user.UserUUID, "err", err)
		return b.sendText(msg.Chat.ID, msgProcessFailed)
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleUndo(ctx context.Context, msg *tgbotapi.Message) error {
	handle := senderHandle(msg)
	if handle == "" {
		return b.sendText(msg.Chat.ID, msgNoHandle)
	}

	user, err := b.users.FindByHandle(ctx, handle)
	if err != nil {
		b.log.Error("find user", "handle", handle, "err", err)
		return b.sendText(msg.Chat.ID, msgProcessFailed)
	}
	if user == nil {
		return b.sendText(msg.Chat.ID, msgNotSignedUp)
	}

	last, err := b.txs.LastByUser(ctx, user.UserUUID)
	if err != nil {
		b.log.Error("find last transaction", "user", user.UserUUID, "err", err)
		return b.sendText(msg.Chat.ID, msgProcessFailed)
	}
	if last == nil {
		return b.sendText(msg.Chat.ID, "Nothing to undo yet.")
	}

	deleted, err := b.txs.DeleteByID(ctx, last.TransactionID)
	if err != nil || deleted == 0 {
		b.log.Error("delete transaction", "id", last.TransactionID, "err", err)
		return b.sendText(msg.Chat.ID, msgProcessFailed)
	}

	text := fmt.Sprintf("Removed last transaction: %s %s, %s.",
		last.AmountLcy.String(), last.CurrencyCode, html.EscapeString(last.Category))
	return b.sendText(msg.Chat.ID, text)
}

// SendSpendingReports pushes a summary to every user with a known chat.
func (b *Bot) SendSpendingReports(ctx context.Context) error {
	users, err := b.users.ListAll(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if user.ChatID == 0 {
			continue
		}
		text, err := b.reports.SpendingSummary(ctx, user, now)
		if err != nil {
			b.log.Error("build summary", "user", user.UserUUID, "err", err)
			continue
		}
		if err := b.sendText(user.ChatID, text); err != nil {
			b.log.Error("send summary", "chat", user.ChatID, "err", err)
		}
	}
	return nil
}

// refreshChatID keeps the stored chat up to date so digests reach the
// user where they last talked to the bot.
func (b *Bot) refreshChatID(ctx context.Context, user *model.User, chatID int64) {
	if user.ChatID == chatID {
		return
	}
	if err := b.users.UpdateChatID(ctx, user.UserUUID, chatID); err != nil {
		b.log.Error("update chat id", "user", user.UserUUID, "err", err)
		return
	}
	user.ChatID = chatID
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func senderHandle(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return ""
	}
	return msg.From.UserName
}
