package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"ledger-bot/internal/model"
)

type signupStage int

const (
	stageNone signupStage = iota
	stageChoosingCurrency
)

// signupState is the per-chat stash for an in-flight signup. The user row
// is only written once a valid currency arrives; a cancelled or abandoned
// signup just drops the state and the generated UUID with it.
type signupState struct {
	stage    signupStage
	userUUID string
	handle   string
}

// startSignup handles /signup: duplicate handles end the conversation
// immediately, everyone else moves to the currency prompt.
func (b *Bot) startSignup(ctx context.Context, msg *tgbotapi.Message) error {
	handle := senderHandle(msg)
	if handle == "" {
		return b.sendText(msg.Chat.ID, msgNoHandle)
	}

	existing, err := b.users.FindByHandle(ctx, handle)
	if err != nil {
		b.log.Error("find user", "handle", handle, "err", err)
		return b.sendText(msg.Chat.ID, "Sorry, there was an error during registration. Please try again later.")
	}
	if existing != nil {
		return b.sendText(msg.Chat.ID, "You are already registered!")
	}

	b.setConversation(msg.Chat.ID, &signupState{
		stage:    stageChoosingCurrency,
		userUUID: uuid.NewString(),
		handle:   handle,
	})
	b.log.Info("signup started", "chat", msg.Chat.ID, "handle", handle)

	return b.sendWithReplyMarkup(msg.Chat.ID, "Please choose your default currency:", currencyKeyboard())
}

// handleCurrencyChoice runs the CHOOSING_CURRENCY state. Invalid input
// re-prompts and stays put; a valid currency inserts the user and ends the
// conversation whether or not the insert worked.
func (b *Bot) handleCurrencyChoice(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.Chat.ID)
	if state == nil || state.stage != stageChoosingCurrency {
		b.clearConversation(msg.Chat.ID)
		return nil
	}

	choice := msg.Text
	if !model.IsValidCurrency(choice) {
		prompt := fmt.Sprintf("Please choose a valid currency: %s", strings.Join(model.ValidCurrencies, ", "))
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, currencyKeyboard())
	}

	user := &model.User{
		UserUUID:            state.userUUID,
		TelegramAccount:     state.handle,
		DefaultCurrencyCode: choice,
		ChatID:              msg.Chat.ID,
	}

	b.clearConversation(msg.Chat.ID)

	if err := b.users.Insert(ctx, user); err != nil {
		b.log.Error("insert user", "handle", state.handle, "err", err)
		return b.sendWithReplyMarkup(msg.Chat.ID,
			"Sorry, there was an error during registration. Please try again later.",
			tgbotapi.NewRemoveKeyboard(true))
	}

	b.log.Info("user registered", "uuid", user.UserUUID, "handle", user.TelegramAccount, "currency", choice)

	text := fmt.Sprintf("Successfully registered! Your default currency is set to %s.", choice)
	return b.sendWithReplyMarkup(msg.Chat.ID, text, tgbotapi.NewRemoveKeyboard(true))
}

// cancelSignup handles /cancel.
func (b *Bot) cancelSignup(msg *tgbotapi.Message) error {
	if !b.hasConversation(msg.Chat.ID) {
		return b.sendText(msg.Chat.ID, "Nothing to cancel.")
	}
	b.clearConversation(msg.Chat.ID)
	return b.sendWithReplyMarkup(msg.Chat.ID, "Signup cancelled.", tgbotapi.NewRemoveKeyboard(true))
}

func (b *Bot) setConversation(chatID int64, state *signupState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[chatID] = state
}

func (b *Bot) getConversation(chatID int64) *signupState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[chatID]
}

func (b *Bot) hasConversation(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[chatID]
	return ok
}

func (b *Bot) clearConversation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, chatID)
}

func currencyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(model.ValidCurrencies))
	for _, code := range model.ValidCurrencies {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(code)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	kb.InputFieldPlaceholder = "Choose currency"
	return kb
}
