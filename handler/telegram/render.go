package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/tradlabs/trad-wallet-bot/core"
	"github.com/tradlabs/trad-wallet-bot/service/session"
)

const welcomeText = `🤖 *Welcome to Trad Wallet Bot!*

Your secure, easy-to-use Solana wallet manager.

*Features:*
• 🔑 Generate new wallets
• 📥 Import existing wallets
• 📋 View wallet address
• 💰 Check balances
• 💸 Send SOL
• 📊 View transaction history

*Security:*
• Never share your secret key
• Use at your own risk

Choose an option below to get started:`

const menuText = "🤖 *Trad Wallet Bot - Main Menu*\n\nChoose an option:"

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔑 Generate Wallet", session.ActionGenerate),
			tgbotapi.NewInlineKeyboardButtonData("📥 Import Wallet", session.ActionImport),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👁️ View Address", session.ActionAddress),
			tgbotapi.NewInlineKeyboardButtonData("🔐 Export Secret Key", session.ActionExport),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Check Balance", session.ActionBalance),
			tgbotapi.NewInlineKeyboardButtonData("📊 Transaction History", session.ActionHistory),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💸 Send SOL", session.ActionSend),
			tgbotapi.NewInlineKeyboardButtonData("🪙 Send Token", session.ActionSendToken),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Forget Wallet", session.ActionForget),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", session.ActionMenu),
		),
	)
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", session.ActionMenu),
		),
	)
}

func confirmKeyboard(reply *core.Reply) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm Send", session.ConfirmAction(reply.Amount)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", session.ActionMenu),
		),
	)
}

func noWalletKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔑 Generate Wallet", session.ActionGenerate),
			tgbotapi.NewInlineKeyboardButtonData("📥 Import Wallet", session.ActionImport),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Back to Menu", session.ActionMenu),
		),
	)
}

// render maps a structured engine reply to the message text and keyboard
// the user sees. All chat formatting lives here, not in the engine.
func render(reply *core.Reply) (string, tgbotapi.InlineKeyboardMarkup) {
	switch reply.Kind {
	case core.ReplyMenu:
		return menuText, mainMenuKeyboard()

	case core.ReplyWalletCreated:
		text := fmt.Sprintf("✅ *New wallet created successfully!*\n\n"+
			"📍 *Address:* `%s`\n"+
			"💰 *Balance:* %s SOL\n\n"+
			"⚠️ *Important:* export and save your secret key securely!",
			reply.Address, reply.Balance.StringFixed(4))
		return text, mainMenuKeyboard()

	case core.ReplyWalletImported:
		text := fmt.Sprintf("✅ *Wallet imported successfully!*\n\n"+
			"📍 *Address:* `%s`\n"+
			"💰 *Balance:* %s SOL",
			reply.Address, reply.Balance.StringFixed(4))
		return text, mainMenuKeyboard()

	case core.ReplyWalletForgotten:
		return "🗑 *Wallet forgotten.*\n\nThe keypair has been removed from this bot.", mainMenuKeyboard()

	case core.ReplyNoWallet:
		return "❌ *No wallet found!*\n\nYou need to generate or import a wallet first.", noWalletKeyboard()

	case core.ReplyAddress:
		text := fmt.Sprintf("👁️ *Your Wallet Address*\n\n"+
			"📍 *Address:* `%s`\n"+
			"💰 *Balance:* %s SOL\n\n"+
			"You can share this address to receive SOL.",
			reply.Address, reply.Balance.StringFixed(4))
		return text, mainMenuKeyboard()

	case core.ReplyBalance:
		text := fmt.Sprintf("💰 *Wallet Balance*\n\n"+
			"📍 *Address:* `%s`\n"+
			"💰 *Balance:* %s SOL\n\n"+
			"🔄 Balance updated just now",
			reply.Address, reply.Balance.StringFixed(4))
		return text, mainMenuKeyboard()

	case core.ReplyHistory:
		return renderHistory(reply), mainMenuKeyboard()

	case core.ReplySecretExport:
		return "🔐 *Secret Key Exported*\n\nYour secret key has been sent below. Save it securely and delete the message!", mainMenuKeyboard()

	case core.ReplyAskSecretKey:
		return "📥 *Import Existing Wallet*\n\n" +
			"Please send your secret key (base58 encoded):\n\n" +
			"⚠️ *Warning:* only import wallets you trust. Never share secret keys!", cancelKeyboard()

	case core.ReplyInvalidSecretKey:
		return "❌ *Invalid secret key!*\n\n" +
			"Please send a valid base58 encoded secret key or cancel the operation.", cancelKeyboard()

	case core.ReplyAskDestination:
		text := fmt.Sprintf("💸 *Send SOL*\n\n"+
			"💰 *Available Balance:* %s SOL\n\n"+
			"Please enter the recipient's Solana address:",
			reply.Balance.StringFixed(4))
		return text, cancelKeyboard()

	case core.ReplyInvalidDestination:
		return "❌ *Invalid Solana address!*\n\n" +
			"Please enter a valid Solana address (base58 encoded).", cancelKeyboard()

	case core.ReplyAskAmount:
		text := fmt.Sprintf("💸 *Send SOL*\n\n"+
			"📍 *To:* `%s`\n"+
			"💰 *Available:* %s SOL\n\n"+
			"How much SOL do you want to send?\n"+
			"(Leave some for transaction fees ~0.000005 SOL)",
			reply.Destination, reply.Balance.StringFixed(4))
		return text, cancelKeyboard()

	case core.ReplyInvalidAmount:
		return "❌ *Invalid amount!*\n\n" +
			"Please enter a valid number (greater than 0 and less than 1000 SOL).", cancelKeyboard()

	case core.ReplyInsufficientBalance:
		// three shapes share this kind: no-amount means the send menu was
		// refused outright, a destination means the final re-check rejected
		// an already reviewed transfer, otherwise the amount step re-asks
		switch {
		case reply.Amount.IsZero():
			text := fmt.Sprintf("❌ *Insufficient balance!*\n\n"+
				"💰 *Current Balance:* %s SOL\n"+
				"Minimum balance required: 0.001 SOL",
				reply.Balance.StringFixed(4))
			return text, mainMenuKeyboard()
		case reply.Destination != "":
			text := fmt.Sprintf("❌ *Transaction not sent!*\n\n"+
				"Your balance changed and no longer covers this transfer.\n\n"+
				"💰 *Available:* %s SOL\n"+
				"💸 *Requested:* %s SOL\n\n"+
				"Start a new transfer to try again.",
				reply.Balance.StringFixed(4), reply.Amount.String())
			return text, mainMenuKeyboard()
		default:
			text := fmt.Sprintf("❌ *Insufficient balance!*\n\n"+
				"💰 *Available:* %s SOL\n"+
				"💸 *Requested:* %s SOL\n\n"+
				"Please enter a smaller amount (leave room for transaction fees).",
				reply.Balance.StringFixed(4), reply.Amount.String())
			return text, cancelKeyboard()
		}

	case core.ReplyConfirmTransfer:
		text := fmt.Sprintf("💸 *Confirm Transaction*\n\n"+
			"📍 *To:* `%s`\n"+
			"💰 *Amount:* %s SOL\n"+
			"💵 *Fee:* ~0.000005 SOL\n\n"+
			"⚠️ *This action cannot be undone!*",
			reply.Destination, reply.Amount.String())
		return text, confirmKeyboard(reply)

	case core.ReplyTransferConfirmed:
		text := fmt.Sprintf("✅ *Transaction Successful!*\n\n"+
			"💸 *Sent:* %s SOL\n"+
			"📍 *To:* `%s`\n"+
			"🔗 *Signature:* `%s`",
			reply.Amount.String(), reply.Destination, shortSignature(reply.Signature))
		return text, mainMenuKeyboard()

	case core.ReplyTransferFailed:
		return "❌ *Transaction Failed!*\n\n" +
			"The transaction could not be completed. Please try again later.", mainMenuKeyboard()

	case core.ReplyFlowExpired:
		return "❌ Transaction expired. Please try again.", mainMenuKeyboard()

	case core.ReplyComingSoon:
		return "🪙 *Send Token*\n\n" +
			"🚧 *Feature Coming Soon!*\n\n" +
			"SPL token sending will be available in a future update.\n" +
			"For now, you can send SOL using the \"💸 Send SOL\" option.", mainMenuKeyboard()
	}

	return menuText, mainMenuKeyboard()
}

func renderHistory(reply *core.Reply) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Transaction History*\n\n📍 *Address:* `%s`\n\n", reply.Address)

	if len(reply.History) == 0 {
		b.WriteString("No transactions found.")
		return b.String()
	}

	b.WriteString("*Recent Transactions:*\n")
	for i, item := range reply.History {
		fmt.Fprintf(&b, "%d. `%s`\n", i+1, shortSignature(item.Signature))
		if !item.BlockTime.IsZero() {
			fmt.Fprintf(&b, "   📅 %s\n", item.BlockTime.Format("2006-01-02"))
		}
		if item.Failed {
			b.WriteString("   ⚠️ failed\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func shortSignature(sig string) string {
	if len(sig) <= 20 {
		return sig
	}
	return sig[:20] + "..."
}

// renderSecret is the one place raw secret material is ever written out.
// It goes into its own message so the transport user can delete it.
func renderSecret(secretKey string) string {
	return fmt.Sprintf("🔐 *Your Secret Key:*\n\n`%s`\n\n"+
		"⚠️ *KEEP THIS SECRET!* Anyone with this key can access your wallet.\n"+
		"💡 *Tip:* save this securely and delete this message.", secretKey)
}
