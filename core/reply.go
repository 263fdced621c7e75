package core

import "github.com/shopspring/decimal"

type ReplyKind uint8

const (
	_ ReplyKind = iota
	ReplyMenu
	ReplyWalletCreated
	ReplyWalletImported
	ReplyWalletForgotten
	ReplyNoWallet
	ReplyAddress
	ReplyBalance
	ReplyHistory
	ReplySecretExport
	ReplyAskSecretKey
	ReplyInvalidSecretKey
	ReplyAskDestination
	ReplyInvalidDestination
	ReplyAskAmount
	ReplyInvalidAmount
	ReplyInsufficientBalance
	ReplyConfirmTransfer
	ReplyTransferConfirmed
	ReplyTransferFailed
	ReplyFlowExpired
	ReplyComingSoon
)

// Reply is the structured result the session engine hands back to the
// transport. The transport owns all formatting and keyboard rendering;
// Sensitive marks output the transport should make easy to destroy.
type Reply struct {
	Kind        ReplyKind
	Address     string
	Balance     decimal.Decimal
	Destination string
	Amount      decimal.Decimal
	Signature   string
	SecretKey   string
	History     []*SignatureInfo
	Sensitive   bool
}
