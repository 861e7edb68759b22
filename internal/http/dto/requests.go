package dto

type NonceRequest struct {
	Address string `json:"address"`
}

type ConnectWalletRequest struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

type SetNameRequest struct {
	Name string `json:"name"`
}

type GiveKindnessRequest struct {
	AmountEth string `json:"amount_eth"`
}

type WithdrawRequest struct {
	AmountEth string `json:"amount_eth"`
}

type ModalRequest struct {
	Modal string `json:"modal"`
}
