package auth

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// proofMessagePrefix anchors the signed text so a signature cannot be
	// replayed from another dApp.
	proofMessagePrefix = "kindness-pool wallet verification"

	// MaxProofAge bounds how old a signed timestamp may be (replay guard).
	MaxProofAge = 5 * time.Minute
)

// Proof is a personal_sign attestation that the caller controls the address.
// The nonce is issued by the server and consumed on first use.
type Proof struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"` // hex, 65 bytes
}

// ProofMessage is the canonical text the wallet signs (EIP-191 personal
// message).
func ProofMessage(address, nonce string, timestamp int64) string {
	return fmt.Sprintf("%s\naddress: %s\nnonce: %s\nissued: %d",
		proofMessagePrefix, strings.ToLower(address), nonce, timestamp)
}

// VerifyProof checks the timestamp window and recovers the signer from the
// EIP-191 digest. The recovered address must match the claimed one.
func VerifyProof(p Proof) error {
	proofTime := time.Unix(p.Timestamp, 0)
	if time.Since(proofTime) > MaxProofAge {
		return fmt.Errorf("proof expired: %s old", time.Since(proofTime).Round(time.Second))
	}
	if proofTime.After(time.Now().Add(1 * time.Minute)) {
		return fmt.Errorf("proof timestamp is in the future")
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(p.Signature, "0x"))
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("invalid signature size: %d", len(sig))
	}

	// Wallets produce V as 27/28; crypto.SigToPub wants 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	digest := accounts.TextHash([]byte(ProofMessage(p.Address, p.Nonce, p.Timestamp)))
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return fmt.Errorf("signature recovery failed: %w", err)
	}

	recovered := crypto.PubkeyToAddress(*pub)
	if !strings.EqualFold(recovered.Hex(), p.Address) {
		return fmt.Errorf("signature does not match address")
	}
	return nil
}
