package solana

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
)

// SPL mint account layout is fixed at 82 bytes:
// mintAuthorityOption(4) mintAuthority(32) supply(8) decimals(1)
// isInitialized(1) freezeAuthorityOption(4) freezeAuthority(32)
const mintAccountLen = 82

// MintAccount is a decoded SPL token mint account.
type MintAccount struct {
	MintAuthority   string // empty when authority is revoked
	Supply          uint64
	Decimals        uint8
	Initialized     bool
	FreezeAuthority string // empty when no freeze authority
}

// ParseMintAccount decodes a base64-encoded SPL mint account.
func ParseMintAccount(data string) (*MintAccount, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}
	// Token accounts (165 bytes) live under the same owner program;
	// only the exact mint layout is accepted.
	if len(decoded) != mintAccountLen {
		return nil, fmt.Errorf("unexpected mint account size: %d bytes", len(decoded))
	}

	m := &MintAccount{
		Supply:      binary.LittleEndian.Uint64(decoded[36:44]),
		Decimals:    decoded[44],
		Initialized: decoded[45] == 1,
	}

	if binary.LittleEndian.Uint32(decoded[0:4]) == 1 {
		m.MintAuthority = base58.Encode(decoded[4:36])
	}
	if binary.LittleEndian.Uint32(decoded[46:50]) == 1 {
		m.FreezeAuthority = base58.Encode(decoded[50:82])
	}

	return m, nil
}

// IsFungible reports whether the mint looks like a fungible token rather
// than an NFT. NFT mints have zero decimals and a supply of one.
func (m *MintAccount) IsFungible() bool {
	return !(m.Decimals == 0 && m.Supply == 1)
}
