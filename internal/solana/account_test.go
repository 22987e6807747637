package solana

import (
	"encoding/base64"
	"encoding/binary"
	"testing"

	"github.com/mr-tron/base58"
)

func encodeMintAccount(t *testing.T, authority string, supply uint64, decimals uint8, initialized bool) string {
	t.Helper()

	buf := make([]byte, mintAccountLen)
	if authority != "" {
		binary.LittleEndian.PutUint32(buf[0:4], 1)
		decoded, err := base58.Decode(authority)
		if err != nil {
			t.Fatalf("decode authority: %v", err)
		}
		copy(buf[4:36], decoded)
	}
	binary.LittleEndian.PutUint64(buf[36:44], supply)
	buf[44] = decimals
	if initialized {
		buf[45] = 1
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func TestParseMintAccount(t *testing.T) {
	authority := TokenProgramID // any valid 32-byte key works here
	data := encodeMintAccount(t, authority, 1_000_000_000, 9, true)

	m, err := ParseMintAccount(data)
	if err != nil {
		t.Fatalf("ParseMintAccount: %v", err)
	}

	if m.MintAuthority != authority {
		t.Errorf("expected authority %s, got %s", authority, m.MintAuthority)
	}

	if m.Supply != 1_000_000_000 {
		t.Errorf("expected supply 1000000000, got %d", m.Supply)
	}

	if m.Decimals != 9 {
		t.Errorf("expected 9 decimals, got %d", m.Decimals)
	}

	if !m.Initialized {
		t.Error("expected initialized mint")
	}

	if m.FreezeAuthority != "" {
		t.Errorf("expected no freeze authority, got %s", m.FreezeAuthority)
	}
}

func TestParseMintAccount_RevokedAuthority(t *testing.T) {
	data := encodeMintAccount(t, "", 500, 6, true)

	m, err := ParseMintAccount(data)
	if err != nil {
		t.Fatalf("ParseMintAccount: %v", err)
	}

	if m.MintAuthority != "" {
		t.Errorf("expected empty authority, got %s", m.MintAuthority)
	}
}

func TestParseMintAccount_TooShort(t *testing.T) {
	data := base64.StdEncoding.EncodeToString(make([]byte, 40))

	if _, err := ParseMintAccount(data); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestParseMintAccount_TokenAccountRejected(t *testing.T) {
	// SPL token accounts are 165 bytes and owned by the same program.
	// Byte 45 lands inside the owner pubkey, so without a strict size
	// check one could decode as an initialized mint.
	buf := make([]byte, 165)
	buf[45] = 1
	data := base64.StdEncoding.EncodeToString(buf)

	if _, err := ParseMintAccount(data); err == nil {
		t.Error("expected error for token account data")
	}
}

func TestParseMintAccount_BadBase64(t *testing.T) {
	if _, err := ParseMintAccount("not-base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestMintAccount_IsFungible(t *testing.T) {
	cases := []struct {
		name     string
		supply   uint64
		decimals uint8
		want     bool
	}{
		{"standard token", 1_000_000_000, 9, true},
		{"nft", 1, 0, false},
		{"zero decimals large supply", 1000, 0, true},
		{"supply one with decimals", 1, 6, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &MintAccount{Supply: tc.supply, Decimals: tc.decimals}
			if got := m.IsFungible(); got != tc.want {
				t.Errorf("IsFungible() = %v, want %v", got, tc.want)
			}
		})
	}
}
