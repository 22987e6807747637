package solana

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// Well-known program IDs.
const (
	TokenProgramID     = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	Token2022ProgramID = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
)

// ValidateAddress checks that addr is a valid base58-encoded Solana
// public key (32 bytes).
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("empty address")
	}
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("decode address: %w", err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("address is %d bytes, want 32", len(decoded))
	}
	return nil
}

// IsTokenProgram reports whether owner is one of the SPL token programs.
func IsTokenProgram(owner string) bool {
	return owner == TokenProgramID || owner == Token2022ProgramID
}
