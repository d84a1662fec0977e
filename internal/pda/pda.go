// Package pda derives deterministic record addresses the way Solana
// derives program addresses: sha256 over seeds, a bump nonce, the program
// identity, and a domain marker, accepting only hashes that land off the
// ed25519 curve so no private key can ever exist for them.
package pda

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Seed prefixes for the record kinds.
const (
	saleSeed         = "sale"
	contributionSeed = "purchase"
	tokenAccountSeed = "token"
)

// programID anchors all derivations to this program's identity.
var programID = sha256.Sum256([]byte("ico-sale-engine/program/v1"))

// ErrNoBump is returned when no bump in [1, 255] produces an off-curve
// address. Probability is negligible for real seeds.
var ErrNoBump = errors.New("no valid bump produces an off-curve address")

// ErrOnCurve is returned by AddressWithBump when the requested bump hashes
// onto the curve and therefore cannot be a derived address.
var ErrOnCurve = errors.New("address for bump lies on the ed25519 curve")

// Derive finds the highest bump (255 down to 1) whose hash is off-curve and
// returns the base58 address together with that bump.
func Derive(seeds ...[]byte) (string, uint8, error) {
	for bump := uint8(255); bump > 0; bump-- {
		addr, err := AddressWithBump(bump, seeds...)
		if err == nil {
			return addr, bump, nil
		}
	}
	return "", 0, ErrNoBump
}

// AddressWithBump computes the address for a known bump. Used to rebuild a
// record's signing identity from its stored bump without re-searching.
func AddressWithBump(bump uint8, seeds ...[]byte) (string, error) {
	data := make([]byte, 0, 128)
	for _, seed := range seeds {
		data = append(data, seed...)
	}
	data = append(data, bump)
	data = append(data, programID[:]...)
	data = append(data, []byte("ProgramDerivedAddress")...)

	hash := sha256.Sum256(data)
	if isOnCurve(hash[:]) {
		return "", ErrOnCurve
	}
	return base58.Encode(hash[:]), nil
}

// DeriveSale returns the sale record address for an (authority, mint) pair.
func DeriveSale(authority, mint string) (string, uint8, error) {
	return Derive([]byte(saleSeed), []byte(authority), []byte(mint))
}

// SaleAddressWithBump rebuilds a sale address from its stored bump.
func SaleAddressWithBump(authority, mint string, bump uint8) (string, error) {
	return AddressWithBump(bump, []byte(saleSeed), []byte(authority), []byte(mint))
}

// DeriveContribution returns the contribution record address for a
// (sale, user) pair.
func DeriveContribution(sale, user string) (string, uint8, error) {
	return Derive([]byte(contributionSeed), []byte(sale), []byte(user))
}

// DeriveTokenAccount returns the associated custody account address for an
// (owner, mint) pair.
func DeriveTokenAccount(owner, mint string) (string, uint8, error) {
	return Derive([]byte(tokenAccountSeed), []byte(owner), []byte(mint))
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
