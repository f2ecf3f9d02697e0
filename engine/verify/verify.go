// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package verify defines the stateless transaction verification engine
// interface consumed by the mempool.  Implementations range from in-process
// verifiers used in tests to pools of external worker processes.
package verify

import (
	"github.com/aurumproject/aurum/core/types"
	"github.com/pkg/errors"
)

// Flags is a bitmask of script verification behaviors.  The mempool applies
// a stricter standard set than consensus requires so that a transaction
// accepted into the pool remains valid when mined.
type Flags uint32

const (
	// VerifyDERSignatures requires signatures to be strictly DER encoded.
	VerifyDERSignatures Flags = 1 << iota

	// VerifyStrictEncoding requires strict pubkey and signature hash type
	// encoding.
	VerifyStrictEncoding

	// VerifyLowS requires signatures to have S values at most half the
	// curve order.
	VerifyLowS

	// VerifyCleanStack requires the stack to contain only a single true
	// value after script evaluation.
	VerifyCleanStack

	// VerifyDiscourageUpgradableNops rejects scripts using reserved
	// opcodes.
	VerifyDiscourageUpgradableNops
)

// StandardFlags is the set of verification flags applied to transactions
// admitted under standard policy.
const StandardFlags = VerifyDERSignatures | VerifyStrictEncoding | VerifyLowS |
	VerifyCleanStack | VerifyDiscourageUpgradableNops

// Error describes a deterministic verification failure.  Malleated reports
// whether the failure is attributable to the witness portion of the
// transaction, in which case a differently signed transaction with the same
// identity hash could still succeed.
type Error struct {
	Reason    string
	Malleated bool
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return e.Reason
}

// NewError returns a deterministic verification failure.
func NewError(reason string, malleated bool) *Error {
	return &Error{Reason: reason, Malleated: malleated}
}

// IsMalleated reports whether err is a verification failure attributable to
// witness data.
func IsMalleated(err error) bool {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Malleated
	}
	return false
}

// ErrUnavailable is returned when no verdict could be obtained for the
// transaction.  It carries no judgement about the transaction itself, so
// callers must not treat it as a deterministic failure.
var ErrUnavailable = errors.New("verification engine unavailable")

// IsUnavailable reports whether err means the engine could not produce a
// verdict.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// Verifier executes stateless script and signature validation for a
// transaction.  The coins slice carries the resolved output being spent by
// each input, in input order.
//
// A nil return means the transaction verified.  A *Error return is a
// deterministic verdict against this exact serialization of the
// transaction.  Any error satisfying IsUnavailable means no verdict was
// reached.
type Verifier interface {
	VerifyTransaction(tx *types.Tx, coins []*types.Coin, flags Flags) error
}
