// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package verify

import (
	"fmt"

	"github.com/aurumproject/aurum/core/types"
)

// StructuralVerifier applies the structural subset of the verification
// rules: every input redeeming a guarded output must carry witness bytes,
// and witness bytes on an input whose output demands none are classified as
// malleation, since they change the full hash without affecting the
// transaction's identity.  Deployments with a script engine plug it in
// behind the Verifier interface instead.
type StructuralVerifier struct{}

// VerifyTransaction checks the witness shape of every input against the
// coin it consumes.  This is part of the Verifier interface implementation.
func (StructuralVerifier) VerifyTransaction(tx *types.Tx, coins []*types.Coin, flags Flags) error {
	txIns := tx.Transaction().TxIn
	if len(coins) != len(txIns) {
		return NewError(fmt.Sprintf("got %d input coins for %d inputs",
			len(coins), len(txIns)), false)
	}

	for i, txIn := range txIns {
		guarded := len(coins[i].PkScript) > 0
		witness := len(txIn.SignScript) > 0

		if guarded && !witness {
			return NewError(fmt.Sprintf("input %d: witness stripped from "+
				"guarded output", i), true)
		}
		if !guarded && witness {
			return NewError(fmt.Sprintf("input %d: witness present where "+
				"none required", i), true)
		}
	}
	return nil
}
