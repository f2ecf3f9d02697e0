// Copyright (c) 2019-2024 The aurum developers
// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"fmt"
)

// RejectCode represents a numeric value by which a transaction rejection is
// classified.  The codes below 0x40 describe problems with the submission
// itself while the higher codes describe policy and validation failures.
type RejectCode uint8

// These constants define the various supported reject codes.
const (
	RejectMalformed           RejectCode = 0x01
	RejectInvalid             RejectCode = 0x10
	RejectObsolete            RejectCode = 0x11
	RejectDuplicate           RejectCode = 0x12
	RejectKnownInvalid        RejectCode = 0x13
	RejectNonstandard         RejectCode = 0x40
	RejectDust                RejectCode = 0x41
	RejectInsufficientFee     RejectCode = 0x42
	RejectConflict            RejectCode = 0x43
	RejectLocktime            RejectCode = 0x44
	RejectInsufficientFunds   RejectCode = 0x45
	RejectScriptInvalid       RejectCode = 0x46
	RejectMalleated           RejectCode = 0x47
	RejectVerifierUnavailable RejectCode = 0x48
)

// Map of reject codes back to strings for pretty printing.
var rejectCodeStrings = map[RejectCode]string{
	RejectMalformed:           "REJECT_MALFORMED",
	RejectInvalid:             "REJECT_INVALID",
	RejectObsolete:            "REJECT_OBSOLETE",
	RejectDuplicate:           "REJECT_DUPLICATE",
	RejectKnownInvalid:        "REJECT_KNOWNINVALID",
	RejectNonstandard:         "REJECT_NONSTANDARD",
	RejectDust:                "REJECT_DUST",
	RejectInsufficientFee:     "REJECT_INSUFFICIENTFEE",
	RejectConflict:            "REJECT_CONFLICT",
	RejectLocktime:            "REJECT_LOCKTIME",
	RejectInsufficientFunds:   "REJECT_INSUFFICIENTFUNDS",
	RejectScriptInvalid:       "REJECT_SCRIPTINVALID",
	RejectMalleated:           "REJECT_MALLEATED",
	RejectVerifierUnavailable: "REJECT_VERIFIERUNAVAILABLE",
}

// String returns the RejectCode in human-readable form.
func (code RejectCode) String() string {
	if s, ok := rejectCodeStrings[code]; ok {
		return s
	}
	return fmt.Sprintf("Unknown RejectCode (%d)", uint8(code))
}
