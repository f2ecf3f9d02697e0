// Copyright (c) 2019-2024 The aurum developers
// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/aurumproject/aurum/core/message"
)

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a transaction failed due to one of the many validation
// rules.  The caller can use type assertions to determine if a failure was
// specifically due to a rule violation and use the Err field to access the
// underlying error, which will be a TxRuleError.
type RuleError struct {
	Err error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.Err == nil {
		return "<nil>"
	}
	return e.Err.Error()
}

// TxRuleError identifies a rule violation.  It is used to indicate that
// processing of a transaction failed due to one of the many validation
// rules.  The caller can use type assertions to determine if a failure was
// specifically due to a rule violation and access the RejectCode field to
// ascertain the specific reason for the rule violation.
//
// Malleated reports whether the violation is attributable to witness bytes
// that do not contribute to the transaction's identity hash.  Such
// rejections are never recorded in the reject cache because the same
// identity could later be resubmitted with corrected witness data.
type TxRuleError struct {
	RejectCode  message.RejectCode // The code to send with reject messages
	Description string             // Human readable description of the issue
	Malleated   bool               // Witness-attributable failure
}

// Error satisfies the error interface and prints human-readable errors.
func (e TxRuleError) Error() string {
	return e.Description
}

// txRuleError creates an underlying TxRuleError with the given a set of
// arguments and returns a RuleError that encapsulates it.
func txRuleError(c message.RejectCode, desc string) RuleError {
	return RuleError{
		Err: TxRuleError{RejectCode: c, Description: desc},
	}
}

// txRuleErrorMalleated is like txRuleError for failures attributable to
// witness bytes.
func txRuleErrorMalleated(c message.RejectCode, desc string) RuleError {
	return RuleError{
		Err: TxRuleError{RejectCode: c, Description: desc, Malleated: true},
	}
}

// extractRejectCode attempts to return a relevant reject code for a given
// error by examining the error for known types.  It will return true if a
// code was successfully extracted.
func extractRejectCode(err error) (message.RejectCode, bool) {
	// Pull the underlying error out of a RuleError.
	if rerr, ok := err.(RuleError); ok {
		err = rerr.Err
	}

	if terr, ok := err.(TxRuleError); ok {
		return terr.RejectCode, true
	}

	return message.RejectInvalid, false
}

// IsErrorCode reports whether err is a rule error carrying the given reject
// code.
func IsErrorCode(err error, code message.RejectCode) bool {
	got, found := extractRejectCode(err)
	return found && got == code
}

// IsMalleatedError reports whether err is a rule error attributable to
// witness bytes.
func IsMalleatedError(err error) bool {
	if rerr, ok := err.(RuleError); ok {
		err = rerr.Err
	}
	if terr, ok := err.(TxRuleError); ok {
		return terr.Malleated
	}
	return false
}

// ErrToRejectErr examines the underlying type of the error and returns a
// reject code and string appropriate to be sent in a reject message.
func ErrToRejectErr(err error) (message.RejectCode, string) {
	// Return the reject code along with the error text if it can be
	// extracted from the error.
	rejectCode, found := extractRejectCode(err)
	if found {
		return rejectCode, err.Error()
	}

	// Return a generic rejected string if there is no error.  This really
	// should not happen unless the code elsewhere is not setting an error
	// as it should be, but it's best to be safe and simply return a
	// generic string rather than allowing the following code that
	// dereferences the err to panic.
	if err == nil {
		return message.RejectInvalid, "rejected"
	}

	return message.RejectInvalid, "rejected: " + err.Error()
}

// shouldCacheRejection reports whether a terminal rejection may be recorded
// in the reject cache.  Malleation-classified failures must never be
// cached, duplicate and already-cached outcomes carry no new information,
// and missing inputs are not rejections at all.
func shouldCacheRejection(err error) bool {
	rerr, ok := err.(RuleError)
	if !ok {
		return false
	}
	terr, ok := rerr.Err.(TxRuleError)
	if !ok {
		return false
	}
	if terr.Malleated {
		return false
	}
	switch terr.RejectCode {
	case message.RejectDuplicate, message.RejectKnownInvalid,
		message.RejectMalleated:
		return false
	}
	return true
}
