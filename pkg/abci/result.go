// Copyright 2025 Certen Protocol

package abci

import (
	"github.com/dashpay/platform-sub004/pkg/consensuserror"
	"github.com/dashpay/platform-sub004/pkg/statetransition"
	"github.com/dashpay/platform-sub004/pkg/types"
)

// classify turns one transition's execution Outcome into the
// (action, code, info, gasWanted, refund) tuple recorded on the block
// execution context and later surfaced as an ExecTxResult.
func classify(outcome statetransition.Outcome) (action txAction, code uint32, info string, gasWanted int64, refund uint64) {
	switch outcome.Kind {
	case statetransition.SuccessfulExecution:
		gas := int64(0)
		var rf uint64
		if outcome.Fee != nil {
			gas = int64(outcome.Fee.ProcessingFee + outcome.Fee.StorageFee)
			rf = totalRefund(outcome.Fee.Refunds)
		}
		return txUnmodified, 0, "", gas, rf
	case statetransition.PaidConsensusError:
		gas := int64(0)
		var rf uint64
		if outcome.Fee != nil {
			gas = int64(outcome.Fee.ProcessingFee)
			rf = totalRefund(outcome.Fee.Refunds)
		}
		return txUnmodified, errCode(outcome.Err), outcome.Err.Error(), gas, rf
	default:
		return txRemoved, errCode(outcome.Err), errInfo(outcome.Err), 0, 0
	}
}

func totalRefund(refunds map[types.Identifier]uint64) uint64 {
	var total uint64
	for _, v := range refunds {
		total += v
	}
	return total
}

func errCode(err error) uint32 {
	if ce, ok := err.(*consensuserror.Error); ok {
		return uint32(ce.Code)
	}
	return uint32(consensuserror.CodeCorruptedExecution)
}

func errInfo(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
