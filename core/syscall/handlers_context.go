package syscall

import (
	"github.com/starkexec/core/callframe"
	"github.com/starkexec/core/felt"
)

// handleGetContractAddress implements §4.2: "GetContractAddress returns
// self."
func handleGetContractAddress(ctx *callframe.Frame, req Request) (Response, error) {
	return FeltResponse{Value: ctx.StorageAddress}, nil
}

// handleGetCallerAddress implements §4.2: "GetCallerAddress returns
// caller."
func handleGetCallerAddress(ctx *callframe.Frame, req Request) (Response, error) {
	return FeltResponse{Value: ctx.CallerAddress}, nil
}

// handleGetSequencerAddress implements §4.2: "GetSequencerAddress
// returns block context's sequencer."
func handleGetSequencerAddress(ctx *callframe.Frame, req Request) (Response, error) {
	return FeltResponse{Value: ctx.Block.SequencerAddress}, nil
}

// handleGetBlockNumber implements §4.2: "GetBlockNumber ... return[s]
// block context values."
func handleGetBlockNumber(ctx *callframe.Frame, req Request) (Response, error) {
	return FeltResponse{Value: felt.FromUint64(ctx.Block.BlockNumber)}, nil
}

// handleGetBlockTimestamp implements §4.2: "GetBlockTimestamp ...
// return[s] block context values."
func handleGetBlockTimestamp(ctx *callframe.Frame, req Request) (Response, error) {
	return FeltResponse{Value: felt.FromUint64(ctx.Block.BlockTimestamp)}, nil
}

// handleGetTxSignature implements §4.2: memoizes a read-only VM segment
// containing the signature felts and returns its (start, length).
func handleGetTxSignature(ctx *callframe.Frame, req Request) (Response, error) {
	start, length, err := ctx.GetTxSignatureSegment()
	if err != nil {
		return nil, &MemoryError{Err: err}
	}
	return SegmentResponse{Start: start, Length: length}, nil
}

// handleGetTxInfo implements §4.2: memoizes a read-only VM segment for
// the tx-info struct and returns its start pointer.
func handleGetTxInfo(ctx *callframe.Frame, req Request) (Response, error) {
	start, err := ctx.GetTxInfoSegment()
	if err != nil {
		return nil, &MemoryError{Err: err}
	}
	return PtrResponse{Start: start}, nil
}
