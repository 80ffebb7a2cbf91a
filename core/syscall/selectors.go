package syscall

import "github.com/starkexec/core/felt"

// Selector identifies one syscall. The zero value is not a valid
// selector.
type Selector int

const (
	StorageRead Selector = iota + 1
	StorageWrite
	CallContract
	LibraryCall
	LibraryCallL1Handler
	DelegateCall
	DelegateL1Handler
	Deploy
	EmitEvent
	SendMessageToL1
	GetBlockNumber
	GetBlockTimestamp
	GetCallerAddress
	GetContractAddress
	GetSequencerAddress
	GetTxSignature
	GetTxInfo
)

// selectorTags maps each selector to its ASCII wire tag (§4.2, §6).
var selectorTags = map[Selector]string{
	StorageRead:           "StorageRead",
	StorageWrite:          "StorageWrite",
	CallContract:          "CallContract",
	LibraryCall:           "LibraryCall",
	LibraryCallL1Handler:  "LibraryCallL1Handler",
	DelegateCall:          "DelegateCall",
	DelegateL1Handler:     "DelegateL1Handler",
	Deploy:                "Deploy",
	EmitEvent:             "EmitEvent",
	SendMessageToL1:       "SendMessageToL1",
	GetBlockNumber:        "GetBlockNumber",
	GetBlockTimestamp:     "GetBlockTimestamp",
	GetCallerAddress:      "GetCallerAddress",
	GetContractAddress:    "GetContractAddress",
	GetSequencerAddress:   "GetSequencerAddress",
	GetTxSignature:        "GetTxSignature",
	GetTxInfo:             "GetTxInfo",
}

var tagToSelector = func() map[string]Selector {
	m := make(map[string]Selector, len(selectorTags))
	for sel, tag := range selectorTags {
		m[tag] = sel
	}
	return m
}()

func (s Selector) String() string {
	if tag, ok := selectorTags[s]; ok {
		return tag
	}
	return "Unknown"
}

// DecodeSelector strips leading zero bytes from raw's big-endian
// representation and matches the remainder case-sensitively against the
// known selector tags (§4.2 "Selector decoding"). An all-zero felt (an
// empty remainder) is itself invalid — there is no selector with an
// empty tag.
func DecodeSelector(raw felt.Felt) (Selector, error) {
	b := raw.Bytes()
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	tag := string(b[i:])
	if tag == "" {
		return 0, &InvalidSelector{Raw: raw}
	}
	sel, ok := tagToSelector[tag]
	if !ok {
		return 0, &InvalidSelector{Raw: raw}
	}
	return sel, nil
}
