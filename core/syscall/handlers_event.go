package syscall

import "github.com/starkexec/core/callframe"

// handleEmitEvent implements §4.2: appends an OrderedEvent at the
// frame's next order and advances the counter.
func handleEmitEvent(ctx *callframe.Frame, req Request) (Response, error) {
	r := req.(EmitEventRequest)
	ctx.EmitEvent(r.Keys, r.Data)
	return EmptyResponse{}, nil
}

// handleSendMessageToL1 implements §4.2: appends an
// OrderedL2ToL1Message at the frame's next order and advances the
// counter.
func handleSendMessageToL1(ctx *callframe.Frame, req Request) (Response, error) {
	r := req.(SendMessageToL1Request)
	ctx.SendMessage(r.To, r.Payload)
	return EmptyResponse{}, nil
}
