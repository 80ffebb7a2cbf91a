package syscall

import "github.com/starkexec/core/callframe"

// handleStorageRead implements §4.2: "StorageRead delegates to
// read_storage(self, k)."
func handleStorageRead(ctx *callframe.Frame, req Request) (Response, error) {
	r := req.(StorageReadRequest)
	v, err := ctx.Cache.ReadStorage(ctx.StorageAddress, r.Address)
	if err != nil {
		return nil, err
	}
	return StorageReadResponse{Value: v}, nil
}

// handleStorageWrite implements §4.2: "StorageWrite first performs a
// read of (self, k) ... then writes the new value."
func handleStorageWrite(ctx *callframe.Frame, req Request) (Response, error) {
	r := req.(StorageWriteRequest)
	if _, err := ctx.Cache.ReadStorage(ctx.StorageAddress, r.Address); err != nil {
		return nil, err
	}
	ctx.Cache.WriteStorage(ctx.StorageAddress, r.Address, r.Value)
	return EmptyResponse{}, nil
}
