package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Signer supplies a payment identity: an address, the chain it lives on, and
// the ability to produce an EIP-712 signature over typed data.
//
// SignTypedData may block on an external approval step (hardware wallet,
// remote signer). No timeout is imposed here; callers bound it via ctx.
// A declined or failed approval is reported as an error, never retried.
type Signer interface {
	Address() common.Address
	ChainID() int64
	SignTypedData(ctx context.Context, typedData apitypes.TypedData) ([]byte, error)
}
