package fhe_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/lockload/internal/adapters/fhe"
)

func TestMockEncryptor_HexEncodesPlaintext(t *testing.T) {
	enc := fhe.NewMockEncryptor()

	ct, err := enc.Encrypt(context.Background(), "1.5")
	require.NoError(t, err)
	assert.Equal(t, "0x312e35", hexutil.Encode(ct))

	plain, err := hexutil.Decode("0x312e35")
	require.NoError(t, err)
	assert.Equal(t, "1.5", string(plain))
}

func TestMockEncryptor_ProofIsConstant(t *testing.T) {
	enc := fhe.NewMockEncryptor()

	p1, err := enc.Proof(context.Background())
	require.NoError(t, err)
	p2, _ := enc.Proof(context.Background())

	assert.Equal(t, "0x70726f6f66", hexutil.Encode(p1))
	assert.Equal(t, p1, p2)
}

func TestMockEncryptor_RejectsInvalidUTF8(t *testing.T) {
	_, err := fhe.NewMockEncryptor().Encrypt(context.Background(), string([]byte{0xff, 0xfe}))
	assert.Error(t, err)
}

func TestMockEncryptor_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fhe.NewMockEncryptor().Encrypt(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
}
