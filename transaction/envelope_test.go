package transaction

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

func sampleCall() Transaction {
	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	return Transaction{
		To:       &to,
		Value:    (*hexutil.Big)(big.NewInt(1000)),
		Data:     hexutil.Bytes{0xca, 0xfe},
		GasLimit: 100_000,
	}
}

func TestSignAndOpen(t *testing.T) {
	private, public := GenerateKey()

	env, err := Sign(private, sampleCall())
	require.NoError(t, err)

	payload, err := env.Encode()
	require.NoError(t, err)

	opened, err := Open(payload)
	require.NoError(t, err)
	require.Equal(t, sampleCall().To, opened.Transaction.To)
	require.Equal(t, int64(1000), opened.Transaction.Value.ToInt().Int64())

	expectedSender, err := public.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, hexutil.Bytes(expectedSender), opened.Sender)
}

func TestOpenRejectsTamperedTransaction(t *testing.T) {
	private, _ := GenerateKey()
	env, err := Sign(private, sampleCall())
	require.NoError(t, err)

	env.Transaction.Value = (*hexutil.Big)(big.NewInt(999_999))
	payload, err := env.Encode()
	require.NoError(t, err)

	_, err = Open(payload)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestOpenRejectsForeignSender(t *testing.T) {
	private, _ := GenerateKey()
	_, otherPublic := GenerateKey()
	env, err := Sign(private, sampleCall())
	require.NoError(t, err)

	env.Sender, err = otherPublic.MarshalBinary()
	require.NoError(t, err)
	require.ErrorIs(t, env.Verify(), ErrBadSignature)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open([]byte("Block 1 Data"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	deploy := Transaction{GasLimit: 21_000}
	require.True(t, deploy.IsDeployment())
	require.ErrorIs(t, deploy.Validate(), ErrMissingCode)

	deploy.Data = hexutil.Bytes{0x60, 0x80}
	require.NoError(t, deploy.Validate())

	call := sampleCall()
	call.GasLimit = 0
	require.Error(t, call.Validate())

	call = sampleCall()
	call.Value = (*hexutil.Big)(big.NewInt(-1))
	require.Error(t, call.Validate())
}

func TestEncodeDecode(t *testing.T) {
	tx := sampleCall()
	data, err := tx.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	again, err := decoded.Encode()
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestParseKey(t *testing.T) {
	private, public := GenerateKey()
	raw, err := private.MarshalBinary()
	require.NoError(t, err)

	for _, encoded := range []string{hexutil.Encode(raw), hexutil.Encode(raw)[2:]} {
		parsed, err := ParseKey(encoded)
		require.NoError(t, err)
		require.True(t, parsed.Equal(private))
	}

	pub, err := PublicKey(private)
	require.NoError(t, err)
	expected, err := public.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, hexutil.Encode(expected), pub)

	_, err = ParseKey("0xzz")
	require.Error(t, err)
	_, err = ParseKey("0x0102")
	require.Error(t, err)
}
