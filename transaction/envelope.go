package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/sign/schnorr"
	"go.dedis.ch/kyber/v4/suites"
)

var suite suites.Suite = suites.MustFind("Ed25519")

var ErrBadSignature = errors.New("envelope signature invalid")

// Envelope is a transaction signed by its submitter with a Schnorr signature
// over the Ed25519 group. Its encoding is what goes into a block payload.
type Envelope struct {
	Transaction Transaction   `json:"transaction"`
	Sender      hexutil.Bytes `json:"sender"`
	Signature   hexutil.Bytes `json:"signature"`
}

// GenerateKey returns a fresh submitter key pair.
func GenerateKey() (kyber.Scalar, kyber.Point) {
	private := suite.Scalar().Pick(suite.RandomStream())
	public := suite.Point().Mul(private, nil)
	return private, public
}

// ParseKey decodes a hex encoded submitter private key, with or without a 0x
// prefix.
func ParseKey(hexKey string) (kyber.Scalar, error) {
	raw, err := hexutil.Decode(withHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("decode signer key: %w", err)
	}
	private := suite.Scalar()
	if err := private.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("unmarshal signer key: %w", err)
	}
	return private, nil
}

// PublicKey returns the hex encoded public key matching private.
func PublicKey(private kyber.Scalar) (string, error) {
	raw, err := suite.Point().Mul(private, nil).MarshalBinary()
	if err != nil {
		return "", err
	}
	return hexutil.Encode(raw), nil
}

func withHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}

// Sign wraps tx in an envelope signed with private.
func Sign(private kyber.Scalar, tx Transaction) (Envelope, error) {
	if err := tx.Validate(); err != nil {
		return Envelope{}, err
	}
	msg, err := tx.Encode()
	if err != nil {
		return Envelope{}, fmt.Errorf("encode transaction: %w", err)
	}
	sig, err := schnorr.Sign(suite, private, msg)
	if err != nil {
		return Envelope{}, fmt.Errorf("sign transaction: %w", err)
	}
	sender, err := suite.Point().Mul(private, nil).MarshalBinary()
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal sender: %w", err)
	}
	return Envelope{Transaction: tx, Sender: sender, Signature: sig}, nil
}

// Verify checks the signature against the embedded sender key.
func (e Envelope) Verify() error {
	public := suite.Point()
	if err := public.UnmarshalBinary(e.Sender); err != nil {
		return fmt.Errorf("unmarshal sender: %w", err)
	}
	msg, err := e.Transaction.Encode()
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	if err := schnorr.Verify(suite, public, msg, e.Signature); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return nil
}

// Encode returns the payload form of the envelope.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Open decodes a payload into an envelope, checks its signature and returns
// the transaction it carries.
func Open(payload []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(payload, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if err := e.Verify(); err != nil {
		return Envelope{}, err
	}
	if err := e.Transaction.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}
