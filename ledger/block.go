package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// MaxDifficulty is the width of a hex encoded SHA-256 digest. Mining at a
// higher difficulty never terminates.
const MaxDifficulty uint = sha256.Size * 2

// cancelCheckInterval is how many nonces MineContext tries between two looks
// at its context.
const cancelCheckInterval = 1 << 12

// Block is a single ledger entry
type Block struct {
	Index      uint64 `json:"index"`
	Timestamp  int64  `json:"timestamp"`
	PrevHash   string `json:"prev_hash"`
	Payload    string `json:"payload"`
	Nonce      uint64 `json:"nonce"`
	Hash       string `json:"hash"`
	Difficulty uint   `json:"difficulty"` // not part of the digest
}

// NewBlock creates an unsealed block stamped with the current wall-clock time.
func NewBlock(index uint64, prevHash string, payload string) Block {
	return newBlockAt(index, prevHash, payload, time.Now())
}

func newBlockAt(index uint64, prevHash string, payload string, now time.Time) Block {
	return Block{
		Index:     index,
		Timestamp: now.Unix(),
		PrevHash:  prevHash,
		Payload:   payload,
		Nonce:     0,
		Hash:      "",
	}
}

// CalculateHash computes the SHA-256 digest of the block's index, timestamp,
// previous hash, payload and nonce, rendered as lowercase hex. Variable length
// fields are length prefixed so that no two field tuples share an encoding.
func (b Block) CalculateHash() string {
	sum := sha256.Sum256(b.serialize())
	return hex.EncodeToString(sum[:])
}

// Mine increments the nonce and rehashes until the hash has at least
// difficulty leading '0' characters. There is no upper bound on the number of
// attempts: a difficulty above MaxDifficulty makes Mine loop forever, so
// callers must bound it themselves.
func (b *Block) Mine(difficulty uint) {
	for {
		b.Nonce++
		b.Hash = b.CalculateHash()
		if HasLeadingZeros(b.Hash, difficulty) {
			break
		}
	}
	b.Difficulty = difficulty
}

// MineContext runs the same search as Mine but gives up once ctx is done.
// The context is looked at before the first attempt and then every
// cancelCheckInterval attempts. On cancellation the block is left unsealed
// and ctx.Err() is returned.
func (b *Block) MineContext(ctx context.Context, difficulty uint) error {
	for attempt := uint64(0); ; attempt++ {
		if attempt%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				b.Hash = ""
				return err
			}
		}
		b.Nonce++
		hash := b.CalculateHash()
		if HasLeadingZeros(hash, difficulty) {
			b.Hash = hash
			b.Difficulty = difficulty
			return nil
		}
	}
}

// Sealed reports whether the block has been mined.
func (b Block) Sealed() bool {
	return b.Hash != ""
}

// MeetsDifficulty reports whether the stored hash satisfies difficulty.
func (b Block) MeetsDifficulty(difficulty uint) bool {
	return HasLeadingZeros(b.Hash, difficulty)
}

// HasLeadingZeros reports whether hash starts with at least n '0' characters.
func HasLeadingZeros(hash string, n uint) bool {
	if uint(len(hash)) < n {
		return false
	}
	for i := uint(0); i < n; i++ {
		if hash[i] != '0' {
			return false
		}
	}
	return true
}

// serialize encodes the hashed fields, integers little endian.
func (b Block) serialize() []byte {
	buf := new(bytes.Buffer)
	writeUint64(buf, b.Index)
	writeUint64(buf, uint64(b.Timestamp))
	writeString(buf, b.PrevHash)
	writeString(buf, b.Payload)
	writeUint64(buf, b.Nonce)
	return buf.Bytes()
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}
