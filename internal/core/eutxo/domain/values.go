package domain

import (
	"encoding/binary"

	pbeutxo "github.com/weisyn/v1/pb/blockchain/eutxo"
)

// TxPointer identifies the transaction that created a UTXO: the block it
// was produced in and its index inside that block's transaction list.
type TxPointer struct {
	BlockHeight Height
	TxIndex     uint32
}

// Coin is an unspent coin UTXO.
type Coin struct {
	Owner     []byte
	AssetID   []byte
	Amount    uint64
	TxPointer TxPointer
}

func (c Coin) Encode() []byte {
	return (&pbeutxo.Coin{
		Owner:                c.Owner,
		AssetId:              c.AssetID,
		Amount:               c.Amount,
		TxPointerBlockHeight: uint64(c.TxPointer.BlockHeight),
		TxPointerTxIndex:     c.TxPointer.TxIndex,
	}).Marshal()
}

func DecodeCoin(blob []byte) (Coin, error) {
	var wire pbeutxo.Coin
	if err := wire.Unmarshal(blob); err != nil {
		return Coin{}, err
	}
	return Coin{
		Owner:   wire.Owner,
		AssetID: wire.AssetId,
		Amount:  wire.Amount,
		TxPointer: TxPointer{
			BlockHeight: Height(wire.TxPointerBlockHeight),
			TxIndex:     wire.TxPointerTxIndex,
		},
	}, nil
}

// Message is a bridge message. Retryable messages (signed or predicate
// locked) survive a reverted Chargeable transaction; plain messages do not.
type Message struct {
	Sender    []byte
	Recipient []byte
	Amount    uint64
	Nonce     uint64
	Data      []byte
	Retryable bool
}

func (m Message) Encode() []byte {
	return (&pbeutxo.Message{
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Amount:    m.Amount,
		Nonce:     m.Nonce,
		Data:      m.Data,
		Retryable: m.Retryable,
	}).Marshal()
}

func DecodeMessage(blob []byte) (Message, error) {
	var wire pbeutxo.Message
	if err := wire.Unmarshal(blob); err != nil {
		return Message{}, err
	}
	return Message{
		Sender:    wire.Sender,
		Recipient: wire.Recipient,
		Amount:    wire.Amount,
		Nonce:     wire.Nonce,
		Data:      wire.Data,
		Retryable: wire.Retryable,
	}, nil
}

// NonceKey is the column key a bridge Message is ingested under: Messages
// are addressed by nonce, not by a synthesized UTXO id, so a MessageInput
// consuming an ingested message must set UtxoID to this same encoding.
func NonceKey(nonce uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], nonce)
	return b[:]
}

// ZeroContractID is the canonical all-zero contract id: the
// coinbase_recipient sentinel meaning "no recipient, mint nothing".
var ZeroContractID = make([]byte, 32)

// IsZeroContract reports whether id is the zero contract: absent, or equal
// to ZeroContractID.
func IsZeroContract(id []byte) bool {
	if len(id) == 0 {
		return true
	}
	for _, b := range id {
		if b != 0 {
			return false
		}
	}
	return true
}

// ContractLatestUtxo tracks the UTXO currently holding a contract's latest
// state commitment.
type ContractLatestUtxo struct {
	ContractID []byte
	StateRoot  []byte
	TxPointer  TxPointer
}

func (c ContractLatestUtxo) Encode() []byte {
	return (&pbeutxo.ContractLatestUtxo{
		ContractId:           c.ContractID,
		StateRoot:            c.StateRoot,
		TxPointerBlockHeight: uint64(c.TxPointer.BlockHeight),
		TxPointerTxIndex:     c.TxPointer.TxIndex,
	}).Marshal()
}

func DecodeContractLatestUtxo(blob []byte) (ContractLatestUtxo, error) {
	var wire pbeutxo.ContractLatestUtxo
	if err := wire.Unmarshal(blob); err != nil {
		return ContractLatestUtxo{}, err
	}
	return ContractLatestUtxo{
		ContractID: wire.ContractId,
		StateRoot:  wire.StateRoot,
		TxPointer: TxPointer{
			BlockHeight: Height(wire.TxPointerBlockHeight),
			TxIndex:     wire.TxPointerTxIndex,
		},
	}, nil
}

// ProcessedTransaction is the marker written into ColumnProcessedTxs once a
// transaction id has been executed, the mechanism
// TransactionIdCollision detection reads back against.
type ProcessedTransaction struct {
	TxPointer TxPointer
}

func (p ProcessedTransaction) Encode() []byte {
	return Height(p.TxPointer.BlockHeight).Bytes()
}
