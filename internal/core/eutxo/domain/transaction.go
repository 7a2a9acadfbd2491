package domain

import (
	"crypto/sha256"

	"google.golang.org/protobuf/encoding/protowire"
)

// TxKind distinguishes the one mint transaction a block carries from the
// chargeable transactions that make up the rest of it.
type TxKind uint8

const (
	TxKindChargeable TxKind = 0
	TxKindMint       TxKind = 1
)

// CoinInput references an unspent Coin by its UTXO id (the bytes UtxoID
// builds from the creating transaction's pointer and output index).
type CoinInput struct {
	UtxoID []byte
}

// MessageInput references an unspent bridge Message by its UTXO id.
type MessageInput struct {
	UtxoID []byte
}

// OutputKind distinguishes a plain Coin output from a Change output and a
// Variable output — all three
// persist identically, through the compressed coin column, per the Persist
// rule; the kind only affects how the producing script interpreted the
// amount.
type OutputKind uint8

const (
	OutputKindCoin OutputKind = iota
	OutputKindChange
	OutputKindVariable
	OutputKindContract
	OutputKindContractCreated
)

type Output struct {
	Kind       OutputKind
	Owner      []byte
	AssetID    []byte
	Amount     uint64
	ContractID []byte
	StateRoot  []byte
}

// Transaction is the decoded form of a block's raw transaction bytes: the
// unit execute_single_transaction dispatches on.
type Transaction struct {
	Kind          TxKind
	CoinInputs    []CoinInput
	MessageInputs []MessageInput
	Outputs       []Output
	MaxGas        uint64
	Script        []byte
	Entrypoint    string
	Params        []byte
	ForbidFakeCoins bool
}

// ID is the transaction identifier the executor tracks in ColumnProcessedTxs
// and reports in preconfirmations: a hash over the encoded transaction.
func (t Transaction) ID() []byte {
	sum := sha256.Sum256(t.Encode())
	return sum[:]
}

func (t Transaction) Encode() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Kind))

	for _, in := range t.CoinInputs {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, in.UtxoID)
	}
	for _, in := range t.MessageInputs {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, in.UtxoID)
	}
	for _, out := range t.Outputs {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeOutput(out))
	}

	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, t.MaxGas)
	b = protowire.AppendTag(b, 6, protowire.BytesType)
	b = protowire.AppendBytes(b, t.Script)
	b = protowire.AppendTag(b, 7, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte(t.Entrypoint))
	b = protowire.AppendTag(b, 8, protowire.BytesType)
	b = protowire.AppendBytes(b, t.Params)
	b = protowire.AppendTag(b, 9, protowire.VarintType)
	if t.ForbidFakeCoins {
		b = protowire.AppendVarint(b, 1)
	} else {
		b = protowire.AppendVarint(b, 0)
	}
	return b
}

func encodeOutput(o Output) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(o.Kind))
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, o.Owner)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, o.AssetID)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, o.Amount)
	b = protowire.AppendTag(b, 5, protowire.BytesType)
	b = protowire.AppendBytes(b, o.ContractID)
	b = protowire.AppendTag(b, 6, protowire.BytesType)
	b = protowire.AppendBytes(b, o.StateRoot)
	return b
}

// DecodeTransaction parses raw transaction bytes as produced by Encode.
func DecodeTransaction(raw []byte) (Transaction, error) {
	var t Transaction
	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Transaction{}, ErrCodecError
		}
		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Transaction{}, ErrCodecError
			}
			t.Kind = TxKind(v)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Transaction{}, ErrCodecError
			}
			t.CoinInputs = append(t.CoinInputs, CoinInput{UtxoID: append([]byte(nil), v...)})
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Transaction{}, ErrCodecError
			}
			t.MessageInputs = append(t.MessageInputs, MessageInput{UtxoID: append([]byte(nil), v...)})
			b = b[n:]
		case 4:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Transaction{}, ErrCodecError
			}
			out, err := decodeOutput(v)
			if err != nil {
				return Transaction{}, err
			}
			t.Outputs = append(t.Outputs, out)
			b = b[n:]
		case 5:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Transaction{}, ErrCodecError
			}
			t.MaxGas = v
			b = b[n:]
		case 6:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Transaction{}, ErrCodecError
			}
			t.Script = append([]byte(nil), v...)
			b = b[n:]
		case 7:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Transaction{}, ErrCodecError
			}
			t.Entrypoint = string(v)
			b = b[n:]
		case 8:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Transaction{}, ErrCodecError
			}
			t.Params = append([]byte(nil), v...)
			b = b[n:]
		case 9:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Transaction{}, ErrCodecError
			}
			t.ForbidFakeCoins = v != 0
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Transaction{}, ErrCodecError
			}
			b = b[n:]
		}
	}
	return t, nil
}

func decodeOutput(raw []byte) (Output, error) {
	var o Output
	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Output{}, ErrCodecError
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Output{}, ErrCodecError
			}
			o.Kind = OutputKind(v)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Output{}, ErrCodecError
			}
			o.Owner = append([]byte(nil), v...)
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Output{}, ErrCodecError
			}
			o.AssetID = append([]byte(nil), v...)
			b = b[n:]
		case 4:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Output{}, ErrCodecError
			}
			o.Amount = v
			b = b[n:]
		case 5:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Output{}, ErrCodecError
			}
			o.ContractID = append([]byte(nil), v...)
			b = b[n:]
		case 6:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Output{}, ErrCodecError
			}
			o.StateRoot = append([]byte(nil), v...)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Output{}, ErrCodecError
			}
			b = b[n:]
		}
	}
	return o, nil
}

// UtxoID builds the UTXO identifier an output is referenced by once
// produced: the producing transaction's TxPointer and the output's index
// within it.
func UtxoID(pointer TxPointer, outputIndex uint32) []byte {
	b := pointer.BlockHeight.Bytes()
	var idx [4]byte
	idx[0] = byte(outputIndex >> 24)
	idx[1] = byte(outputIndex >> 16)
	idx[2] = byte(outputIndex >> 8)
	idx[3] = byte(outputIndex)
	b = append(b, idx[:]...)
	var txIdx [4]byte
	txIdx[0] = byte(pointer.TxIndex >> 24)
	txIdx[1] = byte(pointer.TxIndex >> 16)
	txIdx[2] = byte(pointer.TxIndex >> 8)
	txIdx[3] = byte(pointer.TxIndex)
	return append(b, txIdx[:]...)
}
