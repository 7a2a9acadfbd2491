// Package eutxo holds the wire messages exchanged with the column-keyed
// store: Coin, Message, ContractLatestUtxo and the store's metadata cell.
//
// These are hand-rolled, generated-shaped structs: rather than running a
// protoc/buf codegen step we encode/decode them directly against
// google.golang.org/protobuf/encoding/protowire, the same low-level wire
// primitives protoc-gen-go itself emits calls to. Field numbers below are
// stable and must not be renumbered once a database has been written with
// them.
package eutxo

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Coin is the wire form of an unspent coin UTXO.
type Coin struct {
	Owner       []byte // 1: locking owner/predicate bytes
	AssetId     []byte // 2: asset identifier
	Amount      uint64 // 3
	TxPointerBlockHeight uint64 // 4
	TxPointerTxIndex     uint32 // 5
}

func (c *Coin) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, c.Owner)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, c.AssetId)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, c.Amount)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, c.TxPointerBlockHeight)
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.TxPointerTxIndex))
	return b
}

func (c *Coin) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("eutxo: coin: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return fmt.Errorf("eutxo: coin: bad owner field")
			}
			c.Owner = append([]byte(nil), v...)
			data = data[m:]
		case 2:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return fmt.Errorf("eutxo: coin: bad asset_id field")
			}
			c.AssetId = append([]byte(nil), v...)
			data = data[m:]
		case 3:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return fmt.Errorf("eutxo: coin: bad amount field")
			}
			c.Amount = v
			data = data[m:]
		case 4:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return fmt.Errorf("eutxo: coin: bad tx_pointer_block_height field")
			}
			c.TxPointerBlockHeight = v
			data = data[m:]
		case 5:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return fmt.Errorf("eutxo: coin: bad tx_pointer_tx_index field")
			}
			c.TxPointerTxIndex = uint32(v)
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return fmt.Errorf("eutxo: coin: bad field %d", num)
			}
			data = data[m:]
		}
	}
	return nil
}

// Message is the wire form of a retryable or non-retryable bridge message.
type Message struct {
	Sender    []byte // 1
	Recipient []byte // 2
	Amount    uint64 // 3
	Nonce     uint64 // 4
	Data      []byte // 5
	Retryable bool   // 6: MessageDataSigned/MessageDataPredicate == true
}

func (m *Message) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Sender)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Recipient)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Amount)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Nonce)
	b = protowire.AppendTag(b, 5, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Data)
	b = protowire.AppendTag(b, 6, protowire.VarintType)
	retryable := uint64(0)
	if m.Retryable {
		retryable = 1
	}
	b = protowire.AppendVarint(b, retryable)
	return b
}

func (m *Message) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("eutxo: message: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			v, k := protowire.ConsumeBytes(data)
			if k < 0 {
				return fmt.Errorf("eutxo: message: bad sender field")
			}
			m.Sender = append([]byte(nil), v...)
			data = data[k:]
		case 2:
			v, k := protowire.ConsumeBytes(data)
			if k < 0 {
				return fmt.Errorf("eutxo: message: bad recipient field")
			}
			m.Recipient = append([]byte(nil), v...)
			data = data[k:]
		case 3:
			v, k := protowire.ConsumeVarint(data)
			if k < 0 {
				return fmt.Errorf("eutxo: message: bad amount field")
			}
			m.Amount = v
			data = data[k:]
		case 4:
			v, k := protowire.ConsumeVarint(data)
			if k < 0 {
				return fmt.Errorf("eutxo: message: bad nonce field")
			}
			m.Nonce = v
			data = data[k:]
		case 5:
			v, k := protowire.ConsumeBytes(data)
			if k < 0 {
				return fmt.Errorf("eutxo: message: bad data field")
			}
			m.Data = append([]byte(nil), v...)
			data = data[k:]
		case 6:
			v, k := protowire.ConsumeVarint(data)
			if k < 0 {
				return fmt.Errorf("eutxo: message: bad retryable field")
			}
			m.Retryable = v != 0
			data = data[k:]
		default:
			k := protowire.ConsumeFieldValue(num, typ, data)
			if k < 0 {
				return fmt.Errorf("eutxo: message: bad field %d", num)
			}
			data = data[k:]
		}
	}
	return nil
}

// ContractLatestUtxo records the current UTXO pointer owning a contract's
// latest state commitment.
type ContractLatestUtxo struct {
	ContractId  []byte // 1
	StateRoot   []byte // 2
	TxPointerBlockHeight uint64 // 3
	TxPointerTxIndex     uint32 // 4
}

func (c *ContractLatestUtxo) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, c.ContractId)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, c.StateRoot)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, c.TxPointerBlockHeight)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.TxPointerTxIndex))
	return b
}

func (c *ContractLatestUtxo) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("eutxo: contract_latest_utxo: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			v, k := protowire.ConsumeBytes(data)
			if k < 0 {
				return fmt.Errorf("eutxo: contract_latest_utxo: bad contract_id field")
			}
			c.ContractId = append([]byte(nil), v...)
			data = data[k:]
		case 2:
			v, k := protowire.ConsumeBytes(data)
			if k < 0 {
				return fmt.Errorf("eutxo: contract_latest_utxo: bad state_root field")
			}
			c.StateRoot = append([]byte(nil), v...)
			data = data[k:]
		case 3:
			v, k := protowire.ConsumeVarint(data)
			if k < 0 {
				return fmt.Errorf("eutxo: contract_latest_utxo: bad tx_pointer_block_height field")
			}
			c.TxPointerBlockHeight = v
			data = data[k:]
		case 4:
			v, k := protowire.ConsumeVarint(data)
			if k < 0 {
				return fmt.Errorf("eutxo: contract_latest_utxo: bad tx_pointer_tx_index field")
			}
			c.TxPointerTxIndex = uint32(v)
			data = data[k:]
		default:
			k := protowire.ConsumeFieldValue(num, typ, data)
			if k < 0 {
				return fmt.Errorf("eutxo: contract_latest_utxo: bad field %d", num)
			}
			data = data[k:]
		}
	}
	return nil
}

// DatabaseMetadata is the store's version/format cell (column "metadata",
// key "version").
type DatabaseMetadata struct {
	Version uint32 // 1
}

func (d *DatabaseMetadata) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(d.Version))
	return b
}

func (d *DatabaseMetadata) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("eutxo: database_metadata: bad tag")
		}
		data = data[n:]
		switch num {
		case 1:
			v, k := protowire.ConsumeVarint(data)
			if k < 0 {
				return fmt.Errorf("eutxo: database_metadata: bad version field")
			}
			d.Version = uint32(v)
			data = data[k:]
		default:
			k := protowire.ConsumeFieldValue(num, typ, data)
			if k < 0 {
				return fmt.Errorf("eutxo: database_metadata: bad field %d", num)
			}
			data = data[k:]
		}
	}
	return nil
}
