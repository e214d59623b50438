package library

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/stacklok/asset-librarian/internal/catalog"
)

// RefType classifies a library entry
type RefType uint8

const (
	// RefTypeUnknown is the zero value
	RefTypeUnknown RefType = iota
	// RefTypeInitBank is the initialization sound bank
	RefTypeInitBank
	// RefTypeSoundBank is any other sound bank
	RefTypeSoundBank
	// RefTypeMedia is a media file
	RefTypeMedia
	// RefTypeExternalSource is an external source file
	RefTypeExternalSource
)

// String returns the display name of the type
func (t RefType) String() string {
	switch t {
	case RefTypeInitBank:
		return "InitBank"
	case RefTypeSoundBank:
		return "SoundBank"
	case RefTypeMedia:
		return "Media"
	case RefTypeExternalSource:
		return "ExternalSource"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (t RefType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *RefType) UnmarshalText(b []byte) error {
	for candidate := RefTypeUnknown; candidate <= RefTypeExternalSource; candidate++ {
		if candidate.String() == string(b) {
			*t = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown ref type %q", string(b))
}

// Ref is the identity of one asset assigned to a library
type Ref struct {
	Type        RefType   `json:"type"`
	GUID        uuid.UUID `json:"guid"`
	ID          uint32    `json:"id"`
	Name        string    `json:"name"`
	LanguageID  uint32    `json:"languageId"`
	SoundBankID uint32    `json:"soundBankId,omitempty"`
}

// NewRef projects a catalog record onto its library identity
func NewRef(asset *catalog.AssetRecord) Ref {
	ref := Ref{
		GUID:        asset.GUID(),
		ID:          asset.ID(),
		Name:        asset.Name(),
		LanguageID:  asset.LanguageID(),
		SoundBankID: asset.SoundBankID(),
	}

	switch asset.Type() {
	case catalog.AssetTypeSoundBank:
		if asset.IsInitBank() {
			ref.Type = RefTypeInitBank
		} else {
			ref.Type = RefTypeSoundBank
		}
	case catalog.AssetTypeMedia:
		ref.Type = RefTypeMedia
	default:
		ref.Type = RefTypeUnknown
	}
	return ref
}

// refFixedSize is the encoded size of a Ref without its name bytes:
// type, GUID, id, name length, language id and sound bank id
const refFixedSize = 1 + 16 + 4 + 2 + 4 + 4

// ErrShortBuffer is returned when decoding truncated data
var ErrShortBuffer = errors.New("ref: buffer too short")

// MarshalBinary encodes the ref as little-endian fixed fields around a
// length-prefixed UTF-8 name
func (r Ref) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(make([]byte, 0, refFixedSize+len(r.Name)))
}

// AppendBinary appends the encoded ref to b
func (r Ref) AppendBinary(b []byte) ([]byte, error) {
	if len(r.Name) > math.MaxUint16 {
		return nil, fmt.Errorf("ref: name is %d bytes, limit is %d", len(r.Name), math.MaxUint16)
	}

	b = append(b, byte(r.Type))
	b = append(b, r.GUID[:]...)
	b = binary.LittleEndian.AppendUint32(b, r.ID)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(r.Name)))
	b = append(b, r.Name...)
	b = binary.LittleEndian.AppendUint32(b, r.LanguageID)
	b = binary.LittleEndian.AppendUint32(b, r.SoundBankID)
	return b, nil
}

// UnmarshalBinary decodes a ref produced by MarshalBinary. Trailing bytes are rejected.
func (r *Ref) UnmarshalBinary(data []byte) error {
	n, err := r.decode(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("ref: %d trailing bytes", len(data)-n)
	}
	return nil
}

// decode reads one ref from the start of data and returns the bytes consumed
func (r *Ref) decode(data []byte) (int, error) {
	if len(data) < refFixedSize {
		return 0, ErrShortBuffer
	}

	var out Ref
	out.Type = RefType(data[0])
	if out.Type > RefTypeExternalSource {
		return 0, fmt.Errorf("ref: unknown type tag %d", data[0])
	}
	copy(out.GUID[:], data[1:17])
	out.ID = binary.LittleEndian.Uint32(data[17:21])
	nameLen := int(binary.LittleEndian.Uint16(data[21:23]))

	end := refFixedSize + nameLen
	if len(data) < end {
		return 0, ErrShortBuffer
	}
	out.Name = string(data[23 : 23+nameLen])
	rest := data[23+nameLen:]
	out.LanguageID = binary.LittleEndian.Uint32(rest[0:4])
	out.SoundBankID = binary.LittleEndian.Uint32(rest[4:8])

	*r = out
	return end, nil
}

// EncodeRefs concatenates the binary form of every ref
func EncodeRefs(refs []Ref) ([]byte, error) {
	var b []byte
	for i := range refs {
		var err error
		b, err = refs[i].AppendBinary(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode ref %d (%s): %w", i, refs[i].Name, err)
		}
	}
	return b, nil
}

// DecodeRefs reads refs written by EncodeRefs
func DecodeRefs(data []byte) ([]Ref, error) {
	var refs []Ref
	for len(data) > 0 {
		var ref Ref
		n, err := ref.decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode ref %d: %w", len(refs), err)
		}
		refs = append(refs, ref)
		data = data[n:]
	}
	return refs, nil
}
