package fsh

import (
	"fmt"

	"github.com/woozymasta/dbpf/internal/binutil"
)

// Attachment codes.
const (
	// AttachText is a plain text attachment; payload length is Width.
	AttachText uint8 = 0x6F
	// AttachTextShort is the short-header text variant.
	AttachTextShort uint8 = 0x69
	// AttachTextFull is the full-header text variant.
	AttachTextFull uint8 = 0x70
	// AttachRegion carries a pixel region (width, height and four misc words).
	AttachRegion uint8 = 0x7C
)

// Palette attachment codes are recognized and skipped.
var paletteCodes = map[uint8]bool{0x22: true, 0x24: true, 0x29: true, 0x2A: true, 0x2D: true}

// maxAttachmentPayload caps payloads whose length is inferred from layout.
const maxAttachmentPayload = 16384

// Attachment is a trailing chunk chained after a bitmap. The container does
// not interpret the payload.
type Attachment struct {
	Code   uint8
	Width  uint16
	Height uint16
	Misc   [4]uint16
	Data   []byte
}

// NewTextAttachment returns a text attachment carrying s.
func NewTextAttachment(s string) Attachment {
	return Attachment{Code: AttachText, Width: uint16(min(len(s), 0xFFFF)), Data: []byte(s)}
}

func isText(code uint8) bool {
	return code == AttachText || code == AttachTextShort || code == AttachTextFull
}

// headerLength returns the size of the code word plus fixed fields.
func (a *Attachment) headerLength() int {
	switch {
	case isText(a.Code):
		return 8
	case a.Code == AttachRegion:
		return 16
	default:
		return 4
	}
}

func (a *Attachment) validate() error {
	if paletteCodes[a.Code] || a.Code&0x80 != 0 || Format(a.Code).Valid() || unsupportedRaw(a.Code) {
		return fmt.Errorf("%w: 0x%02X", ErrUnsupportedAttachment, a.Code)
	}
	limit := maxAttachmentPayload
	if isText(a.Code) {
		limit = 0xFFFF
	}
	if len(a.Data) > limit {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrAttachmentTooLarge, len(a.Data), limit)
	}
	return nil
}

// write appends the attachment with a zero section length; the caller
// patches the code word once the next chunk position is known.
func (a *Attachment) write(w *binutil.Writer) {
	w.U32(uint32(a.Code))
	switch {
	case isText(a.Code):
		// #nosec G115 -- validated against 0xFFFF.
		w.U16(uint16(len(a.Data)))
		w.U16(a.Height)
	case a.Code == AttachRegion:
		w.U16(a.Width)
		w.U16(a.Height)
		for _, m := range a.Misc {
			w.U16(m)
		}
	}
	_, _ = w.Write(a.Data)
}

// readAttachment parses one attachment spanning [off, end). skipped reports
// palettes and oversized payloads, which are not returned.
func readAttachment(r *binutil.Reader, off, end int) (a Attachment, skipped bool, err error) {
	if err := r.Seek(off); err != nil {
		return a, false, fmt.Errorf("%w: %v", ErrAttachment, err)
	}
	word, err := r.U32()
	if err != nil {
		return a, false, fmt.Errorf("%w: %v", ErrAttachment, err)
	}
	a.Code = uint8(word)

	if paletteCodes[a.Code] {
		return a, true, nil
	}
	if off+a.headerLength() > end {
		return a, false, fmt.Errorf("%w: header overruns section at %d", ErrAttachment, off)
	}

	switch {
	case isText(a.Code):
		if a.Width, err = r.U16(); err != nil {
			return a, false, fmt.Errorf("%w: text header: %v", ErrAttachment, err)
		}
		if a.Height, err = r.U16(); err != nil {
			return a, false, fmt.Errorf("%w: text header: %v", ErrAttachment, err)
		}
		if r.Pos()+int(a.Width) > end {
			return a, false, fmt.Errorf("%w: text of %d bytes overruns section at %d", ErrAttachment, a.Width, off)
		}
		if a.Data, err = r.Copy(int(a.Width)); err != nil {
			return a, false, fmt.Errorf("%w: text payload: %v", ErrAttachment, err)
		}
		return a, false, nil
	case a.Code == AttachRegion:
		if a.Width, err = r.U16(); err != nil {
			return a, false, fmt.Errorf("%w: region header: %v", ErrAttachment, err)
		}
		if a.Height, err = r.U16(); err != nil {
			return a, false, fmt.Errorf("%w: region header: %v", ErrAttachment, err)
		}
		for i := range a.Misc {
			if a.Misc[i], err = r.U16(); err != nil {
				return a, false, fmt.Errorf("%w: region header: %v", ErrAttachment, err)
			}
		}
	}

	remaining := end - r.Pos()
	if remaining > maxAttachmentPayload {
		return a, true, nil
	}
	if a.Data, err = r.Copy(remaining); err != nil {
		return a, false, fmt.Errorf("%w: payload: %v", ErrAttachment, err)
	}
	return a, false, nil
}
