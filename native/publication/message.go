package publication

import (
	"encoding/binary"
	"fmt"

	"lukechampine.com/blake3"
)

const (
	// MaxPermlinkLength bounds permlinks and headers.
	MaxPermlinkLength = 255
	// MaxCommentDepth is the deepest level a reply may sit at.
	MaxCommentDepth = 127
)

// MessageID names a message by its author and permlink.
type MessageID struct {
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
}

// Tracery derives the mosaic id of the message: the first eight bytes of
// the BLAKE3 digest of "author/permlink", big-endian.
func (m MessageID) Tracery() uint64 {
	sum := blake3.Sum256([]byte(m.Author + "/" + m.Permlink))
	return binary.BigEndian.Uint64(sum[:8])
}

func (m MessageID) String() string { return m.Author + "/" + m.Permlink }

// ValidatePermlink accepts 1 to MaxPermlinkLength characters of lowercase
// latin letters, digits and '-'.
func ValidatePermlink(permlink string) error {
	if len(permlink) == 0 || len(permlink) > MaxPermlinkLength {
		return fmt.Errorf("%w: length %d", ErrInvalidPermlink, len(permlink))
	}
	for i := 0; i < len(permlink); i++ {
		c := permlink[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return fmt.Errorf("%w: %q at %d", ErrInvalidPermlink, c, i)
	}
	return nil
}

// Vertex places a message in its discussion tree.
type Vertex struct {
	ID         uint64
	ParentID   uint64
	Level      uint16
	ChildCount uint32
	Author     string
	Permlink   string
}

// IsRoot reports whether the message is a post rather than a reply.
func (v *Vertex) IsRoot() bool { return v.ParentID == 0 && v.Level == 0 }
