package dbpf

import "fmt"

// Reserved record types.
const (
	// TypeTexture marks records whose payload is an FSH image container.
	TypeTexture uint32 = 0x7AB50E44
	// TypeCompressionDirectory marks the legacy directory of compressed records.
	TypeCompressionDirectory uint32 = 0xE86B1EEF
)

// CompressionDirectoryTGI is the key the compression directory is stored under.
var CompressionDirectoryTGI = TGI{Type: TypeCompressionDirectory, Group: 0xE86B1EEF, Instance: 0x286B1F03}

// TGI is the (type, group, instance) key of an archive record.
type TGI struct {
	Type     uint32
	Group    uint32
	Instance uint32
}

// String formats the key as three hex words.
func (k TGI) String() string {
	return fmt.Sprintf("0x%08X-0x%08X-0x%08X", k.Type, k.Group, k.Instance)
}

// State is the lifecycle of a record between open and save.
type State uint8

const (
	// Unchanged records are copied from the source stream on save.
	Unchanged State = iota
	// New records are serialized from memory on save.
	New
	// Deleted records are dropped on save.
	Deleted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case New:
		return "new"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Entry is one index record. Location and Size refer to the source stream
// and are meaningless for New records.
type Entry struct {
	TGI
	Location uint32
	Size     uint32
	State    State
	// Compressed reports that the record is listed in the compression
	// directory. The payload magic is authoritative; this is a hint.
	Compressed bool

	data     []byte // pending payload of a New record added with AddData
	compress bool   // QFS-compress a New texture on save
}

// DirectoryEntry is one compression directory record.
type DirectoryEntry struct {
	TGI
	UncompressedSize uint32
}
