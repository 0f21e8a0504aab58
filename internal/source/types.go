package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
)

// NoFile is the zero FileID; FileSet never hands it out.
const NoFile FileID = 0

// Position is a zero-based line and UTF-16 code unit column, the unit
// editors speak.
type Position struct {
	Line      uint32
	Character uint32
}

func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}
