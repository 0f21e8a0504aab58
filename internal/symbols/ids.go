package symbols

// ScopeID and SymbolID index a table's arenas. Zero means none.
type (
	ScopeID  uint32
	SymbolID uint32
)

const (
	NoScopeID  ScopeID  = 0
	NoSymbolID SymbolID = 0
)

func (id ScopeID) IsValid() bool  { return id != NoScopeID }
func (id SymbolID) IsValid() bool { return id != NoSymbolID }
