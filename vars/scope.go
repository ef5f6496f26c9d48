package vars

// Null is the literal string yielded when reading a missing variable, and
// recognized as a removal sentinel when writing (spec §3).
const Null = "null"

// Scope is a flat, case-sensitive mapping from variable name to Cell.
type Scope struct {
	cells map[string]Cell
}

// NewScope returns an empty Scope.
func NewScope() *Scope {
	return &Scope{cells: make(map[string]Cell)}
}

// Get returns the named cell and whether it is present.
func (s *Scope) Get(name string) (Cell, bool) {
	c, ok := s.cells[name]
	return c, ok
}

// Set stores value under name. Setting to the literal "null" or an empty
// string removes the variable instead, per spec §3.
func (s *Scope) Set(name, value string) {
	if value == "" || value == Null {
		s.Remove(name)
		return
	}
	s.cells[name] = String(value)
}

// SetCell stores a pre-classified cell directly, bypassing the
// string-classification in Set. Used by arithmetic command handlers that
// already hold a typed result.
func (s *Scope) SetCell(name string, c Cell) {
	s.cells[name] = c
}

// Remove deletes name from the scope, a no-op if absent.
func (s *Scope) Remove(name string) {
	delete(s.cells, name)
}

// Clear empties the scope.
func (s *Scope) Clear() {
	s.cells = make(map[string]Cell)
}

// Chain is the three-tier scope chain described in spec §3: local →
// root-script → global. Root is nil for a root-script instance's own Chain
// (its Local scope doubles as the root scope in that case); non-root
// instances set Root to the bottom-of-stack frame's Local scope.
type Chain struct {
	Local  *Scope
	Root   *Scope
	Global *Scope
}

// NewChain builds a Chain over the given root and global scopes, with a
// fresh local scope.
func NewChain(root, global *Scope) *Chain {
	return &Chain{Local: NewScope(), Root: root, Global: global}
}

// Get resolves name using the lookup order local → root-script → global.
// A missing name returns the literal "null" cell and false.
func (c *Chain) Get(name string) (Cell, bool) {
	if v, ok := c.Local.Get(name); ok {
		return v, true
	}
	if c.Root != nil && c.Root != c.Local {
		if v, ok := c.Root.Get(name); ok {
			return v, true
		}
	}
	if v, ok := c.Global.Get(name); ok {
		return v, true
	}
	return String(Null), false
}

// GetString resolves name the same way Get does but always returns a
// string, defaulting to the literal "null".
func (c *Chain) GetString(name string) string {
	v, _ := c.Get(name)
	return v.String()
}

// GetRootOrGlobal resolves name using root-script scope first, then
// global — the lookup order "$mem[...]" uses (spec §4.5), distinct from
// Get's local-first order. Local is skipped unless Root is nil, in which
// case Local is the root-script scope and is read in Root's place.
func (c *Chain) GetRootOrGlobal(name string) (Cell, bool) {
	if c.Root != nil {
		if v, ok := c.Root.Get(name); ok {
			return v, true
		}
	} else if v, ok := c.Local.Get(name); ok {
		return v, true
	}
	if v, ok := c.Global.Get(name); ok {
		return v, true
	}
	return String(Null), false
}

// ScopeTarget identifies which tier of a Chain a write command addresses.
type ScopeTarget int

const (
	TargetLocal ScopeTarget = iota
	TargetRoot
	TargetGlobal
)

// ScopeFor returns the concrete Scope a ScopeTarget refers to.
func (c *Chain) ScopeFor(target ScopeTarget) *Scope {
	switch target {
	case TargetRoot:
		if c.Root != nil {
			return c.Root
		}
		return c.Local
	case TargetGlobal:
		return c.Global
	default:
		return c.Local
	}
}

// RemoveEverywhere deletes name from all three tiers, implementing "#rem".
func (c *Chain) RemoveEverywhere(name string) {
	c.Local.Remove(name)
	if c.Root != nil {
		c.Root.Remove(name)
	}
	c.Global.Remove(name)
}

// ClearEverywhere empties all three tiers, implementing "#clr".
func (c *Chain) ClearEverywhere() {
	c.Local.Clear()
	if c.Root != nil {
		c.Root.Clear()
	}
	c.Global.Clear()
}
