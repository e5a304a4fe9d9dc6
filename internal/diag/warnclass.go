package diag

// WarnClass partitions warnings into the handful of classes the parser
// itself names. A real assembler has dozens of these (one per `!foo [on]`
// block in NASM's own source); the parser only ever emits the ones listed
// here, so that is all this module carries.
type WarnClass string

const (
	WarnOther       WarnClass = "other"
	WarnLabelOrphan WarnClass = "label-orphan"
	WarnDBEmpty     WarnClass = "db-empty"
	WarnRegSize     WarnClass = "regsize"
)

// Pass identifies which assembler pass a pass-gated diagnostic applies to,
// the way NASM's ERR_PASS2 tags one. A diagnostic raised with PassTwo is
// recorded immediately with Entry.Pass set to PassTwo and counts as an
// error in Context.HasErrors like any other nonfatal entry; Context does
// not hold it back until a later pass.
type Pass int

const (
	PassAny Pass = iota
	PassTwo
)
