package scanner

import "github.com/kstmt/x86line/internal/token"

// keyword tables. Each maps a lower-cased identifier spelling to the token
// Kind and Int payload the scanner should produce for it — grounded on
// NASM's stdscan special-token tables (S_*, P_*, TOKEN_SIZE) and reshaped
// into Go maps instead of a linear C string-compare chain.

const (
	sizeGeneric int64 = iota // the bare "SIZE" keyword used as an element-size override marker
	sizeByte          = 1
	sizeWord          = 2
	sizeDword         = 4
	sizeQword         = 8
	sizeTword         = 10
	sizeOword         = 16
	sizeYword         = 32
	sizeZword         = 64
)

var sizeKeywords = map[string]int64{
	"size":   sizeGeneric,
	"byte":   sizeByte,
	"word":   sizeWord,
	"dword":  sizeDword,
	"qword":  sizeQword,
	"tword":  sizeTword,
	"oword":  sizeOword,
	"yword":  sizeYword,
	"zword":  sizeZword,
}

// Special keyword ids, carried in Token.Int when Kind == token.Special.
const (
	SpecialTo int64 = iota
	SpecialStrict
	SpecialFar
	SpecialNear
	SpecialShort
	SpecialNosplit
	SpecialRel
	SpecialAbs
	SpecialA16
	SpecialA32
	SpecialA64
	SpecialWrt
)

var specialKeywords = map[string]int64{
	"to":      SpecialTo,
	"strict":  SpecialStrict,
	"far":     SpecialFar,
	"near":    SpecialNear,
	"short":   SpecialShort,
	"nosplit": SpecialNosplit,
	"rel":     SpecialRel,
	"abs":     SpecialAbs,
	"a16":     SpecialA16,
	"a32":     SpecialA32,
	"wrt":     SpecialWrt,
	"a64":     SpecialA64,
}

// Prefix slot + value ids, carried in Token.Int (slot in the high bits,
// value in the low bits is unnecessary here — add_prefix only needs the
// identity, the parser decides the slot).
const (
	PrefixLock int64 = iota
	PrefixRep
	PrefixRepe
	PrefixRepz
	PrefixRepne
	PrefixRepnz
	PrefixBnd
	PrefixXacquire
	PrefixXrelease
	PrefixWait
	PrefixO16
	PrefixO32
	PrefixO64
	PrefixA16
	PrefixA32
	PrefixA64
)

var prefixKeywords = map[string]int64{
	"lock":      PrefixLock,
	"rep":       PrefixRep,
	"repe":      PrefixRepe,
	"repz":      PrefixRepz,
	"repne":     PrefixRepne,
	"repnz":     PrefixRepnz,
	"bnd":       PrefixBnd,
	"xacquire":  PrefixXacquire,
	"xrelease":  PrefixXrelease,
	"wait":      PrefixWait,
	"o16":       PrefixO16,
	"o32":       PrefixO32,
	"o64":       PrefixO64,
}

var strFuncKeywords = map[string]bool{
	"__utf16__":   true,
	"__utf16le__": true,
	"__utf16be__": true,
	"__utf32__":   true,
	"__utf32le__": true,
	"__utf32be__": true,
}

// timesKeyword and dupKeyword are spelled out rather than tabled: TIMES is
// a single identifier with no payload besides its Kind, checked directly
// in classifyWord; DUP is never a token of its own, only looked for by
// lookaheadDup.
const (
	timesKeyword = "times"
	dupKeyword   = "dup"
)

func masmPtr(word string) bool  { return word == "ptr" }
func masmFlat(word string) bool { return word == "flat" }

// classifyWord resolves a lower-cased bare word into a Kind and integer
// payload. It never looks at the register table itself — the caller does
// that first, since a register name always wins over every other keyword
// class (a label named "word" is nonsensical, but the corpus NASM rejects
// it resolving registers first, so this mirrors that same priority).
func classifyWord(lower string) (token.Kind, int64, bool) {
	if lower == timesKeyword {
		return token.TimesKeyword, 0, true
	}
	if v, ok := sizeKeywords[lower]; ok {
		return token.Size, v, true
	}
	if v, ok := specialKeywords[lower]; ok {
		return token.Special, v, true
	}
	if v, ok := prefixKeywords[lower]; ok {
		return token.Prefix, v, true
	}
	if masmPtr(lower) {
		return token.MasmPtr, 0, true
	}
	if masmFlat(lower) {
		return token.MasmFlat, 0, true
	}
	if strFuncKeywords[lower] {
		return token.StrFunc, 0, true
	}
	return token.Illegal, 0, false
}
