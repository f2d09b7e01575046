// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

// Instruction mnemonics understood by the shading VM.
const (
	OpMoveFloat   = "movff"
	OpMoveVector  = "movvv"
	OpMoveMatrix  = "movmm"
	OpMoveString  = "movss"
	OpMoveBoolean = "movbb"

	OpBroadcastFloat   = "vufloat"
	OpBroadcastVector  = "vuvector"
	OpBroadcastMatrix  = "vumatrix"
	OpBroadcastString  = "vustring"
	OpBroadcastBoolean = "vuboolean"

	OpVectorFromFloat  = "vfromf"
	OpMatrixFromFloat  = "mfromf"
	OpMatrixFromVector = "mfromv"

	OpVectorFromSystem = "vfrom"
	OpPointFromSystem  = "pfrom"
	OpColorFromSystem  = "cfrom"
	OpMatrixFromSystem = "mfrom"

	OpComposeVector = "vcompose"
	OpComposeMatrix = "mcompose"

	OpFloatFromArray  = "ffromarray"
	OpVectorFromArray = "vfromarray"
	OpMatrixFromArray = "mfromarray"
	OpStringFromArray = "sfromarray"

	OpFloatFromUniformArray  = "uffromarray"
	OpVectorFromUniformArray = "uvfromarray"
	OpMatrixFromUniformArray = "umfromarray"
	OpStringFromUniformArray = "usfromarray"

	OpFloatToArray  = "ftoarray"
	OpVectorToArray = "vtoarray"
	OpMatrixToArray = "mtoarray"
	OpStringToArray = "stoarray"

	OpAddFloat  = "addf"
	OpAddVector = "addv"
	OpAddMatrix = "addm"
	OpSubFloat  = "subf"
	OpSubVector = "subv"
	OpSubMatrix = "subm"
	OpMulFloat  = "mulf"
	OpMulVector = "mulv"
	OpMulMatrix = "mulm"
	OpDivFloat  = "divf"
	OpDivVector = "divv"
	OpDivMatrix = "divm"
	OpNegFloat  = "negf"
	OpNegVector = "negv"
	OpNegMatrix = "negm"
	OpDot       = "dot"
	OpCross     = "cross"

	OpEqualFloat      = "eqf"
	OpEqualVector     = "eqv"
	OpEqualMatrix     = "eqm"
	OpEqualString     = "eqs"
	OpEqualBoolean    = "eqb"
	OpNotEqualFloat   = "nef"
	OpNotEqualVector  = "nev"
	OpNotEqualMatrix  = "nem"
	OpNotEqualString  = "nes"
	OpNotEqualBoolean = "neb"
	OpLess            = "ltf"
	OpGreater         = "gtf"
	OpLessEqual       = "lef"
	OpGreaterEqual    = "gef"
	OpAnd             = "and"
	OpOr              = "or"
	OpNot             = "not"

	OpIf    = "if"
	OpElse  = "else"
	OpEndIf = "endif"

	OpForBegin = "forbegin"
	OpFor      = "for"
	OpForEnd   = "forend"
	OpBreak    = "break"
	OpContinue = "continue"

	OpIlluminance    = "illuminance"
	OpEndIlluminance = "endilluminance"
	OpIlluminate     = "illuminate"
	OpEndIlluminate  = "endilluminate"
	OpSolar          = "solar"
	OpEndSolar       = "endsolar"

	OpGatherHeader = "gatherheader"
	OpGather       = "gather"
	OpGatherElse   = "gatherelse"
	OpGatherEnd    = "gatherend"
)

// MoveOp returns the move mnemonic for a category, or "" for none.
func MoveOp(c Category) string {
	switch c {
	case CategoryFloat:
		return OpMoveFloat
	case CategoryVector:
		return OpMoveVector
	case CategoryMatrix:
		return OpMoveMatrix
	case CategoryString:
		return OpMoveString
	case CategoryBoolean:
		return OpMoveBoolean
	}
	return ""
}

// BroadcastOp returns the uniform-to-varying mnemonic for a category.
func BroadcastOp(c Category) string {
	switch c {
	case CategoryFloat:
		return OpBroadcastFloat
	case CategoryVector:
		return OpBroadcastVector
	case CategoryMatrix:
		return OpBroadcastMatrix
	case CategoryString:
		return OpBroadcastString
	case CategoryBoolean:
		return OpBroadcastBoolean
	}
	return ""
}

// ArrayReadOp returns the indexed read mnemonic. crossing selects the
// variant that reads a uniform array at a varying index.
func ArrayReadOp(c Category, crossing bool) string {
	switch c {
	case CategoryFloat:
		if crossing {
			return OpFloatFromUniformArray
		}
		return OpFloatFromArray
	case CategoryVector:
		if crossing {
			return OpVectorFromUniformArray
		}
		return OpVectorFromArray
	case CategoryMatrix:
		if crossing {
			return OpMatrixFromUniformArray
		}
		return OpMatrixFromArray
	case CategoryString:
		if crossing {
			return OpStringFromUniformArray
		}
		return OpStringFromArray
	}
	return ""
}

// ArrayWriteOp returns the indexed write mnemonic for a category.
func ArrayWriteOp(c Category) string {
	switch c {
	case CategoryFloat:
		return OpFloatToArray
	case CategoryVector:
		return OpVectorToArray
	case CategoryMatrix:
		return OpMatrixToArray
	case CategoryString:
		return OpStringToArray
	}
	return ""
}
