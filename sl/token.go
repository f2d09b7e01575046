// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sl

import "github.com/gogpu/sdrc/compiler"

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError

	// Literals
	TokenIdent
	TokenNumber
	TokenString

	// Operators
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenCaret        // ^
	TokenDot          // .
	TokenComma        // ,
	TokenColon        // :
	TokenSemicolon    // ;
	TokenQuestion     // ?
	TokenBang         // !
	TokenEqual        // =
	TokenLess         // <
	TokenGreater      // >
	TokenPlusPlus     // ++
	TokenMinusMinus   // --
	TokenEqualEqual   // ==
	TokenBangEqual    // !=
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenAmpAmp       // &&
	TokenPipePipe     // ||
	TokenPlusEqual    // +=
	TokenMinusEqual   // -=
	TokenStarEqual    // *=
	TokenSlashEqual   // /=

	// Delimiters
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]

	// Shader kinds
	TokenSurface
	TokenDisplacement
	TokenLight
	TokenVolume
	TokenImager

	// Types
	TokenFloat
	TokenPoint
	TokenVector
	TokenNormal
	TokenColor
	TokenMatrix
	TokenStringType
	TokenVoid

	// Qualifiers
	TokenUniform
	TokenVarying
	TokenOutput
	TokenExtern

	// Statements
	TokenIf
	TokenElse
	TokenWhile
	TokenFor
	TokenBreak
	TokenContinue
	TokenReturn
	TokenIlluminance
	TokenIlluminate
	TokenSolar
	TokenGather
)

var tokenNames = [...]string{
	TokenEOF:          "end of file",
	TokenError:        "invalid character",
	TokenIdent:        "identifier",
	TokenNumber:       "number",
	TokenString:       "string literal",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenStar:         "*",
	TokenSlash:        "/",
	TokenCaret:        "^",
	TokenDot:          ".",
	TokenComma:        ",",
	TokenColon:        ":",
	TokenSemicolon:    ";",
	TokenQuestion:     "?",
	TokenBang:         "!",
	TokenEqual:        "=",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenPlusPlus:     "++",
	TokenMinusMinus:   "--",
	TokenEqualEqual:   "==",
	TokenBangEqual:    "!=",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenAmpAmp:       "&&",
	TokenPipePipe:     "||",
	TokenPlusEqual:    "+=",
	TokenMinusEqual:   "-=",
	TokenStarEqual:    "*=",
	TokenSlashEqual:   "/=",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenLeftBrace:    "{",
	TokenRightBrace:   "}",
	TokenLeftBracket:  "[",
	TokenRightBracket: "]",
	TokenSurface:      "surface",
	TokenDisplacement: "displacement",
	TokenLight:        "light",
	TokenVolume:       "volume",
	TokenImager:       "imager",
	TokenFloat:        "float",
	TokenPoint:        "point",
	TokenVector:       "vector",
	TokenNormal:       "normal",
	TokenColor:        "color",
	TokenMatrix:       "matrix",
	TokenStringType:   "string",
	TokenVoid:         "void",
	TokenUniform:      "uniform",
	TokenVarying:      "varying",
	TokenOutput:       "output",
	TokenExtern:       "extern",
	TokenIf:           "if",
	TokenElse:         "else",
	TokenWhile:        "while",
	TokenFor:          "for",
	TokenBreak:        "break",
	TokenContinue:     "continue",
	TokenReturn:       "return",
	TokenIlluminance:  "illuminance",
	TokenIlluminate:   "illuminate",
	TokenSolar:        "solar",
	TokenGather:       "gather",
}

// String returns the source text of the token kind.
func (k TokenKind) String() string {
	if int(k) < len(tokenNames) && tokenNames[k] != "" {
		return tokenNames[k]
	}
	return "Unknown"
}

// IsShaderKind reports whether k starts a shader declaration.
func (k TokenKind) IsShaderKind() bool {
	return k >= TokenSurface && k <= TokenImager
}

// IsType reports whether k names a value type (or void).
func (k TokenKind) IsType() bool {
	return k >= TokenFloat && k <= TokenVoid
}

// Token represents a lexical token.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
}

// Position returns the source position of the token.
func (t Token) Position() Position {
	return Position{Line: t.Line, Column: t.Column}
}

// Position represents a position in source code.
type Position struct {
	Line   int
	Column int
}

// pos converts p to the compiler's position type.
func (p Position) pos() compiler.Pos {
	return compiler.Pos{Line: p.Line, Column: p.Column}
}
