// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sl

import (
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes shading language source code.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	start  int
	tokens []Token
	errors ParseErrors
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	// Estimate ~1 token per 5 characters of source.
	estTokens := len(source) / 5
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize returns all tokens from the source. Invalid characters and
// unterminated strings are reported together after the whole source has
// been scanned.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Line:   l.line,
		Column: l.column,
	})

	if len(l.errors) > 0 {
		return l.tokens, l.errors
	}
	return l.tokens, nil
}

func (l *Lexer) scanToken() {
	r := l.advance()

	switch r {
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case '[':
		l.addToken(TokenLeftBracket)
	case ']':
		l.addToken(TokenRightBracket)
	case ',':
		l.addToken(TokenComma)
	case ':':
		l.addToken(TokenColon)
	case ';':
		l.addToken(TokenSemicolon)
	case '?':
		l.addToken(TokenQuestion)
	case '^':
		l.addToken(TokenCaret)
	case '.':
		if isDigit(l.peek()) {
			l.number()
		} else {
			l.addToken(TokenDot)
		}

	case '+':
		if l.match('+') {
			l.addToken(TokenPlusPlus)
		} else if l.match('=') {
			l.addToken(TokenPlusEqual)
		} else {
			l.addToken(TokenPlus)
		}
	case '-':
		if l.match('-') {
			l.addToken(TokenMinusMinus)
		} else if l.match('=') {
			l.addToken(TokenMinusEqual)
		} else {
			l.addToken(TokenMinus)
		}
	case '*':
		if l.match('=') {
			l.addToken(TokenStarEqual)
		} else {
			l.addToken(TokenStar)
		}
	case '/':
		if l.match('/') {
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		} else if l.match('*') {
			l.blockComment()
		} else if l.match('=') {
			l.addToken(TokenSlashEqual)
		} else {
			l.addToken(TokenSlash)
		}
	case '=':
		if l.match('=') {
			l.addToken(TokenEqualEqual)
		} else {
			l.addToken(TokenEqual)
		}
	case '!':
		if l.match('=') {
			l.addToken(TokenBangEqual)
		} else {
			l.addToken(TokenBang)
		}
	case '<':
		if l.match('=') {
			l.addToken(TokenLessEqual)
		} else {
			l.addToken(TokenLess)
		}
	case '>':
		if l.match('=') {
			l.addToken(TokenGreaterEqual)
		} else {
			l.addToken(TokenGreater)
		}
	case '&':
		if l.match('&') {
			l.addToken(TokenAmpAmp)
		} else {
			l.errorToken("unexpected character '&'")
		}
	case '|':
		if l.match('|') {
			l.addToken(TokenPipePipe)
		} else {
			l.errorToken("unexpected character '|'")
		}

	case '"':
		l.stringLiteral()

	// Preprocessor output markers such as `# 1 "file.sl"` are skipped.
	case '#':
		for l.peek() != '\n' && !l.isAtEnd() {
			l.advance()
		}

	case ' ', '\r', '\t':
	case '\n':
		l.line++
		l.column = 1

	default:
		if isDigit(r) {
			l.number()
		} else if isAlpha(r) || r == '_' {
			l.identifier()
		} else {
			l.errorToken("unexpected character " + string(r))
		}
	}
}

// blockComment skips a /* */ comment. Comments do not nest.
func (l *Lexer) blockComment() {
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		if l.advance() == '\n' {
			l.line++
			l.column = 1
		}
	}
}

func (l *Lexer) stringLiteral() {
	line, column := l.line, l.column-1
	for !l.isAtEnd() && l.peek() != '"' && l.peek() != '\n' {
		if l.advance() == '\\' && !l.isAtEnd() && l.peek() != '\n' {
			l.advance()
		}
	}
	if l.isAtEnd() || l.peek() == '\n' {
		l.errors.Add(&ParseError{
			Message: "unterminated string",
			Token:   Token{Kind: TokenError, Lexeme: l.source[l.start:l.pos], Line: line, Column: column},
		})
		return
	}
	l.advance() // closing quote
	l.addToken(TokenString)
}

// number scans digits [. digits] [e [+-] digits]. The leading dot of ".5"
// has already been consumed by scanToken.
func (l *Lexer) number() {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.source[l.start] != '.' && l.peek() == '.' {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		next := l.peekNext()
		if isDigit(next) || next == '+' || next == '-' {
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	l.addToken(TokenNumber)
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	text := l.source[l.start:l.pos]
	if kind, ok := keywords[text]; ok {
		l.addToken(kind)
		return
	}
	l.addToken(TokenIdent)
}

var keywords = map[string]TokenKind{
	"surface":      TokenSurface,
	"displacement": TokenDisplacement,
	"light":        TokenLight,
	"volume":       TokenVolume,
	"imager":       TokenImager,

	"float":  TokenFloat,
	"point":  TokenPoint,
	"vector": TokenVector,
	"normal": TokenNormal,
	"color":  TokenColor,
	"matrix": TokenMatrix,
	"string": TokenStringType,
	"void":   TokenVoid,

	"uniform": TokenUniform,
	"varying": TokenVarying,
	"output":  TokenOutput,
	"extern":  TokenExtern,

	"if":          TokenIf,
	"else":        TokenElse,
	"while":       TokenWhile,
	"for":         TokenFor,
	"break":       TokenBreak,
	"continue":    TokenContinue,
	"return":      TokenReturn,
	"illuminance": TokenIlluminance,
	"illuminate":  TokenIlluminate,
	"solar":       TokenSolar,
	"gather":      TokenGather,
}

func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.pos],
		Line:   l.line,
		Column: l.column - (l.pos - l.start),
	})
}

func (l *Lexer) errorToken(message string) {
	l.errors.Add(&ParseError{
		Message: message,
		Token: Token{
			Kind:   TokenError,
			Lexeme: l.source[l.start:l.pos],
			Line:   l.line,
			Column: l.column - (l.pos - l.start),
		},
	})
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	l.column++
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.pos:])
	r, _ := utf8.DecodeRuneInString(l.source[l.pos+size:])
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() {
		return false
	}
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if r != expected {
		return false
	}
	l.pos += size
	l.column++
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return unicode.IsLetter(r)
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}
