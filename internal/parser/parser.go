// Package parser implements a recursive-descent parser that turns a token
// stream into a Module AST, with bounded lookahead for the two ambiguous
// constructs the grammar requires: compiler-flag blocks vs. list literals,
// and typed declarations vs. plain expression statements.
package parser

import (
	"fmt"
	"strings"

	"github.com/spicelang/spicec/internal/ast"
	"github.com/spicelang/spicec/internal/token"
)

// Error is a parse failure with the ±5-token context window around the
// offending token, for diagnostic rendering.
type Error struct {
	Message string
	Token   token.Token
	Context []token.Token
}

func (e *Error) Error() string {
	var ctx strings.Builder
	for i, t := range e.Context {
		if i > 0 {
			ctx.WriteString(" ")
		}
		ctx.WriteString(t.Lexeme)
	}
	return fmt.Sprintf("%s:%d:%d: %s (near: %s)", e.Token.Filename, e.Token.Line, e.Token.Column, e.Message, ctx.String())
}

// Parser consumes a pre-lexed token stream. Comment tokens are dropped at
// construction time; newline tokens are kept, since the grammar's bounded
// lookahead must see past or stop at them.
type Parser struct {
	tokens []token.Token
}

type parserState struct {
	tokens []token.Token
	pos    int
}

// New builds a Parser over the given token stream, discarding comments.
func New(tokens []token.Token) *Parser {
	filtered := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind != token.COMMENT {
			filtered = append(filtered, t)
		}
	}
	return &Parser{tokens: filtered}
}

// Parse runs the parser to completion, producing a Module or the first
// ParseError encountered (parsing aborts at the first error, per spec).
func Parse(filename string, tokens []token.Token) (*ast.Module, error) {
	p := New(tokens)
	st := &parserState{tokens: p.tokens}
	return st.parseModule()
}

// ---- low-level token cursor helpers ----

func (s *parserState) current() token.Token {
	if s.pos >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[s.pos]
}

func (s *parserState) previous() token.Token {
	if s.pos == 0 {
		return s.tokens[0]
	}
	return s.tokens[s.pos-1]
}

func (s *parserState) isAtEnd() bool {
	return s.current().Kind == token.EOF
}

func (s *parserState) advance() token.Token {
	t := s.current()
	if !s.isAtEnd() {
		s.pos++
	}
	return t
}

func (s *parserState) check(k token.Kind) bool {
	return s.current().Kind == k
}

func (s *parserState) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if s.check(k) {
			s.advance()
			return true
		}
	}
	return false
}

func (s *parserState) consume(k token.Kind, msg string) (token.Token, error) {
	if s.check(k) {
		return s.advance(), nil
	}
	return token.Token{}, s.errorAt(s.current(), msg)
}

func (s *parserState) errorAt(t token.Token, msg string) error {
	lo := s.pos - 5
	if lo < 0 {
		lo = 0
	}
	hi := s.pos + 6
	if hi > len(s.tokens) {
		hi = len(s.tokens)
	}
	ctx := make([]token.Token, len(s.tokens[lo:hi]))
	copy(ctx, s.tokens[lo:hi])
	return &Error{Message: msg, Token: t, Context: ctx}
}

func (s *parserState) skipNewlines() {
	for s.check(token.NEWLINE) {
		s.advance()
	}
}

// peekNextNonNewlineType scans forward from index, skipping NEWLINE
// tokens, and returns the kind of the first meaningful token found.
func (s *parserState) peekNextNonNewlineType(from int) token.Kind {
	for i := from; i < len(s.tokens); i++ {
		if s.tokens[i].Kind != token.NEWLINE {
			return s.tokens[i].Kind
		}
	}
	return token.EOF
}

// ---- module / statement entry points ----

func (s *parserState) parseModule() (*ast.Module, error) {
	mod := &ast.Module{Token: s.current()}
	s.skipNewlines()
	for !s.isAtEnd() {
		stmt, err := s.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			mod.Body = append(mod.Body, stmt)
		}
		s.skipNewlines()
	}
	return mod, nil
}

func (s *parserState) parseBlock() (*ast.BlockStatement, error) {
	brace, err := s.consume(token.LBRACE, "expected '{' to start block")
	if err != nil {
		return nil, err
	}
	block := &ast.BlockStatement{Token: brace}
	s.skipNewlines()
	for !s.check(token.RBRACE) && !s.isAtEnd() {
		stmt, err := s.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		s.skipNewlines()
	}
	if _, err := s.consume(token.RBRACE, "expected '}' to close block"); err != nil {
		return nil, err
	}
	return block, nil
}

// parseStatement dispatches on the current token, handling the two
// lookahead-gated ambiguities before falling through to the simple forms.
func (s *parserState) parseStatement() (ast.Statement, error) {
	s.skipNewlines()
	if s.isAtEnd() || s.check(token.RBRACE) {
		return nil, nil
	}

	if s.check(token.LBRACKET) {
		flags, consumed, err := s.tryParseCompilerFlagBlock()
		if err != nil {
			return nil, err
		}
		if consumed {
			stmt, err := s.parseStatement()
			if err != nil {
				return nil, err
			}
			attachFlags(stmt, flags)
			return stmt, nil
		}
		// Not a flag block: fall through, parse '[' as a list-literal expression.
	}

	switch s.current().Kind {
	case token.INTERFACE:
		return s.parseInterfaceDeclaration(nil)
	case token.DATA:
		return s.parseDataClassDeclaration(nil)
	case token.ENUM:
		return s.parseEnumDeclaration(nil)
	case token.CLASS:
		return s.parseClassDeclaration(nil, false, false)
	case token.DEF:
		return s.parseFunctionDeclaration(nil, false, false, false)
	case token.ABSTRACT:
		return s.parseModifiedDeclaration(nil)
	case token.FINAL:
		if s.peekNextNonNewlineType(s.pos+1) == token.CLASS || s.peekNextNonNewlineType(s.pos+1) == token.DEF {
			return s.parseModifiedDeclaration(nil)
		}
		return s.parseFinalDeclaration()
	case token.STATIC:
		return s.parseModifiedDeclaration(nil)
	case token.IMPORT:
		return s.parseImportStatement(false)
	case token.FROM:
		return s.parseImportStatement(true)
	case token.IF:
		return s.parseIfStatement()
	case token.WHILE:
		return s.parseWhileStatement()
	case token.FOR:
		return s.parseForStatement()
	case token.SWITCH:
		return s.parseSwitchStatement()
	case token.RAISE:
		return s.parseRaiseStatement()
	case token.RETURN:
		return s.parseReturnStatement()
	case token.PASS:
		tok := s.advance()
		s.consumeOptionalSemicolon()
		return &ast.PassStatement{Token: tok}, nil
	case token.LBRACE:
		return s.parseBlock()
	}

	if s.check(token.IDENTIFIER) && s.peekNextNonNewlineType(s.pos+1) == token.COLON {
		return s.parseTypedDeclarationStatement()
	}

	return s.parseExpressionStatement()
}

// parseModifiedDeclaration handles a class/function declaration prefixed by
// one or more of `abstract`, `final`, `static` in any order.
func (s *parserState) parseModifiedDeclaration(flags []string) (ast.Statement, error) {
	isAbstract, isFinal, isStatic := false, false, false
	for {
		switch s.current().Kind {
		case token.ABSTRACT:
			isAbstract = true
			s.advance()
			continue
		case token.FINAL:
			isFinal = true
			s.advance()
			continue
		case token.STATIC:
			isStatic = true
			s.advance()
			continue
		}
		break
	}
	if s.check(token.CLASS) {
		return s.parseClassDeclaration(flags, isAbstract, isFinal)
	}
	if s.check(token.DEF) {
		return s.parseFunctionDeclaration(flags, isStatic, isAbstract, isFinal)
	}
	return nil, s.errorAt(s.current(), "expected 'class' or 'def' after declaration modifiers")
}

func attachFlags(stmt ast.Statement, flags []string) {
	if len(flags) == 0 {
		return
	}
	switch d := stmt.(type) {
	case *ast.ClassDeclaration:
		d.CompilerFlags = append(d.CompilerFlags, flags...)
	case *ast.FunctionDeclaration:
		d.CompilerFlags = append(d.CompilerFlags, flags...)
	case *ast.InterfaceDeclaration:
		d.CompilerFlags = append(d.CompilerFlags, flags...)
	case *ast.DataClassDeclaration:
		d.CompilerFlags = append(d.CompilerFlags, flags...)
	case *ast.EnumDeclaration:
		d.CompilerFlags = append(d.CompilerFlags, flags...)
	}
}

// tryParseCompilerFlagBlock looks ahead from the current '[' to decide
// whether this is a compiler-flag annotation. If it is, it consumes the
// block and returns its flag values with consumed=true. Otherwise it
// leaves the cursor untouched (rewinds) and returns consumed=false so the
// caller falls back to expression parsing.
func (s *parserState) tryParseCompilerFlagBlock() ([]string, bool, error) {
	start := s.pos
	depth := 0
	i := s.pos
	for i < len(s.tokens) {
		switch s.tokens[i].Kind {
		case token.LBRACKET:
			depth++
		case token.RBRACKET:
			depth--
			if depth == 0 {
				goto found
			}
		case token.EOF:
			s.pos = start
			return nil, false, nil
		}
		i++
	}
	s.pos = start
	return nil, false, nil

found:
	closeIdx := i
	introducer := s.peekNextNonNewlineType(closeIdx + 1)
	if !token.FlagIntroducers[introducer] {
		s.pos = start
		return nil, false, nil
	}

	s.advance() // consume '['
	var flags []string
	s.skipNewlines()
	for !s.check(token.RBRACKET) {
		switch s.current().Kind {
		case token.IDENTIFIER, token.STRING:
			flags = append(flags, s.advance().Lexeme)
		default:
			return nil, false, s.errorAt(s.current(), "expected identifier or string in compiler-flag block")
		}
		s.skipNewlines()
		if s.check(token.COMMA) {
			s.advance()
			s.skipNewlines()
		}
	}
	if _, err := s.consume(token.RBRACKET, "expected ']' to close compiler-flag block"); err != nil {
		return nil, false, err
	}
	s.skipNewlines()
	return flags, true, nil
}

func (s *parserState) consumeOptionalSemicolon() {
	if s.check(token.SEMICOLON) {
		s.advance()
	}
}

// ---- type annotations ----

// parseTypeAnnotation consumes the longest sequence of identifier, '.',
// '[', ']', ',' tokens and returns it as opaque surface text, stopping at
// '=', ';', newline, '}', a ',' outside brackets, or an unbalanced ']'.
func (s *parserState) parseTypeAnnotation() string {
	var b strings.Builder
	depth := 0
	for {
		k := s.current().Kind
		switch k {
		case token.IDENTIFIER, token.DOT, token.NONE:
			b.WriteString(s.advance().Lexeme)
			continue
		case token.COMMA:
			if depth == 0 {
				return b.String()
			}
			b.WriteString(s.advance().Lexeme)
			continue
		case token.LBRACKET:
			depth++
			b.WriteString(s.advance().Lexeme)
			continue
		case token.RBRACKET:
			if depth == 0 {
				return b.String()
			}
			depth--
			b.WriteString(s.advance().Lexeme)
			continue
		default:
			return b.String()
		}
	}
}

// ---- declarations ----

func (s *parserState) parseTypeParameters() ([]*ast.TypeParameter, error) {
	if !s.check(token.LT) {
		return nil, nil
	}
	s.advance()
	var params []*ast.TypeParameter
	for {
		nameTok, err := s.consume(token.IDENTIFIER, "expected type parameter name")
		if err != nil {
			return nil, err
		}
		tp := &ast.TypeParameter{Token: nameTok, Name: nameTok.Lexeme}
		if s.check(token.EXTENDS) {
			s.advance()
			boundTok, err := s.consume(token.IDENTIFIER, "expected bound type name after 'extends'")
			if err != nil {
				return nil, err
			}
			tp.Bound = boundTok.Lexeme
		}
		params = append(params, tp)
		if s.check(token.COMMA) {
			s.advance()
			continue
		}
		break
	}
	if _, err := s.consume(token.GT, "expected '>' to close type parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}

func (s *parserState) parseInterfaceDeclaration(flags []string) (*ast.InterfaceDeclaration, error) {
	tok := s.advance() // 'interface'
	nameTok, err := s.consume(token.IDENTIFIER, "expected interface name")
	if err != nil {
		return nil, err
	}
	decl := &ast.InterfaceDeclaration{Token: tok, Name: nameTok.Lexeme, CompilerFlags: flags}
	if s.check(token.EXTENDS) {
		s.advance()
		for {
			baseTok, err := s.consume(token.IDENTIFIER, "expected base interface name")
			if err != nil {
				return nil, err
			}
			decl.BaseInterfaces = append(decl.BaseInterfaces, baseTok.Lexeme)
			if s.check(token.COMMA) {
				s.advance()
				continue
			}
			break
		}
	}
	if _, err := s.consume(token.LBRACE, "expected '{' to start interface body"); err != nil {
		return nil, err
	}
	s.skipNewlines()
	for !s.check(token.RBRACE) && !s.isAtEnd() {
		sig, err := s.parseMethodSignature()
		if err != nil {
			return nil, err
		}
		decl.Methods = append(decl.Methods, sig)
		s.skipNewlines()
	}
	if _, err := s.consume(token.RBRACE, "expected '}' to close interface body"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (s *parserState) parseMethodSignature() (*ast.MethodSignature, error) {
	defTok, err := s.consume(token.DEF, "expected 'def' in interface body")
	if err != nil {
		return nil, err
	}
	nameTok, err := s.consume(token.IDENTIFIER, "expected method name")
	if err != nil {
		return nil, err
	}
	params, err := s.parseParameters()
	if err != nil {
		return nil, err
	}
	sig := &ast.MethodSignature{Token: defTok, Name: nameTok.Lexeme, Params: params}
	if s.check(token.ARROW) {
		s.advance()
		sig.ReturnType = s.parseTypeAnnotation()
	}
	if _, err := s.consume(token.SEMICOLON, "expected ';' after interface method signature"); err != nil {
		return nil, err
	}
	return sig, nil
}

func (s *parserState) parseParameters() ([]*ast.Parameter, error) {
	if _, err := s.consume(token.LPAREN, "expected '(' to start parameter list"); err != nil {
		return nil, err
	}
	var params []*ast.Parameter
	s.skipNewlines()
	for !s.check(token.RPAREN) {
		nameTok, err := s.consume(token.IDENTIFIER, "expected parameter name")
		if err != nil {
			return nil, err
		}
		p := &ast.Parameter{Token: nameTok, Name: nameTok.Lexeme}
		if s.check(token.COLON) {
			s.advance()
			p.TypeAnnotation = s.parseTypeAnnotation()
		}
		if s.check(token.ASSIGN) {
			s.advance()
			def, err := s.parseExpression()
			if err != nil {
				return nil, err
			}
			p.Default = def
		}
		params = append(params, p)
		s.skipNewlines()
		if s.check(token.COMMA) {
			s.advance()
			s.skipNewlines()
			continue
		}
		break
	}
	if _, err := s.consume(token.RPAREN, "expected ')' to close parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}

func (s *parserState) parseClassDeclaration(flags []string, isAbstract, isFinal bool) (*ast.ClassDeclaration, error) {
	tok := s.advance() // 'class'
	nameTok, err := s.consume(token.IDENTIFIER, "expected class name")
	if err != nil {
		return nil, err
	}
	decl := &ast.ClassDeclaration{Token: tok, Name: nameTok.Lexeme, IsAbstract: isAbstract, IsFinal: isFinal, CompilerFlags: flags}

	typeParams, err := s.parseTypeParameters()
	if err != nil {
		return nil, err
	}
	decl.TypeParameters = typeParams

	if s.check(token.LPAREN) {
		s.advance()
		for !s.check(token.RPAREN) {
			baseTok, err := s.consume(token.IDENTIFIER, "expected base class name")
			if err != nil {
				return nil, err
			}
			decl.Bases = append(decl.Bases, baseTok.Lexeme)
			if s.check(token.COMMA) {
				s.advance()
				continue
			}
			break
		}
		if _, err := s.consume(token.RPAREN, "expected ')' to close base class list"); err != nil {
			return nil, err
		}
	} else if s.check(token.EXTENDS) {
		s.advance()
		baseTok, err := s.consume(token.IDENTIFIER, "expected base class name after 'extends'")
		if err != nil {
			return nil, err
		}
		decl.Bases = append(decl.Bases, baseTok.Lexeme)
	}

	if s.check(token.IMPLEMENTS) {
		s.advance()
		for {
			ifaceTok, err := s.consume(token.IDENTIFIER, "expected interface name")
			if err != nil {
				return nil, err
			}
			decl.Interfaces = append(decl.Interfaces, ifaceTok.Lexeme)
			if s.check(token.COMMA) {
				s.advance()
				continue
			}
			break
		}
	}

	if _, err := s.consume(token.LBRACE, "expected '{' to start class body"); err != nil {
		return nil, err
	}
	s.skipNewlines()
	for !s.check(token.RBRACE) && !s.isAtEnd() {
		member, err := s.parseClassMember()
		if err != nil {
			return nil, err
		}
		decl.Body = append(decl.Body, member)
		s.skipNewlines()
	}
	if _, err := s.consume(token.RBRACE, "expected '}' to close class body"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (s *parserState) parseClassMember() (ast.Declaration, error) {
	var flags []string
	if s.check(token.LBRACKET) {
		f, consumed, err := s.tryParseCompilerFlagBlock()
		if err != nil {
			return nil, err
		}
		if consumed {
			flags = f
		}
	}
	isStatic, isAbstract, isFinal := false, false, false
	for {
		switch s.current().Kind {
		case token.STATIC:
			isStatic = true
			s.advance()
			continue
		case token.ABSTRACT:
			isAbstract = true
			s.advance()
			continue
		case token.FINAL:
			isFinal = true
			s.advance()
			continue
		}
		break
	}
	fn, err := s.parseFunctionDeclaration(flags, isStatic, isAbstract, isFinal)
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (s *parserState) parseFunctionDeclaration(flags []string, isStatic, isAbstract, isFinal bool) (*ast.FunctionDeclaration, error) {
	tok, err := s.consume(token.DEF, "expected 'def'")
	if err != nil {
		return nil, err
	}
	nameTok, err := s.consume(token.IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}
	decl := &ast.FunctionDeclaration{Token: tok, Name: nameTok.Lexeme, IsStatic: isStatic, IsAbstract: isAbstract, IsFinal: isFinal, CompilerFlags: flags}

	typeParams, err := s.parseTypeParameters()
	if err != nil {
		return nil, err
	}
	decl.TypeParameters = typeParams

	params, err := s.parseParameters()
	if err != nil {
		return nil, err
	}
	decl.Params = params

	if s.check(token.ARROW) {
		s.advance()
		decl.ReturnType = s.parseTypeAnnotation()
	}

	if s.check(token.SEMICOLON) {
		s.advance()
		// Abstract/interface-style method: lowered to a single pass statement.
		decl.Body = []ast.Statement{&ast.PassStatement{Token: nameTok}}
		return decl, nil
	}

	block, err := s.parseBlock()
	if err != nil {
		return nil, err
	}
	decl.Body = block.Statements
	return decl, nil
}

func (s *parserState) parseDataClassDeclaration(flags []string) (*ast.DataClassDeclaration, error) {
	tok := s.advance() // 'data'
	if _, err := s.consume(token.CLASS, "expected 'class' after 'data'"); err != nil {
		return nil, err
	}
	nameTok, err := s.consume(token.IDENTIFIER, "expected data class name")
	if err != nil {
		return nil, err
	}
	decl := &ast.DataClassDeclaration{Token: tok, Name: nameTok.Lexeme, CompilerFlags: flags}

	typeParams, err := s.parseTypeParameters()
	if err != nil {
		return nil, err
	}
	decl.TypeParameters = typeParams

	if _, err := s.consume(token.LPAREN, "expected '(' to start data class field list"); err != nil {
		return nil, err
	}
	s.skipNewlines()
	for !s.check(token.RPAREN) {
		nameTok, err := s.consume(token.IDENTIFIER, "expected field name")
		if err != nil {
			return nil, err
		}
		f := &ast.DataField{Token: nameTok, Name: nameTok.Lexeme}
		if s.check(token.COLON) {
			s.advance()
			f.TypeAnnotation = s.parseTypeAnnotation()
		}
		if s.check(token.ASSIGN) {
			s.advance()
			def, err := s.parseExpression()
			if err != nil {
				return nil, err
			}
			f.Default = def
		}
		decl.Fields = append(decl.Fields, f)
		s.skipNewlines()
		if s.check(token.COMMA) {
			s.advance()
			s.skipNewlines()
			continue
		}
		break
	}
	if _, err := s.consume(token.RPAREN, "expected ')' to close data class field list"); err != nil {
		return nil, err
	}

	if s.check(token.EXTENDS) {
		s.advance()
		baseTok, err := s.consume(token.IDENTIFIER, "expected base class name after 'extends'")
		if err != nil {
			return nil, err
		}
		decl.Bases = append(decl.Bases, baseTok.Lexeme)
	} else if s.check(token.LPAREN) {
		s.advance()
		for !s.check(token.RPAREN) {
			baseTok, err := s.consume(token.IDENTIFIER, "expected base class name")
			if err != nil {
				return nil, err
			}
			decl.Bases = append(decl.Bases, baseTok.Lexeme)
			if s.check(token.COMMA) {
				s.advance()
				continue
			}
			break
		}
		if _, err := s.consume(token.RPAREN, "expected ')' to close base class list"); err != nil {
			return nil, err
		}
	}

	if s.check(token.SEMICOLON) {
		s.advance()
		return decl, nil
	}
	if _, err := s.consume(token.LBRACE, "expected '{' or ';' after data class header"); err != nil {
		return nil, err
	}
	s.skipNewlines()
	for !s.check(token.RBRACE) && !s.isAtEnd() {
		member, err := s.parseClassMember()
		if err != nil {
			return nil, err
		}
		decl.Body = append(decl.Body, member)
		s.skipNewlines()
	}
	if _, err := s.consume(token.RBRACE, "expected '}' to close data class body"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (s *parserState) parseEnumDeclaration(flags []string) (*ast.EnumDeclaration, error) {
	tok := s.advance() // 'enum'
	nameTok, err := s.consume(token.IDENTIFIER, "expected enum name")
	if err != nil {
		return nil, err
	}
	decl := &ast.EnumDeclaration{Token: tok, Name: nameTok.Lexeme, CompilerFlags: flags}
	if _, err := s.consume(token.LBRACE, "expected '{' to start enum body"); err != nil {
		return nil, err
	}
	s.skipNewlines()
	for s.check(token.IDENTIFIER) {
		memberTok := s.advance()
		member := &ast.EnumMember{Token: memberTok, Name: memberTok.Lexeme}
		if s.check(token.LPAREN) {
			s.advance()
			for !s.check(token.RPAREN) {
				arg, err := s.parseExpression()
				if err != nil {
					return nil, err
				}
				member.Args = append(member.Args, arg)
				if s.check(token.COMMA) {
					s.advance()
					continue
				}
				break
			}
			if _, err := s.consume(token.RPAREN, "expected ')' to close enum member arguments"); err != nil {
				return nil, err
			}
		}
		decl.Members = append(decl.Members, member)
		s.skipNewlines()
		if s.check(token.COMMA) {
			s.advance()
			s.skipNewlines()
			continue
		}
		break
	}
	if s.check(token.SEMICOLON) {
		s.advance()
		s.skipNewlines()
		for !s.check(token.RBRACE) && !s.isAtEnd() {
			member, err := s.parseClassMember()
			if err != nil {
				return nil, err
			}
			decl.Body = append(decl.Body, member)
			s.skipNewlines()
		}
	}
	if _, err := s.consume(token.RBRACE, "expected '}' to close enum body"); err != nil {
		return nil, err
	}
	return decl, nil
}

// ---- simple statements ----

func (s *parserState) parseFinalDeclaration() (*ast.FinalDeclaration, error) {
	tok := s.advance() // 'final'
	nameTok, err := s.consume(token.IDENTIFIER, "expected identifier after 'final'")
	if err != nil {
		return nil, err
	}
	decl := &ast.FinalDeclaration{Token: tok, Target: nameTok.Lexeme}
	if s.check(token.COLON) {
		s.advance()
		decl.TypeAnnotation = s.parseTypeAnnotation()
	}
	if _, err := s.consume(token.ASSIGN, "expected '=' in final declaration"); err != nil {
		return nil, err
	}
	value, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	decl.Value = value
	s.consumeOptionalSemicolon()
	return decl, nil
}

func (s *parserState) parseTypedDeclarationStatement() (ast.Statement, error) {
	nameTok := s.advance()
	if _, err := s.consume(token.COLON, "expected ':' in typed declaration"); err != nil {
		return nil, err
	}
	typeAnn := s.parseTypeAnnotation()
	if _, err := s.consume(token.ASSIGN, "expected '=' in typed declaration"); err != nil {
		return nil, err
	}
	value, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	s.consumeOptionalSemicolon()
	target := &ast.IdentifierExpression{Token: nameTok, Name: nameTok.Lexeme}
	assign := &ast.AssignmentExpression{Token: nameTok, Target: target, Operator: token.ASSIGN, TypeAnnotation: typeAnn, Value: value}
	return &ast.ExpressionStatement{Token: nameTok, Expression: assign}, nil
}

func (s *parserState) parseImportStatement(isFrom bool) (*ast.ImportStatement, error) {
	tok := s.advance() // 'import' or 'from'
	stmt := &ast.ImportStatement{Token: tok, IsFrom: isFrom}
	moduleTok, err := s.consume(token.IDENTIFIER, "expected module name")
	if err != nil {
		return nil, err
	}
	module := moduleTok.Lexeme
	for s.check(token.DOT) {
		s.advance()
		part, err := s.consume(token.IDENTIFIER, "expected module path segment")
		if err != nil {
			return nil, err
		}
		module += "." + part.Lexeme
	}
	stmt.Module = module

	if isFrom {
		if _, err := s.consume(token.IMPORT, "expected 'import' after module name"); err != nil {
			return nil, err
		}
		for {
			nameTok, err := s.consume(token.IDENTIFIER, "expected imported name")
			if err != nil {
				return nil, err
			}
			alias := ""
			if s.check(token.AS) {
				s.advance()
				aliasTok, err := s.consume(token.IDENTIFIER, "expected alias after 'as'")
				if err != nil {
					return nil, err
				}
				alias = aliasTok.Lexeme
			}
			stmt.Names = append(stmt.Names, nameTok.Lexeme)
			stmt.Aliases = append(stmt.Aliases, alias)
			if s.check(token.COMMA) {
				s.advance()
				continue
			}
			break
		}
	} else if s.check(token.AS) {
		s.advance()
		aliasTok, err := s.consume(token.IDENTIFIER, "expected alias after 'as'")
		if err != nil {
			return nil, err
		}
		stmt.Names = []string{module}
		stmt.Aliases = []string{aliasTok.Lexeme}
	}
	s.consumeOptionalSemicolon()
	return stmt, nil
}

func (s *parserState) parseIfStatement() (*ast.IfStatement, error) {
	tok := s.advance() // 'if'
	cond, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := s.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Token: tok, Condition: cond, Then: then}
	s.skipNewlines()
	if s.check(token.ELSE) {
		s.advance()
		if s.check(token.IF) {
			elseIf, err := s.parseIfStatement()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseIf
		} else {
			elseBlock, err := s.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseBlock
		}
	}
	return stmt, nil
}

func (s *parserState) parseWhileStatement() (*ast.WhileStatement, error) {
	tok := s.advance() // 'while'
	cond, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := s.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Token: tok, Condition: cond, Body: body}, nil
}

func (s *parserState) parseForStatement() (*ast.ForStatement, error) {
	tok := s.advance() // 'for'
	targetTok, err := s.consume(token.IDENTIFIER, "expected loop variable name")
	if err != nil {
		return nil, err
	}
	if _, err := s.consume(token.IN, "expected 'in' in for loop"); err != nil {
		return nil, err
	}
	iter, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := s.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Token: tok, Target: targetTok.Lexeme, Iter: iter, Body: body}, nil
}

func (s *parserState) parseSwitchStatement() (*ast.SwitchStatement, error) {
	tok := s.advance() // 'switch'
	expr, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := s.consume(token.LBRACE, "expected '{' to start switch body"); err != nil {
		return nil, err
	}
	stmt := &ast.SwitchStatement{Token: tok, Expression: expr}
	s.skipNewlines()
	for s.check(token.CASE) {
		caseTok := s.advance()
		val, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		block, err := s.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Cases = append(stmt.Cases, &ast.CaseClause{Token: caseTok, Value: val, Body: block.Statements})
		s.skipNewlines()
	}
	if s.check(token.DEFAULT) {
		s.advance()
		block, err := s.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Default = block.Statements
		s.skipNewlines()
	}
	if _, err := s.consume(token.RBRACE, "expected '}' to close switch body"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (s *parserState) parseRaiseStatement() (*ast.RaiseStatement, error) {
	tok := s.advance() // 'raise'
	stmt := &ast.RaiseStatement{Token: tok}
	if !s.check(token.SEMICOLON) && !s.check(token.NEWLINE) && !s.check(token.RBRACE) {
		exc, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Exception = exc
	}
	s.consumeOptionalSemicolon()
	return stmt, nil
}

func (s *parserState) parseReturnStatement() (*ast.ReturnStatement, error) {
	tok := s.advance() // 'return'
	stmt := &ast.ReturnStatement{Token: tok}
	if !s.check(token.SEMICOLON) && !s.check(token.NEWLINE) && !s.check(token.RBRACE) {
		val, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Value = val
	}
	s.consumeOptionalSemicolon()
	return stmt, nil
}

func (s *parserState) parseExpressionStatement() (*ast.ExpressionStatement, error) {
	tok := s.current()
	expr, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	s.consumeOptionalSemicolon()
	return &ast.ExpressionStatement{Token: tok, Expression: expr}, nil
}

// ---- expressions, precedence climbing ----

func (s *parserState) parseExpression() (ast.Expression, error) {
	return s.parseAssignment()
}

var compoundAssignOps = []token.Kind{token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN}

func (s *parserState) parseAssignment() (ast.Expression, error) {
	left, err := s.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if s.matchAny(compoundAssignOps) {
		op := s.previous().Kind
		value, err := s.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpression{Token: left.GetToken(), Target: left, Operator: op, Value: value}, nil
	}
	return left, nil
}

func (s *parserState) matchAny(kinds []token.Kind) bool {
	return s.match(kinds...)
}

func (s *parserState) parseLogicalOr() (ast.Expression, error) {
	left, err := s.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for s.check(token.OR) {
		opTok := s.advance()
		right, err := s.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpression{Token: opTok, Operator: token.OR, Left: left, Right: right}
	}
	return left, nil
}

func (s *parserState) parseLogicalAnd() (ast.Expression, error) {
	left, err := s.parseEquality()
	if err != nil {
		return nil, err
	}
	for s.check(token.AND) {
		opTok := s.advance()
		right, err := s.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpression{Token: opTok, Operator: token.AND, Left: left, Right: right}
	}
	return left, nil
}

var equalityOps = []token.Kind{token.EQ, token.NOT_EQ}
var comparisonOps = []token.Kind{token.LT, token.GT, token.LTE, token.GTE}
var additiveOps = []token.Kind{token.PLUS, token.MINUS}
var multiplicativeOps = []token.Kind{token.STAR, token.SLASH, token.PERCENT}

func (s *parserState) parseEquality() (ast.Expression, error) {
	left, err := s.parseComparison()
	if err != nil {
		return nil, err
	}
	for s.matchAny(equalityOps) {
		op := s.previous()
		right, err := s.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Token: op, Operator: op.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (s *parserState) parseComparison() (ast.Expression, error) {
	left, err := s.parseAdditive()
	if err != nil {
		return nil, err
	}
	for s.matchAny(comparisonOps) {
		op := s.previous()
		right, err := s.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Token: op, Operator: op.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (s *parserState) parseAdditive() (ast.Expression, error) {
	left, err := s.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for s.matchAny(additiveOps) {
		op := s.previous()
		right, err := s.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Token: op, Operator: op.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (s *parserState) parseMultiplicative() (ast.Expression, error) {
	left, err := s.parseUnary()
	if err != nil {
		return nil, err
	}
	for s.matchAny(multiplicativeOps) {
		op := s.previous()
		right, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Token: op, Operator: op.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (s *parserState) parseUnary() (ast.Expression, error) {
	if s.check(token.MINUS) || s.check(token.NOT) {
		op := s.advance()
		operand, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Token: op, Operator: op.Kind, Operand: operand}, nil
	}
	return s.parsePostfix()
}

func (s *parserState) parsePostfix() (ast.Expression, error) {
	expr, err := s.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case s.check(token.LPAREN):
			expr, err = s.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case s.check(token.DOT):
			dotTok := s.advance()
			attrTok, err := s.consume(token.IDENTIFIER, "expected attribute name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.AttributeExpression{Token: dotTok, Object: expr, Attribute: attrTok.Lexeme}
		case s.check(token.LBRACKET):
			bracketTok := s.advance()
			expr, err = s.finishSubscriptOrSlice(bracketTok, expr)
			if err != nil {
				return nil, err
			}
		default:
			return expr, nil
		}
	}
}

func (s *parserState) finishCall(callee ast.Expression) (ast.Expression, error) {
	tok, err := s.consume(token.LPAREN, "expected '('")
	if err != nil {
		return nil, err
	}
	call := &ast.CallExpression{Token: tok, Callee: callee}
	s.skipNewlines()
	for !s.check(token.RPAREN) {
		argTok := s.current()
		name := ""
		if s.check(token.IDENTIFIER) && s.peekNextNonNewlineType(s.pos+1) == token.ASSIGN {
			name = s.advance().Lexeme
			s.advance() // consume '='
		}
		value, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Arguments = append(call.Arguments, &ast.ArgumentExpression{Token: argTok, Name: name, Value: value})
		s.skipNewlines()
		if s.check(token.COMMA) {
			s.advance()
			s.skipNewlines()
			continue
		}
		break
	}
	if _, err := s.consume(token.RPAREN, "expected ')' to close call arguments"); err != nil {
		return nil, err
	}
	return call, nil
}

func (s *parserState) finishSubscriptOrSlice(bracketTok token.Token, object ast.Expression) (ast.Expression, error) {
	var start, stop, step ast.Expression
	isSlice := false
	if !s.check(token.COLON) {
		e, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		start = e
	}
	if s.check(token.COLON) {
		isSlice = true
		s.advance()
		if !s.check(token.COLON) && !s.check(token.RBRACKET) {
			e, err := s.parseExpression()
			if err != nil {
				return nil, err
			}
			stop = e
		}
		if s.check(token.COLON) {
			s.advance()
			if !s.check(token.RBRACKET) {
				e, err := s.parseExpression()
				if err != nil {
					return nil, err
				}
				step = e
			}
		}
	}
	if _, err := s.consume(token.RBRACKET, "expected ']' to close subscript"); err != nil {
		return nil, err
	}
	if isSlice {
		return &ast.SliceExpression{Token: bracketTok, Object: object, Start: start, Stop: stop, Step: step}, nil
	}
	return &ast.SubscriptExpression{Token: bracketTok, Object: object, Index: start}, nil
}

func (s *parserState) parsePrimary() (ast.Expression, error) {
	tok := s.current()
	switch tok.Kind {
	case token.NUMBER:
		s.advance()
		return &ast.LiteralExpression{Token: tok, Value: tok.Lexeme, Kind: ast.LiteralNumber}, nil
	case token.STRING:
		s.advance()
		return &ast.LiteralExpression{Token: tok, Value: tok.Lexeme, Kind: ast.LiteralString}, nil
	case token.FSTRING:
		s.advance()
		return &ast.LiteralExpression{Token: tok, Value: tok.Lexeme, Kind: ast.LiteralFString}, nil
	case token.BOOLEAN:
		s.advance()
		return &ast.LiteralExpression{Token: tok, Value: tok.Lexeme, Kind: ast.LiteralBoolean}, nil
	case token.NONE:
		s.advance()
		return &ast.LiteralExpression{Token: tok, Value: tok.Lexeme, Kind: ast.LiteralNone}, nil
	case token.IDENTIFIER:
		s.advance()
		return &ast.IdentifierExpression{Token: tok, Name: tok.Lexeme}, nil
	case token.LPAREN:
		s.advance()
		s.skipNewlines()
		expr, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		s.skipNewlines()
		if _, err := s.consume(token.RPAREN, "expected ')' to close grouped expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case token.LBRACKET:
		return s.parseListOrComprehension()
	case token.LBRACE:
		return s.parseDictExpression()
	case token.DEF:
		return s.parseLambdaExpression()
	}
	return nil, s.errorAt(tok, fmt.Sprintf("unexpected token %q", tok.Lexeme))
}

func (s *parserState) parseListOrComprehension() (ast.Expression, error) {
	tok := s.advance() // '['
	s.skipNewlines()
	if s.check(token.RBRACKET) {
		s.advance()
		return &ast.ListExpression{Token: tok}, nil
	}
	first, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	s.skipNewlines()
	if s.check(token.FOR) {
		s.advance()
		targetTok, err := s.consume(token.IDENTIFIER, "expected comprehension target")
		if err != nil {
			return nil, err
		}
		if _, err := s.consume(token.IN, "expected 'in' in comprehension"); err != nil {
			return nil, err
		}
		iter, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		comp := &ast.ComprehensionExpression{Token: tok, Kind: ast.ComprehensionList, Element: first, Target: targetTok.Lexeme, Iter: iter}
		if s.check(token.IF) {
			s.advance()
			cond, err := s.parseExpression()
			if err != nil {
				return nil, err
			}
			comp.Condition = cond
		}
		if _, err := s.consume(token.RBRACKET, "expected ']' to close comprehension"); err != nil {
			return nil, err
		}
		return comp, nil
	}
	list := &ast.ListExpression{Token: tok, Elements: []ast.Expression{first}}
	s.skipNewlines()
	for s.check(token.COMMA) {
		s.advance()
		s.skipNewlines()
		if s.check(token.RBRACKET) {
			break
		}
		e, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, e)
		s.skipNewlines()
	}
	if _, err := s.consume(token.RBRACKET, "expected ']' to close list literal"); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *parserState) parseDictExpression() (ast.Expression, error) {
	tok := s.advance() // '{'
	dict := &ast.DictExpression{Token: tok}
	s.skipNewlines()
	for !s.check(token.RBRACE) {
		keyTok := s.current()
		key, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := s.consume(token.COLON, "expected ':' in dict literal"); err != nil {
			return nil, err
		}
		value, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		dict.Entries = append(dict.Entries, &ast.DictEntry{Token: keyTok, Key: key, Value: value})
		s.skipNewlines()
		if s.check(token.COMMA) {
			s.advance()
			s.skipNewlines()
			continue
		}
		break
	}
	if _, err := s.consume(token.RBRACE, "expected '}' to close dict literal"); err != nil {
		return nil, err
	}
	return dict, nil
}

func (s *parserState) parseLambdaExpression() (ast.Expression, error) {
	tok := s.advance() // 'def' used as lambda introducer
	params, err := s.parseParameters()
	if err != nil {
		return nil, err
	}
	lam := &ast.LambdaExpression{Token: tok, Params: params}
	if s.check(token.ARROW) {
		s.advance()
		lam.ReturnType = s.parseTypeAnnotation()
	}
	if _, err := s.consume(token.FATARROW, "expected '=>' in lambda expression"); err != nil {
		return nil, err
	}
	body, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	lam.Body = body
	return lam, nil
}
