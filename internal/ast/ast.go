// Package ast defines the Spice abstract syntax tree. Nodes form a closed
// set of Go structs discriminated by type switch, rather than a visitor
// double-dispatch hierarchy: every pass over the tree matches on concrete
// node type directly.
package ast

import "github.com/spicelang/spicec/internal/token"

// TokenProvider is implemented by every node; it exposes the token the
// node originates from, for diagnostics.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the root marker interface for any AST node.
type Node interface {
	TokenProvider
	node()
}

// Statement is any node usable in statement position.
type Statement interface {
	Node
	statementNode()
}

// Expression is any node usable in expression position.
type Expression interface {
	Node
	expressionNode()
}

// Declaration is any top-level or class-body declaration.
type Declaration interface {
	Statement
	declarationNode()
}

// Module is the root of a parsed compilation unit.
type Module struct {
	Token token.Token
	Body  []Statement
}

func (m *Module) GetToken() token.Token { return m.Token }
func (m *Module) node()                 {}

// ---- Type annotations ----

// TypeParameter is a generic type parameter with an optional bound, e.g.
// `<T extends Comparable>`.
type TypeParameter struct {
	Token token.Token
	Name  string
	Bound string // "" if unbounded
}

func (p *TypeParameter) GetToken() token.Token { return p.Token }

// Parameter is a single method/function parameter.
type Parameter struct {
	Token          token.Token
	Name           string
	TypeAnnotation string // opaque surface-text annotation, "" if absent
	Default        Expression
}

func (p *Parameter) GetToken() token.Token { return p.Token }

// ---- Declarations ----

// InterfaceDeclaration declares an interface with method signatures only.
type InterfaceDeclaration struct {
	Token             token.Token
	Name              string
	Methods           []*MethodSignature
	BaseInterfaces    []string
	CompilerFlags     []string
}

func (d *InterfaceDeclaration) GetToken() token.Token { return d.Token }
func (d *InterfaceDeclaration) node()                 {}
func (d *InterfaceDeclaration) statementNode()        {}
func (d *InterfaceDeclaration) declarationNode()      {}

// MethodSignature is an interface method declaration with no body.
type MethodSignature struct {
	Token      token.Token
	Name       string
	Params     []*Parameter
	ReturnType string
}

func (m *MethodSignature) GetToken() token.Token { return m.Token }

// ClassDeclaration declares a class.
type ClassDeclaration struct {
	Token          token.Token
	Name           string
	TypeParameters []*TypeParameter
	Bases          []string
	Interfaces     []string
	IsAbstract     bool
	IsFinal        bool
	CompilerFlags  []string
	Body           []Declaration
}

func (d *ClassDeclaration) GetToken() token.Token { return d.Token }
func (d *ClassDeclaration) node()                 {}
func (d *ClassDeclaration) statementNode()        {}
func (d *ClassDeclaration) declarationNode()      {}

// FunctionDeclaration declares a free function or class method.
type FunctionDeclaration struct {
	Token          token.Token
	Name           string
	Params         []*Parameter
	ReturnType     string
	TypeParameters []*TypeParameter
	IsStatic       bool
	IsAbstract     bool
	IsFinal        bool
	Decorators     []string
	CompilerFlags  []string
	Body           []Statement // a single PassStatement for ';'-terminated (abstract/signature-only) methods
}

func (d *FunctionDeclaration) GetToken() token.Token { return d.Token }
func (d *FunctionDeclaration) node()                 {}
func (d *FunctionDeclaration) statementNode()        {}
func (d *FunctionDeclaration) declarationNode()      {}

// DataField is a single field in a data class header.
type DataField struct {
	Token          token.Token
	Name           string
	TypeAnnotation string
	Default        Expression
}

func (f *DataField) GetToken() token.Token { return f.Token }

// DataClassDeclaration declares a data class.
type DataClassDeclaration struct {
	Token          token.Token
	Name           string
	Fields         []*DataField
	TypeParameters []*TypeParameter
	Bases          []string
	CompilerFlags  []string
	Body           []Declaration // extra methods in the data class body
}

func (d *DataClassDeclaration) GetToken() token.Token { return d.Token }
func (d *DataClassDeclaration) node()                 {}
func (d *DataClassDeclaration) statementNode()        {}
func (d *DataClassDeclaration) declarationNode()      {}

// EnumMember is a single enum value, optionally with constructor arguments.
type EnumMember struct {
	Token token.Token
	Name  string
	Args  []Expression
}

func (m *EnumMember) GetToken() token.Token { return m.Token }

// EnumDeclaration declares an enum.
type EnumDeclaration struct {
	Token         token.Token
	Name          string
	Members       []*EnumMember
	Body          []Declaration // methods defined on the enum
	CompilerFlags []string
}

func (d *EnumDeclaration) GetToken() token.Token { return d.Token }
func (d *EnumDeclaration) node()                 {}
func (d *EnumDeclaration) statementNode()        {}
func (d *EnumDeclaration) declarationNode()      {}

// ---- Statements ----

// BlockStatement is a `{ ... }` group of statements.
type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (s *BlockStatement) GetToken() token.Token { return s.Token }
func (s *BlockStatement) node()                 {}
func (s *BlockStatement) statementNode()        {}

// ExpressionStatement wraps an expression used as a statement.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (s *ExpressionStatement) GetToken() token.Token { return s.Token }
func (s *ExpressionStatement) node()                 {}
func (s *ExpressionStatement) statementNode()        {}

// PassStatement is a no-op placeholder statement.
type PassStatement struct {
	Token token.Token
}

func (s *PassStatement) GetToken() token.Token { return s.Token }
func (s *PassStatement) node()                 {}
func (s *PassStatement) statementNode()        {}

// ReturnStatement returns from the enclosing function, optionally with a value.
type ReturnStatement struct {
	Token token.Token
	Value Expression // nil for bare `return;`
}

func (s *ReturnStatement) GetToken() token.Token { return s.Token }
func (s *ReturnStatement) node()                 {}
func (s *ReturnStatement) statementNode()        {}

// IfStatement is a conditional with an optional else branch (itself an
// IfStatement for `else if`, or a BlockStatement for a plain `else`).
type IfStatement struct {
	Token     token.Token
	Condition Expression
	Then      *BlockStatement
	Else      Statement // *BlockStatement, *IfStatement, or nil
}

func (s *IfStatement) GetToken() token.Token { return s.Token }
func (s *IfStatement) node()                 {}
func (s *IfStatement) statementNode()        {}

// WhileStatement is a condition-guarded loop.
type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (s *WhileStatement) GetToken() token.Token { return s.Token }
func (s *WhileStatement) node()                 {}
func (s *WhileStatement) statementNode()        {}

// ForStatement is a `for target in iter { ... }` loop.
type ForStatement struct {
	Token  token.Token
	Target string
	Iter   Expression
	Body   *BlockStatement
}

func (s *ForStatement) GetToken() token.Token { return s.Token }
func (s *ForStatement) node()                 {}
func (s *ForStatement) statementNode()        {}

// CaseClause is one `case value { ... }` arm of a switch.
type CaseClause struct {
	Token token.Token
	Value Expression
	Body  []Statement
}

func (c *CaseClause) GetToken() token.Token { return c.Token }

// SwitchStatement is a structural switch over an expression.
type SwitchStatement struct {
	Token      token.Token
	Expression Expression
	Cases      []*CaseClause
	Default    []Statement // nil if no default clause
}

func (s *SwitchStatement) GetToken() token.Token { return s.Token }
func (s *SwitchStatement) node()                 {}
func (s *SwitchStatement) statementNode()        {}

// RaiseStatement raises an exception value.
type RaiseStatement struct {
	Token     token.Token
	Exception Expression
}

func (s *RaiseStatement) GetToken() token.Token { return s.Token }
func (s *RaiseStatement) node()                 {}
func (s *RaiseStatement) statementNode()        {}

// ImportStatement covers both `import module` and
// `from module import name [as alias], ...`.
type ImportStatement struct {
	Token      token.Token
	Module     string
	Names      []string // empty for a bare `import module`
	Aliases    []string // parallel to Names; "" where no alias given
	IsFrom     bool
}

func (s *ImportStatement) GetToken() token.Token { return s.Token }
func (s *ImportStatement) node()                 {}
func (s *ImportStatement) statementNode()        {}

// FinalDeclaration declares a binding that cannot be reassigned.
type FinalDeclaration struct {
	Token          token.Token
	Target         string
	TypeAnnotation string
	Value          Expression
}

func (s *FinalDeclaration) GetToken() token.Token { return s.Token }
func (s *FinalDeclaration) node()                 {}
func (s *FinalDeclaration) statementNode()        {}

// ---- Expressions ----

// AssignmentExpression unifies simple (`x = v`), compound (`x += v`), and
// typed (`x: T = v`) assignment, mirroring the original grammar's single
// production for all three forms.
type AssignmentExpression struct {
	Token          token.Token
	Target         Expression
	Operator       token.Kind // ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN
	TypeAnnotation string     // "" unless this is a typed declaration
	Value          Expression
}

func (e *AssignmentExpression) GetToken() token.Token { return e.Token }
func (e *AssignmentExpression) node()                 {}
func (e *AssignmentExpression) expressionNode()       {}

// IdentifierExpression references a bound name.
type IdentifierExpression struct {
	Token token.Token
	Name  string
}

func (e *IdentifierExpression) GetToken() token.Token { return e.Token }
func (e *IdentifierExpression) node()                 {}
func (e *IdentifierExpression) expressionNode()       {}

// AttributeExpression accesses `object.attribute`.
type AttributeExpression struct {
	Token     token.Token
	Object    Expression
	Attribute string
}

func (e *AttributeExpression) GetToken() token.Token { return e.Token }
func (e *AttributeExpression) node()                 {}
func (e *AttributeExpression) expressionNode()       {}

// LiteralKind discriminates the literal's origin type for inference.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralFString
	LiteralNumber
	LiteralBoolean
	LiteralNone
)

// LiteralExpression is a literal string/number/boolean/none value.
type LiteralExpression struct {
	Token token.Token
	Value string // surface text, preserved verbatim for re-emission
	Kind  LiteralKind
}

func (e *LiteralExpression) GetToken() token.Token { return e.Token }
func (e *LiteralExpression) node()                 {}
func (e *LiteralExpression) expressionNode()       {}

// ArgumentExpression is a call argument, optionally keyword-named.
type ArgumentExpression struct {
	Token token.Token
	Name  string // "" for a positional argument
	Value Expression
}

func (e *ArgumentExpression) GetToken() token.Token { return e.Token }
func (e *ArgumentExpression) node()                 {}
func (e *ArgumentExpression) expressionNode()       {}

// CallExpression invokes a callee with arguments.
type CallExpression struct {
	Token     token.Token
	Callee    Expression
	Arguments []*ArgumentExpression
}

func (e *CallExpression) GetToken() token.Token { return e.Token }
func (e *CallExpression) node()                 {}
func (e *CallExpression) expressionNode()       {}

// LogicalExpression is `and`/`or` with short-circuit semantics.
type LogicalExpression struct {
	Token    token.Token
	Operator token.Kind
	Left     Expression
	Right    Expression
}

func (e *LogicalExpression) GetToken() token.Token { return e.Token }
func (e *LogicalExpression) node()                 {}
func (e *LogicalExpression) expressionNode()       {}

// UnaryExpression is a prefix unary operation.
type UnaryExpression struct {
	Token    token.Token
	Operator token.Kind
	Operand  Expression
}

func (e *UnaryExpression) GetToken() token.Token { return e.Token }
func (e *UnaryExpression) node()                 {}
func (e *UnaryExpression) expressionNode()       {}

// BinaryExpression is an infix binary operation.
type BinaryExpression struct {
	Token    token.Token
	Operator token.Kind
	Left     Expression
	Right    Expression
}

func (e *BinaryExpression) GetToken() token.Token { return e.Token }
func (e *BinaryExpression) node()                 {}
func (e *BinaryExpression) expressionNode()       {}

// LambdaExpression is an anonymous function expression.
type LambdaExpression struct {
	Token      token.Token
	Params     []*Parameter
	Body       Expression
	ReturnType string
}

func (e *LambdaExpression) GetToken() token.Token { return e.Token }
func (e *LambdaExpression) node()                 {}
func (e *LambdaExpression) expressionNode()       {}

// DictEntry is a single `key: value` pair inside a dict literal.
type DictEntry struct {
	Token token.Token
	Key   Expression
	Value Expression
}

func (e *DictEntry) GetToken() token.Token { return e.Token }

// DictExpression is a `{ key: value, ... }` literal.
type DictExpression struct {
	Token   token.Token
	Entries []*DictEntry
}

func (e *DictExpression) GetToken() token.Token { return e.Token }
func (e *DictExpression) node()                 {}
func (e *DictExpression) expressionNode()       {}

// ListExpression is a `[ elem, ... ]` literal.
type ListExpression struct {
	Token    token.Token
	Elements []Expression
}

func (e *ListExpression) GetToken() token.Token { return e.Token }
func (e *ListExpression) node()                 {}
func (e *ListExpression) expressionNode()       {}

// SubscriptExpression is `object[index]`.
type SubscriptExpression struct {
	Token  token.Token
	Object Expression
	Index  Expression
}

func (e *SubscriptExpression) GetToken() token.Token { return e.Token }
func (e *SubscriptExpression) node()                 {}
func (e *SubscriptExpression) expressionNode()       {}

// SliceExpression is `object[start:stop:step]`; any part may be nil.
type SliceExpression struct {
	Token  token.Token
	Object Expression
	Start  Expression
	Stop   Expression
	Step   Expression
}

func (e *SliceExpression) GetToken() token.Token { return e.Token }
func (e *SliceExpression) node()                 {}
func (e *SliceExpression) expressionNode()       {}

// ComprehensionKind distinguishes list/dict comprehensions.
type ComprehensionKind int

const (
	ComprehensionList ComprehensionKind = iota
	ComprehensionDict
)

// ComprehensionExpression is a `[elem for target in iter if cond]` style
// comprehension; Key is set only for ComprehensionDict.
type ComprehensionExpression struct {
	Token     token.Token
	Kind      ComprehensionKind
	Element   Expression
	Key       Expression // non-nil only for dict comprehensions
	Target    string
	Iter      Expression
	Condition Expression // nil if no filter clause
}

func (e *ComprehensionExpression) GetToken() token.Token { return e.Token }
func (e *ComprehensionExpression) node()                 {}
func (e *ComprehensionExpression) expressionNode()       {}
