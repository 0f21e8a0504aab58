package cst

// Kind is the syntactic kind of a node.
type Kind uint8

const (
	// Token is a leaf owning exactly one token.
	Token Kind = iota
	// Error covers bytes that could not be parsed.
	Error

	File
	PackageDecl
	SubDecl
	UseDecl
	VarDecl

	PhaseBlock
	IfStmt
	ElsifClause
	ElseClause
	WhileStmt
	ForStmt
	ForeachStmt
	ContinueClause
	BlockStmt
	LabeledStmt
	ExprStmt
	EmptyStmt
	Modifier
	Block
	Condition
	Signature
	Attribute

	BinaryExpr
	UnaryExpr
	PostfixExpr
	TernaryExpr
	AssignExpr
	ListExpr
	ParenExpr
	AnonArray
	AnonHash
	AnonSub
	DoBlock
	EvalBlock
	FuncCall
	ListOpCall
	MethodCall
	DynamicCall
	ElementExpr
	DerefExpr
	ArgList
	ReturnExpr
	LoopCtl
	RequireExpr
	Variable
	Literal
	Bareword
	StringWord
	ClassName
	FileHandle

	kindCount
)

// Category groups node kinds.
type Category uint8

const (
	CatToken Category = iota
	CatError
	CatStatement
	CatDeclaration
	CatExpression
)

// Category returns the group of k. Every kind must be listed here.
func (k Kind) Category() Category {
	switch k {
	case Token:
		return CatToken
	case Error:
		return CatError
	case PackageDecl, SubDecl, UseDecl, VarDecl:
		return CatDeclaration
	case File, PhaseBlock, IfStmt, ElsifClause, ElseClause, WhileStmt, ForStmt, ForeachStmt,
		ContinueClause, BlockStmt, LabeledStmt, ExprStmt, EmptyStmt, Modifier, Block,
		Condition, Signature, Attribute:
		return CatStatement
	case BinaryExpr, UnaryExpr, PostfixExpr, TernaryExpr, AssignExpr, ListExpr, ParenExpr,
		AnonArray, AnonHash, AnonSub, DoBlock, EvalBlock, FuncCall, ListOpCall, MethodCall,
		DynamicCall, ElementExpr, DerefExpr, ArgList, ReturnExpr, LoopCtl, RequireExpr,
		Variable, Literal, Bareword, StringWord, ClassName, FileHandle:
		return CatExpression
	}
	panic("cst: kind without category: " + k.String())
}

var kindNames = [...]string{
	Token:          "Token",
	Error:          "Error",
	File:           "File",
	PackageDecl:    "PackageDecl",
	SubDecl:        "SubDecl",
	UseDecl:        "UseDecl",
	VarDecl:        "VarDecl",
	PhaseBlock:     "PhaseBlock",
	IfStmt:         "IfStmt",
	ElsifClause:    "ElsifClause",
	ElseClause:     "ElseClause",
	WhileStmt:      "WhileStmt",
	ForStmt:        "ForStmt",
	ForeachStmt:    "ForeachStmt",
	ContinueClause: "ContinueClause",
	BlockStmt:      "BlockStmt",
	LabeledStmt:    "LabeledStmt",
	ExprStmt:       "ExprStmt",
	EmptyStmt:      "EmptyStmt",
	Modifier:       "Modifier",
	Block:          "Block",
	Condition:      "Condition",
	Signature:      "Signature",
	Attribute:      "Attribute",
	BinaryExpr:     "BinaryExpr",
	UnaryExpr:      "UnaryExpr",
	PostfixExpr:    "PostfixExpr",
	TernaryExpr:    "TernaryExpr",
	AssignExpr:     "AssignExpr",
	ListExpr:       "ListExpr",
	ParenExpr:      "ParenExpr",
	AnonArray:      "AnonArray",
	AnonHash:       "AnonHash",
	AnonSub:        "AnonSub",
	DoBlock:        "DoBlock",
	EvalBlock:      "EvalBlock",
	FuncCall:       "FuncCall",
	ListOpCall:     "ListOpCall",
	MethodCall:     "MethodCall",
	DynamicCall:    "DynamicCall",
	ElementExpr:    "ElementExpr",
	DerefExpr:      "DerefExpr",
	ArgList:        "ArgList",
	ReturnExpr:     "ReturnExpr",
	LoopCtl:        "LoopCtl",
	RequireExpr:    "RequireExpr",
	Variable:       "Variable",
	Literal:        "Literal",
	Bareword:       "Bareword",
	StringWord:     "StringWord",
	ClassName:      "ClassName",
	FileHandle:     "FileHandle",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// KindCount returns the number of node kinds.
func KindCount() int { return int(kindCount) }
