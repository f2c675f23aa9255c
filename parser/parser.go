// Package parser recognizes the spec.md §4.2 grammar and, in the same
// pass, emits the textual IR of spec.md §4.3 — there is no separate
// AST stage (spec.md §9: "the AST is effectively inlined into the
// emitted IR string"). The overall shape (tokenize-ahead, two-token
// lookahead via current/peek, a long per-statement-kind switch) is
// grounded on the teacher's parser.Parser
// (lookbusy1344/arm-emulator parser/parser.go); the exact lowering of
// expressions, declarations, and control flow is grounded on
// original_source/src/main.rs's parse_expression/parse_statement
// family, the Rust implementation this spec was distilled from.
package parser

import (
	"fmt"
	"strings"

	"github.com/pebblelang/pebble/lexer"
)

// FunctionInfo records what the parser learned about one function,
// beyond the raw IR text: its name, parameter names, and the position
// of its `func` keyword. The loader hands it on as Result.Info.
type FunctionInfo struct {
	Name   string
	Params []string
	Pos    Position
}

// Program is everything Parse produces: the generated IR text plus
// the metadata spec.md's IR format itself has no room for.
type Program struct {
	IR        string
	Functions map[string]*FunctionInfo
}

// Parser holds state for one parse of one source file. Fresh-name
// counters are instance fields (spec.md §9's explicit recommendation),
// never package-level, so parsing multiple programs in one process
// (as the test suite does repeatedly) stays correct.
type Parser struct {
	filename string
	tokens   []lexer.Token
	pos      int

	functions *functionTable
	tempNum   int
	loopNum   int
	ifNum     int

	// MaxArraySize caps a single `int[N]` declaration's N, guarding
	// against a program trying to allocate an unreasonably large array.
	// Zero means unlimited. Set from config.Config's
	// Execution.MaxArraySize by the loader.
	MaxArraySize int
}

// New tokenizes source and returns a Parser ready to Parse it. A
// lexical error here is returned unwrapped, matching spec.md §7's
// "first error stops the stage" policy across both stages.
func New(source, filename string) (*Parser, error) {
	toks, err := lexer.TokenizeAll(source, filename)
	if err != nil {
		return nil, err
	}
	return &Parser{
		filename:  filename,
		tokens:    toks,
		functions: newFunctionTable(),
	}, nil
}

func (p *Parser) cur() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return p.tokens[len(p.tokens)-1] // always EOF
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt lexer.TokenType, what string) (lexer.Token, error) {
	if p.cur().Type != tt {
		return lexer.Token{}, newError(p.cur().Pos, "expected %s", what)
	}
	return p.advance(), nil
}

func (p *Parser) freshTemp() string {
	p.tempNum++
	return fmt.Sprintf("_temp%d", p.tempNum)
}

func (p *Parser) freshLoopLabels() (begin, end string) {
	p.loopNum++
	return fmt.Sprintf("beginloop%d", p.loopNum), fmt.Sprintf("endloop%d", p.loopNum)
}

func (p *Parser) freshIfLabels() (trueLabel, elseLabel, endLabel string) {
	p.ifNum++
	return fmt.Sprintf("iftrue%d", p.ifNum), fmt.Sprintf("else%d", p.ifNum), fmt.Sprintf("endif%d", p.ifNum)
}

// funcScope is the "Parser state (one instance per function)" of
// spec.md §3: a symbol table, an array table (separate namespace),
// and the loop label stack for break/continue.
type funcScope struct {
	symbols *symbolSet
	arrays  *symbolSet
	loops   loopLabels
}

func newFuncScope() *funcScope {
	return &funcScope{symbols: newSymbolSet(), arrays: newSymbolSet()}
}

// Parse parses the full program: zero or more functions, requiring a
// `main` function to exist (spec.md §4.2 static checks).
func (p *Parser) Parse() (*Program, error) {
	var ir strings.Builder
	functions := make(map[string]*FunctionInfo)

	for p.cur().Type != lexer.EOF {
		info, code, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		functions[info.Name] = info
		ir.WriteString(code)
	}

	if !p.functions.has("main") {
		return nil, newError(Position{Filename: p.filename}, "program is missing a 'main' function")
	}

	return &Program{IR: ir.String(), Functions: functions}, nil
}

// parseFunction parses `func name ( params ) { stmt* }` and emits
// `%func name (params)` ... body ... `%endfunc`.
func (p *Parser) parseFunction() (*FunctionInfo, string, error) {
	funcTok, err := p.expect(lexer.Func, "'func'")
	if err != nil {
		return nil, "", err
	}

	nameTok := p.cur()
	if nameTok.Type != lexer.Ident {
		return nil, "", newError(nameTok.Pos, "function name")
	}
	p.advance()

	if p.functions.has(nameTok.Literal) {
		return nil, "", newError(nameTok.Pos, "function %q already defined", nameTok.Literal)
	}

	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, "", err
	}

	scope := newFuncScope()
	var params []string
	var header strings.Builder
	header.WriteString(fmt.Sprintf("%%func %s (", nameTok.Literal))

	for p.cur().Type != lexer.RParen {
		if _, err := p.expect(lexer.IntKeyword, "'int'"); err != nil {
			return nil, "", err
		}
		paramTok := p.cur()
		if paramTok.Type != lexer.Ident {
			return nil, "", newError(paramTok.Pos, "parameter name")
		}
		p.advance()

		if scope.symbols.has(paramTok.Literal) {
			return nil, "", newError(paramTok.Pos, "duplicate parameter %q", paramTok.Literal)
		}
		scope.symbols.add(paramTok.Literal)
		params = append(params, paramTok.Literal)

		if len(params) > 1 {
			header.WriteString(", ")
		}
		header.WriteString(fmt.Sprintf("%%int %s", paramTok.Literal))

		if p.cur().Type == lexer.Comma {
			p.advance()
		} else if p.cur().Type != lexer.RParen {
			return nil, "", newError(p.cur().Pos, "',' or ')'")
		}
	}
	p.advance() // consume ')'
	header.WriteString(")\n")

	// Register the function before the body is parsed so that a
	// recursive call to itself resolves.
	p.functions.define(nameTok.Literal, len(params))

	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return nil, "", err
	}

	var body strings.Builder
	for p.cur().Type != lexer.RBrace {
		if p.cur().Type == lexer.EOF {
			return nil, "", newError(p.cur().Pos, "'}' to close function")
		}
		code, err := p.parseStatement(scope)
		if err != nil {
			return nil, "", err
		}
		body.WriteString(code)
	}
	p.advance() // consume '}'

	header.WriteString(body.String())
	header.WriteString("%endfunc\n\n")

	return &FunctionInfo{Name: nameTok.Literal, Params: params, Pos: funcTok.Pos}, header.String(), nil
}

// parseStatement parses one statement and returns its emitted IR.
func (p *Parser) parseStatement(scope *funcScope) (string, error) {
	switch p.cur().Type {
	case lexer.IntKeyword:
		return p.parseDeclarationStatement(scope)

	case lexer.Ident:
		return p.parseAssignStatement(scope)

	case lexer.Return:
		p.advance()
		e, err := p.parseExpression(scope)
		if err != nil {
			return "", err
		}
		if _, err := p.expect(lexer.Semicolon, "';' closing 'return'"); err != nil {
			return "", err
		}
		return e.code + fmt.Sprintf("%%ret %s\n", e.name), nil

	case lexer.Print:
		p.advance()
		if _, err := p.expect(lexer.LParen, "'(' after 'print'"); err != nil {
			return "", err
		}
		e, err := p.parseExpression(scope)
		if err != nil {
			return "", err
		}
		if _, err := p.expect(lexer.RParen, "')' closing 'print'"); err != nil {
			return "", err
		}
		if _, err := p.expect(lexer.Semicolon, "';' closing statement"); err != nil {
			return "", err
		}
		return e.code + fmt.Sprintf("%%out %s\n", e.name), nil

	case lexer.Read:
		p.advance()
		if _, err := p.expect(lexer.LParen, "'(' after 'read'"); err != nil {
			return "", err
		}
		e, err := p.parseExpression(scope)
		if err != nil {
			return "", err
		}
		if _, err := p.expect(lexer.RParen, "')' closing 'read'"); err != nil {
			return "", err
		}
		if _, err := p.expect(lexer.Semicolon, "';' closing statement"); err != nil {
			return "", err
		}
		return e.code + fmt.Sprintf("%%input %s\n", e.name), nil

	case lexer.Break:
		pos := p.cur().Pos
		p.advance()
		if _, err := p.expect(lexer.Semicolon, "';' after 'break'"); err != nil {
			return "", err
		}
		top, ok := scope.loops.top()
		if !ok {
			return "", newError(pos, "'break' statement not within a loop")
		}
		return fmt.Sprintf("%%jmp :%s\n", top.end), nil

	case lexer.Continue:
		pos := p.cur().Pos
		p.advance()
		if _, err := p.expect(lexer.Semicolon, "';' after 'continue'"); err != nil {
			return "", err
		}
		top, ok := scope.loops.top()
		if !ok {
			return "", newError(pos, "'continue' statement not within a loop")
		}
		return fmt.Sprintf("%%jmp :%s\n", top.begin), nil

	case lexer.While:
		return p.parseWhileStatement(scope)

	case lexer.If:
		return p.parseIfStatement(scope)

	default:
		return "", newError(p.cur().Pos, "a statement")
	}
}

// parseDeclarationStatement parses `int x;` or `int[N] a;`.
func (p *Parser) parseDeclarationStatement(scope *funcScope) (string, error) {
	code, err := p.parseDeclaration(scope)
	if err != nil {
		return "", err
	}
	if _, err := p.expect(lexer.Semicolon, "';' closing declaration"); err != nil {
		return "", err
	}
	return code, nil
}

func (p *Parser) parseDeclaration(scope *funcScope) (string, error) {
	if _, err := p.expect(lexer.IntKeyword, "'int'"); err != nil {
		return "", err
	}

	if p.cur().Type == lexer.LBracket {
		p.advance()
		sizeTok := p.cur()
		if sizeTok.Type != lexer.Number {
			return "", newError(sizeTok.Pos, "array size (a number)")
		}
		p.advance()
		if sizeTok.IntVal <= 0 {
			return "", newError(sizeTok.Pos, "array size must be positive")
		}
		if p.MaxArraySize > 0 && int(sizeTok.IntVal) > p.MaxArraySize {
			return "", newError(sizeTok.Pos, "array size %d exceeds the maximum of %d", sizeTok.IntVal, p.MaxArraySize)
		}
		if _, err := p.expect(lexer.RBracket, "']' closing array size"); err != nil {
			return "", err
		}
		nameTok := p.cur()
		if nameTok.Type != lexer.Ident {
			return "", newError(nameTok.Pos, "array name")
		}
		p.advance()
		if scope.arrays.has(nameTok.Literal) || scope.symbols.has(nameTok.Literal) {
			return "", newError(nameTok.Pos, "duplicate declaration of %q", nameTok.Literal)
		}
		scope.arrays.add(nameTok.Literal)
		return fmt.Sprintf("%%int[] %s, %d\n", nameTok.Literal, sizeTok.IntVal), nil
	}

	nameTok := p.cur()
	if nameTok.Type != lexer.Ident {
		return "", newError(nameTok.Pos, "variable name")
	}
	p.advance()
	if scope.symbols.has(nameTok.Literal) || scope.arrays.has(nameTok.Literal) {
		return "", newError(nameTok.Pos, "duplicate declaration of %q", nameTok.Literal)
	}
	scope.symbols.add(nameTok.Literal)
	return fmt.Sprintf("%%int %s\n", nameTok.Literal), nil
}

// parseAssignStatement parses `x = expr;` or `x[i] = expr;`.
func (p *Parser) parseAssignStatement(scope *funcScope) (string, error) {
	nameTok := p.advance() // consumed Ident

	if p.cur().Type == lexer.LBracket {
		if !scope.arrays.has(nameTok.Literal) {
			return "", newError(nameTok.Pos, "array %q not declared", nameTok.Literal)
		}
		p.advance()
		idx, err := p.parseExpression(scope)
		if err != nil {
			return "", err
		}
		if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
			return "", err
		}
		if _, err := p.expect(lexer.Assign, "'=' assignment operator"); err != nil {
			return "", err
		}
		val, err := p.parseExpression(scope)
		if err != nil {
			return "", err
		}
		if _, err := p.expect(lexer.Semicolon, "';' closing statement"); err != nil {
			return "", err
		}
		code := val.code + idx.code + fmt.Sprintf("%%mov [%s + %s], %s\n", nameTok.Literal, idx.name, val.name)
		return code, nil
	}

	if !scope.symbols.has(nameTok.Literal) {
		return "", newError(nameTok.Pos, "variable %q not declared", nameTok.Literal)
	}
	if _, err := p.expect(lexer.Assign, "'=' assignment operator"); err != nil {
		return "", err
	}
	val, err := p.parseExpression(scope)
	if err != nil {
		return "", err
	}
	if _, err := p.expect(lexer.Semicolon, "';' closing statement"); err != nil {
		return "", err
	}
	return val.code + fmt.Sprintf("%%mov %s, %s\n", nameTok.Literal, val.name), nil
}

// parseWhileStatement lowers `while bool_op { stmt* }` per spec.md §4.2.
func (p *Parser) parseWhileStatement(scope *funcScope) (string, error) {
	p.advance() // consume 'while'
	begin, end := p.freshLoopLabels()
	scope.loops.push(begin, end)
	defer scope.loops.pop()

	cond, err := p.parseBoolOp(scope)
	if err != nil {
		return "", err
	}

	var code strings.Builder
	code.WriteString(fmt.Sprintf(":%s\n", begin))
	code.WriteString(cond.code)
	code.WriteString(fmt.Sprintf("%%branch_ifn %s, :%s\n", cond.name, end))

	if _, err := p.expect(lexer.LBrace, "'{' after 'while' condition"); err != nil {
		return "", err
	}
	for p.cur().Type != lexer.RBrace {
		if p.cur().Type == lexer.EOF {
			return "", newError(p.cur().Pos, "'}' to close 'while' body")
		}
		stmt, err := p.parseStatement(scope)
		if err != nil {
			return "", err
		}
		code.WriteString(stmt)
	}
	p.advance() // consume '}'

	code.WriteString(fmt.Sprintf("%%jmp :%s\n", begin))
	code.WriteString(fmt.Sprintf(":%s\n", end))
	return code.String(), nil
}

// parseIfStatement lowers `if bool_op { stmt* } [else { stmt* }]` per spec.md §4.2.
func (p *Parser) parseIfStatement(scope *funcScope) (string, error) {
	p.advance() // consume 'if'
	trueLabel, elseLabel, endLabel := p.freshIfLabels()

	cond, err := p.parseBoolOp(scope)
	if err != nil {
		return "", err
	}

	var code strings.Builder
	code.WriteString(cond.code)
	code.WriteString(fmt.Sprintf("%%branch_if %s, :%s\n", cond.name, trueLabel))
	code.WriteString(fmt.Sprintf("%%jmp :%s\n", elseLabel))
	code.WriteString(fmt.Sprintf(":%s\n", trueLabel))

	if _, err := p.expect(lexer.LBrace, "'{' after 'if' condition"); err != nil {
		return "", err
	}
	for p.cur().Type != lexer.RBrace {
		if p.cur().Type == lexer.EOF {
			return "", newError(p.cur().Pos, "'}' to close 'if' body")
		}
		stmt, err := p.parseStatement(scope)
		if err != nil {
			return "", err
		}
		code.WriteString(stmt)
	}
	p.advance() // consume '}'

	code.WriteString(fmt.Sprintf("%%jmp :%s\n", endLabel))
	code.WriteString(fmt.Sprintf(":%s\n", elseLabel))

	if p.cur().Type == lexer.Else {
		p.advance()
		if _, err := p.expect(lexer.LBrace, "'{' after 'else'"); err != nil {
			return "", err
		}
		for p.cur().Type != lexer.RBrace {
			if p.cur().Type == lexer.EOF {
				return "", newError(p.cur().Pos, "'}' to close 'else' body")
			}
			stmt, err := p.parseStatement(scope)
			if err != nil {
				return "", err
			}
			code.WriteString(stmt)
		}
		p.advance() // consume '}'
	}

	code.WriteString(fmt.Sprintf(":%s\n", endLabel))
	return code.String(), nil
}

// expr is the (code, name) pair described by spec.md §4.2: code is the
// IR needed before the value is available, name is the operand
// holding it (a temp, a declared name, or an integer literal).
type expr struct {
	code string
	name string
}

// parseExpression handles the lowest-precedence tier: + and -.
func (p *Parser) parseExpression(scope *funcScope) (expr, error) {
	e, err := p.parseMulExpression(scope)
	if err != nil {
		return expr{}, err
	}
	for {
		var op string
		switch p.cur().Type {
		case lexer.Plus:
			op = "%add"
		case lexer.Minus:
			op = "%sub"
		default:
			return e, nil
		}
		p.advance()
		rhs, err := p.parseMulExpression(scope)
		if err != nil {
			return expr{}, err
		}
		temp := p.freshTemp()
		var code strings.Builder
		code.WriteString(e.code)
		code.WriteString(fmt.Sprintf("%%int %s\n", temp))
		code.WriteString(rhs.code)
		code.WriteString(fmt.Sprintf("%s %s, %s, %s\n", op, temp, e.name, rhs.name))
		e = expr{code: code.String(), name: temp}
	}
}

// parseMulExpression handles the tighter-binding tier: * / %.
func (p *Parser) parseMulExpression(scope *funcScope) (expr, error) {
	e, err := p.parseTerm(scope)
	if err != nil {
		return expr{}, err
	}
	for {
		var op string
		switch p.cur().Type {
		case lexer.Star:
			op = "%mult"
		case lexer.Slash:
			op = "%div"
		case lexer.Percent:
			op = "%mod"
		default:
			return e, nil
		}
		p.advance()
		rhs, err := p.parseTerm(scope)
		if err != nil {
			return expr{}, err
		}
		temp := p.freshTemp()
		var code strings.Builder
		code.WriteString(e.code)
		code.WriteString(fmt.Sprintf("%%int %s\n", temp))
		code.WriteString(rhs.code)
		code.WriteString(fmt.Sprintf("%s %s, %s, %s\n", op, temp, e.name, rhs.name))
		e = expr{code: code.String(), name: temp}
	}
}

// parseTerm handles NUM | IDENT | IDENT(args) | IDENT[expr] | (expr).
func (p *Parser) parseTerm(scope *funcScope) (expr, error) {
	tok := p.cur()

	switch tok.Type {
	case lexer.Number:
		p.advance()
		return expr{name: fmt.Sprintf("%d", tok.IntVal)}, nil

	case lexer.LParen:
		p.advance()
		e, err := p.parseExpression(scope)
		if err != nil {
			return expr{}, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return expr{}, err
		}
		return e, nil

	case lexer.Ident:
		p.advance()

		switch p.cur().Type {
		case lexer.LParen:
			return p.parseCall(scope, tok)
		case lexer.LBracket:
			return p.parseArrayLoad(scope, tok)
		default:
			if !scope.symbols.has(tok.Literal) {
				return expr{}, newError(tok.Pos, "undeclared variable %q", tok.Literal)
			}
			return expr{name: tok.Literal}, nil
		}

	default:
		return expr{}, newError(tok.Pos, "an expression")
	}
}

// parseCall lowers `f(a1, ..., ak)` per spec.md §4.2.
func (p *Parser) parseCall(scope *funcScope, nameTok lexer.Token) (expr, error) {
	if !p.functions.has(nameTok.Literal) {
		return expr{}, newError(nameTok.Pos, "call to undeclared function %q", nameTok.Literal)
	}
	p.advance() // consume '('

	var argsCode strings.Builder
	var argNames []string
	for p.cur().Type != lexer.RParen {
		arg, err := p.parseExpression(scope)
		if err != nil {
			return expr{}, err
		}
		argsCode.WriteString(arg.code)
		argNames = append(argNames, arg.name)

		if p.cur().Type == lexer.Comma {
			p.advance()
		} else if p.cur().Type != lexer.RParen {
			return expr{}, newError(p.cur().Pos, "',' or ')' in call")
		}
	}
	p.advance() // consume ')'

	wantArity := p.functions.arityOf(nameTok.Literal)
	if wantArity != len(argNames) {
		return expr{}, newError(nameTok.Pos, "function %q takes %d argument(s), got %d", nameTok.Literal, wantArity, len(argNames))
	}

	temp := p.freshTemp()
	var code strings.Builder
	code.WriteString(argsCode.String())
	code.WriteString(fmt.Sprintf("%%int %s\n", temp))
	code.WriteString(fmt.Sprintf("%%call %s, %s(%s)\n", temp, nameTok.Literal, strings.Join(argNames, ", ")))

	return expr{code: code.String(), name: temp}, nil
}

// parseArrayLoad lowers `a[i]` per spec.md §4.2.
func (p *Parser) parseArrayLoad(scope *funcScope, nameTok lexer.Token) (expr, error) {
	if !scope.arrays.has(nameTok.Literal) {
		return expr{}, newError(nameTok.Pos, "array %q not declared", nameTok.Literal)
	}
	p.advance() // consume '['
	idx, err := p.parseExpression(scope)
	if err != nil {
		return expr{}, err
	}
	if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
		return expr{}, err
	}

	temp := p.freshTemp()
	var code strings.Builder
	code.WriteString(idx.code)
	code.WriteString(fmt.Sprintf("%%int %s\n", temp))
	code.WriteString(fmt.Sprintf("%%mov %s, [%s + %s]\n", temp, nameTok.Literal, idx.name))

	return expr{code: code.String(), name: temp}, nil
}

// parseBoolOp lowers `term rel_op term` per spec.md §4.2's bool_op rule.
func (p *Parser) parseBoolOp(scope *funcScope) (expr, error) {
	lhs, err := p.parseTerm(scope)
	if err != nil {
		return expr{}, err
	}

	var op string
	switch p.cur().Type {
	case lexer.Eq:
		op = "%eq"
	case lexer.Neq:
		op = "%neq"
	case lexer.Lt:
		op = "%lt"
	case lexer.Le:
		op = "%le"
	case lexer.Gt:
		op = "%gt"
	case lexer.Ge:
		op = "%ge"
	default:
		return expr{}, newError(p.cur().Pos, "a comparison operator (==, !=, <, <=, >, >=)")
	}
	p.advance()

	rhs, err := p.parseTerm(scope)
	if err != nil {
		return expr{}, err
	}

	temp := p.freshTemp()
	var code strings.Builder
	code.WriteString(lhs.code)
	code.WriteString(rhs.code)
	code.WriteString(fmt.Sprintf("%%int %s\n", temp))
	code.WriteString(fmt.Sprintf("%s %s, %s, %s\n", op, temp, lhs.name, rhs.name))

	return expr{code: code.String(), name: temp}, nil
}
