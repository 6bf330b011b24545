package query

// Group is a parenthesized region of the query. Start and End are byte
// offsets covering both parentheses; an unclosed group runs to the end of
// the input and never holds a clause.
type Group struct {
	Start    int
	End      int
	Closed   bool
	Tokens   []Token // direct content, nested groups excluded
	Children []*Group
	Clause   Clause
}

// Query is the parse tree of one query text
type Query struct {
	Input  string
	Tokens []Token
	Groups []*Group
}

// Walk visits every group depth-first in source order. Returning false from
// fn skips the group's children.
func (q *Query) Walk(fn func(*Group) bool) {
	var walk func([]*Group)
	walk = func(gs []*Group) {
		for _, g := range gs {
			if fn(g) {
				walk(g.Children)
			}
		}
	}
	walk(q.Groups)
}

// Parser builds a Query from text
type Parser struct {
	input   string
	tokens  []Token
	pos     int
	current Token
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{input: input, tokens: Tokenize(input)}
	p.current = p.tokens[0]
	return p
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.current = p.tokens[p.pos]
}

// Parse parses input into groups. It never fails: stray closing parentheses
// are ignored and unclosed groups are kept as plain text.
func Parse(input string) *Query {
	return NewParser(input).Parse()
}

// Parse runs the parser over its whole input
func (p *Parser) Parse() *Query {
	q := &Query{Input: p.input, Tokens: p.tokens}
	for p.current.Type != EOF {
		if p.current.Type == LPAREN {
			q.Groups = append(q.Groups, p.parseGroup())
			continue
		}
		p.nextToken()
	}
	return q
}

// parseGroup consumes a group starting at the current LPAREN. A group whose
// direct content is a single flat token run is offered to the clause
// productions; anything else is recursed into.
func (p *Parser) parseGroup() *Group {
	g := &Group{Start: p.current.Pos}
	p.nextToken()

	for {
		switch p.current.Type {
		case EOF:
			g.End = len(p.input)
			return g
		case RPAREN:
			g.End = p.current.End
			g.Closed = true
			p.nextToken()
			if len(g.Children) == 0 {
				if c, ok := matchClause(g.Tokens); ok {
					g.Clause = c
				}
			}
			return g
		case LPAREN:
			g.Children = append(g.Children, p.parseGroup())
		default:
			g.Tokens = append(g.Tokens, p.current)
			p.nextToken()
		}
	}
}
