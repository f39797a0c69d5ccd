package template

import (
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/mailgun/raymond/v2"
	"github.com/mailgun/raymond/v2/lexer"
)

// Hash keys and names the engine writes into normalized helper calls
const (
	argcKey    = "__argc"
	blockKey   = "__block"
	noneArg    = "__none"
	listHelper = "__list"
)

var optionsType = reflect.TypeOf((*raymond.Options)(nil))

// signature is the calling convention of a registered helper
type signature struct {
	// params is the number of positional parameters, options excluded
	params int
	// variadic collects parameters from params-1 on into one list
	variadic bool
}

func signatureOf(fn interface{}, variadic bool) signature {
	t := reflect.TypeOf(fn)
	n := t.NumIn()
	if n > 0 && t.In(n-1) == optionsType {
		n--
	}
	return signature{params: n, variadic: variadic}
}

// callSite is a helper invocation found in template source
type callSite struct {
	params []int // byte offset of each positional parameter
	hash   int   // byte offset of the first hash pair, or -1
	end    int   // byte offset of the closing delimiter
}

type edit struct {
	pos  int
	text string
}

// normalize rewrites every call to a known helper so that it matches the
// helper's fixed signature: missing parameters are padded, variadic tails are
// wrapped in a list and the call records how many parameters were written
// (__argc) and whether it opened a block (__block). Source the lexer rejects
// is returned unchanged for the parser to report.
func normalize(src string, signatures map[string]signature) string {
	tokens := lexer.Collect(src)
	if n := len(tokens); n == 0 || tokens[n-1].Kind == lexer.TokenError {
		return src
	}

	var edits []edit
	for i := 0; i+1 < len(tokens); i++ {
		open := tokens[i].Kind
		if !opensCall(open) {
			continue
		}

		name := tokens[i+1]
		if name.Kind != lexer.TokenID {
			continue
		}
		if i+2 < len(tokens) && tokens[i+2].Kind == lexer.TokenSep {
			continue
		}

		sig, ok := signatures[name.Val]
		if !ok {
			continue
		}

		site, ok := scanCall(src, tokens, i+2)
		if !ok {
			return src
		}
		edits = append(edits, site.rewrite(sig, opensBlock(open))...)
	}

	if len(edits) == 0 {
		return src
	}
	return apply(src, edits)
}

func opensCall(k lexer.TokenKind) bool {
	switch k {
	case lexer.TokenOpen, lexer.TokenOpenUnescaped, lexer.TokenOpenSexpr:
		return true
	}
	return opensBlock(k)
}

func opensBlock(k lexer.TokenKind) bool {
	switch k {
	case lexer.TokenOpenBlock, lexer.TokenOpenInverse, lexer.TokenOpenInverseChain:
		return true
	}
	return false
}

// scanCall reads the parameters of the call whose first parameter token is at from
func scanCall(src string, tokens []lexer.Token, from int) (callSite, bool) {
	site := callSite{hash: -1}
	depth := 0

	for i := from; i < len(tokens); i++ {
		tok := tokens[i]

		switch tok.Kind {
		case lexer.TokenEOF, lexer.TokenError:
			return site, false
		case lexer.TokenOpenSexpr:
			if depth == 0 && site.hash < 0 {
				site.params = append(site.params, tok.Pos)
			}
			depth++
			continue
		case lexer.TokenCloseSexpr:
			if depth == 0 {
				site.end = tok.Pos
				return site, true
			}
			depth--
			continue
		case lexer.TokenClose, lexer.TokenCloseUnescaped, lexer.TokenOpenBlockParams:
			site.end = tok.Pos
			return site, true
		}

		if depth > 0 || site.hash >= 0 {
			continue
		}

		switch tok.Kind {
		case lexer.TokenID:
			if i+1 < len(tokens) && tokens[i+1].Kind == lexer.TokenEquals {
				site.hash = tok.Pos
				continue
			}
			prev := tokens[i-1].Kind
			if prev == lexer.TokenSep || prev == lexer.TokenData {
				continue
			}
			site.params = append(site.params, start(src, tok))
		case lexer.TokenString, lexer.TokenNumber, lexer.TokenBoolean, lexer.TokenData:
			site.params = append(site.params, start(src, tok))
		}
	}

	return site, false
}

// start is the offset of the first byte of tok in src. String and path
// literal tokens are reported past their opening delimiter.
func start(src string, tok lexer.Token) int {
	if tok.Pos == 0 {
		return 0
	}
	switch src[tok.Pos-1] {
	case '"', '\'':
		if tok.Kind == lexer.TokenString {
			return tok.Pos - 1
		}
	case '[':
		if tok.Kind == lexer.TokenID {
			return tok.Pos - 1
		}
	}
	return tok.Pos
}

func (s callSite) rewrite(sig signature, block bool) []edit {
	argc := len(s.params)
	tail := s.end
	if s.hash >= 0 {
		tail = s.hash
	}

	var edits []edit
	written := argc
	if sig.variadic && argc >= sig.params {
		edits = append(edits,
			edit{pos: s.params[sig.params-1], text: "(" + listHelper + " "},
			edit{pos: tail, text: ") "},
		)
		written = sig.params
	}
	if missing := sig.params - written; missing > 0 {
		edits = append(edits, edit{pos: tail, text: strings.Repeat(" "+noneArg, missing) + " "})
	}

	markers := " " + argcKey + "=" + strconv.Itoa(argc)
	if block {
		markers += " " + blockKey + "=true"
	}
	return append(edits, edit{pos: s.end, text: markers + " "})
}

func apply(src string, edits []edit) string {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].pos < edits[j].pos
	})

	var b strings.Builder
	b.Grow(len(src) + 32*len(edits))

	last := 0
	for _, e := range edits {
		b.WriteString(src[last:e.pos])
		b.WriteString(e.text)
		last = e.pos
	}
	b.WriteString(src[last:])

	return b.String()
}
