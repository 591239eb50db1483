package parser

import "github.com/deepnoodle-ai/classgen/internal/token"

// Precedence order for operators, following JavaScript.
const (
	_ int = iota
	LOWEST
	BITOR   // |
	BITXOR  // ^
	BITAND  // &
	SHIFT   // << >> >>>
	SUM     // + or -
	PRODUCT // * / %
	POWER   // **
	PREFIX  // -X +X ~X
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.BITOR:     BITOR,
	token.CARET:     BITXOR,
	token.AMPERSAND: BITAND,
	token.LT_LT:     SHIFT,
	token.GT_GT:     SHIFT,
	token.GT_GT_GT:  SHIFT,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.ASTERISK:  PRODUCT,
	token.SLASH:     PRODUCT,
	token.MOD:       PRODUCT,
	token.POW:       POWER,
}
