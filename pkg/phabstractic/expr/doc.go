/*
Package expr evaluates small boolean expressions over a map of named fields.

The event package uses it for expression filters, where the fields are an
event's provenance, tags, categories and payload.

# Syntax

	<expr> := <expr> 'or' <expr>
	        | <expr> 'and' <expr>
	        | 'not' <expr>
	        | '!' <expr>
	        | <value> <op> <value>
	        | <value>

	<op>    := '==' | '!=' | '<' | '>' | '<=' | '>=' | 'contains' | 'has'
	<value> := 'string' | "string" | number | true | false | null | identifier

"or" binds loosest, then "and". There are no parentheses.

== and != compare string forms. The ordering operators compare numbers.
contains and has test membership when the left side is a list and substring
containment otherwise.

# Examples

	class == 'Order' and tags has 'paid'
	namespace != 'internal' or stopped
	data > 100

# Compiled expressions

Compile rejects empty sources and unbalanced quotes up front:

	x, err := expr.Compile("tags has 'audit'")
	ok, err := x.Eval(fields)
*/
package expr
