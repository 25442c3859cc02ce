// Package tmpl compiles markup with {expression} placeholders into reusable
// renderers.
//
// # Placeholders
//
// A placeholder is an expression between braces. Its value is rendered with
// HTML tags stripped unless the expression starts with '!':
//
//	{user.name}          escaped lookup of a dotted path in the data
//	{!user.bio}          the same value, unescaped
//	{price*qty+1}        arithmetic with + - * / and parentheses
//	{'Hi '+name}         '+' concatenates when either side is a string
//	{#site.title}        reference resolved against the context's Scope
//	{n|repeat,'*'}       pipe the value into a function with extra arguments
//	{a|f,1|g,2}          pipes chain left to right: g(f(a,1),2)
//	{list|range,'(id),'} render a sub-template per element
//
// Missing data renders as empty text. A pipe into an unregistered function
// renders [NoHandler].
//
// # Compiling
//
// Templates are compiled once per (purpose, id) key and cached for the life
// of the [Cache]:
//
//	t := tmpl.Compile("page", "greeting", "Hello, {name}!")
//	out := t.Execute(map[string]any{"name": "Ada"})
//
// A later Compile with the same key returns the cached template even when the
// text differs.
//
// # Functions
//
// A [Registry] starts with the built-in functions default, empty, case,
// format_money, format_date, fixed, repeat, range, filter_html and left.
// [Registry.Register] adds or replaces functions; a [Context] selects the
// registry and [Scope] used for one render.
package tmpl
