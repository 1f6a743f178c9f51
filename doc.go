// Package bibdoc parses BibTeX and BibLaTeX files into an immutable,
// queryable document and converts field values to names, dates and lists
// on demand. It also performs sorting, deduplication and export of the
// parsed records.
//
// Parsing is all or nothing: the first lexical or structural error aborts
// it with a *ParseError. Crossref inheritance and field grammars are applied
// lazily by the getters on Entry, which report problems as *FieldError
// without affecting any other entry or field.
//
// Markup inside values is never interpreted: titles come back byte for byte
// as they appear in the source, after macro expansion.
package bibdoc

// BNF
// Database     ::= (Junk '@' Entry)*
// Entry        ::= Record
//               |  Comment
//               |  String
//               |  Preamble
// Comment      ::= "comment" [^\n]* \n            -- ignored
//               |  "comment" '{' .* '}'           -- (balanced), ignored
// String       ::= "string" Open Name '=' Value Close
// Preamble     ::= "preamble" Open Value Close
// Record       ::= Type Open Key ',' Fields Close
// Open, Close  ::= '{' '}' | '(' ')'
// Type         ::= Name                            -- lower-cased
// Key          ::= Name
// Fields       ::= (Field (',' Field)* ','?)?
// Field        ::= Name '=' Value                  -- name lower-cased
// Name         ::= [^\s\"#%'(),={}@]+
// Value        ::= Piece ('#' Piece)*
// Piece        ::= [0-9]+
//               |  Name                            -- macro reference
//               |  '"' ([^"{}] | '{' .* '}' | '\"')* '"'
//               |  '{' .* '}'                      -- (balanced)
