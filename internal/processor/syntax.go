package processor

import (
	"unifold/internal/node"
	"unifold/internal/vfile"
)

// Parser turns text into a tree.
type Parser interface {
	Parse(text string, file *vfile.File) (node.Node, error)
}

// Compiler turns a tree into output: usually a string or []byte, but any
// value is allowed for compilers that do not serialize.
type Compiler interface {
	Compile(tree node.Node, file *vfile.File) (any, error)
}

// ParserFunc is a parser called directly.
type ParserFunc func(text string, file *vfile.File) (node.Node, error)

func (f ParserFunc) Parse(text string, file *vfile.File) (node.Node, error) {
	return f(text, file)
}

// Parsing is a parser instance built for one document.
type Parsing interface {
	Parse() (node.Node, error)
}

// ParserClass constructs a Parsing per document and calls its Parse.
type ParserClass func(text string, file *vfile.File) Parsing

func (c ParserClass) Parse(text string, file *vfile.File) (node.Node, error) {
	return c(text, file).Parse()
}

// CompilerFunc is a compiler called directly.
type CompilerFunc func(tree node.Node, file *vfile.File) (any, error)

func (f CompilerFunc) Compile(tree node.Node, file *vfile.File) (any, error) {
	return f(tree, file)
}

// Compiling is a compiler instance built for one tree.
type Compiling interface {
	Compile() (any, error)
}

// CompilerClass constructs a Compiling per tree and calls its Compile.
type CompilerClass func(tree node.Node, file *vfile.File) Compiling

func (c CompilerClass) Compile(tree node.Node, file *vfile.File) (any, error) {
	return c(tree, file).Compile()
}
