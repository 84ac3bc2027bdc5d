package compiler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2b3o4o/kaleidoscope/internal/compiler/emitter"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/ir"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/ir/llvmgen"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/lexer"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/parser"
	"github.com/2b3o4o/kaleidoscope/internal/compiler/token"
)

// SessionOptions controls driver behavior.
type SessionOptions struct {
	// Diagnostics receives one line per parse or lowering failure
	// (default os.Stderr).
	Diagnostics io.Writer
	// Prompt, when non-empty, is printed to PromptTo before each
	// top-level unit is read.
	Prompt   string
	PromptTo io.Writer
	// OnUnit is invoked with the handle of each successfully lowered
	// unit.
	OnUnit func(ir.Function)
}

func (o *SessionOptions) normalize() SessionOptions {
	out := SessionOptions{}
	if o != nil {
		out = *o
	}
	if out.Diagnostics == nil {
		out.Diagnostics = os.Stderr
	}
	if out.PromptTo == nil {
		out.PromptTo = os.Stderr
	}
	return out
}

// Session is one compilation run: a token cursor over one source, a
// lowering pass against one backend, and a diagnostic sink. Sessions
// share no state, so independent ones can coexist.
type Session struct {
	parser   *parser.Parser
	emitter  *emitter.Emitter
	opts     SessionOptions
	errCount int
}

func NewSession(src io.Reader, backend ir.Builder, opts *SessionOptions) *Session {
	return &Session{
		parser:  parser.NewParser(lexer.NewLexer(src)),
		emitter: emitter.NewEmitter(backend),
		opts:    opts.normalize(),
	}
}

// ErrCount reports how many diagnostics the session has emitted.
func (s *Session) ErrCount() int {
	return s.errCount
}

// Run drives the source to end-of-input: definitions, externs, and
// bare expressions are parsed and lowered one unit at a time;
// statement separators (';') are skipped.
func (s *Session) Run() {
	s.prompt()
	s.parser.Advance()
	for {
		tok := s.parser.Current()
		switch {
		case tok.Type == token.TokenEOF:
			return
		case tok.IsPunct(';'):
			s.parser.Advance()
		case tok.Type == token.TokenDef:
			s.handleDefinition()
			s.prompt()
		case tok.Type == token.TokenExtern:
			s.handleExtern()
			s.prompt()
		default:
			s.handleTopLevelExpr()
			s.prompt()
		}
	}
}

func (s *Session) prompt() {
	if s.opts.Prompt != "" {
		fmt.Fprint(s.opts.PromptTo, s.opts.Prompt)
	}
}

func (s *Session) report(err error) {
	s.errCount++
	fmt.Fprintf(s.opts.Diagnostics, "Error: %v\n", err)
}

func (s *Session) lowered(fn ir.Function) {
	if s.opts.OnUnit != nil {
		s.opts.OnUnit(fn)
	}
}

func (s *Session) handleDefinition() {
	def, err := s.parser.ParseDefinition()
	if err != nil {
		// Recovery granularity is exactly one token: skip the token
		// the parse failed on and let the loop re-dispatch.
		s.report(err)
		s.parser.Advance()
		return
	}
	fn, err := s.emitter.EmitFunction(def)
	if err != nil {
		s.report(err)
		return
	}
	s.lowered(fn)
}

func (s *Session) handleExtern() {
	proto, err := s.parser.ParseExtern()
	if err != nil {
		s.report(err)
		s.parser.Advance()
		return
	}
	fn, err := s.emitter.EmitPrototype(proto)
	if err != nil {
		s.report(err)
		return
	}
	s.lowered(fn)
}

func (s *Session) handleTopLevelExpr() {
	def, err := s.parser.ParseTopLevelExpr()
	if err != nil {
		s.report(err)
		s.parser.Advance()
		return
	}
	fn, err := s.emitter.EmitFunction(def)
	if err != nil {
		s.report(err)
		return
	}
	s.lowered(fn)
}

// CompileAndWrite compiles a .kld source file and writes the textual
// LLVM module next to it under outDir, returning the output path.
func CompileAndWrite(srcPath, outDir string) (string, error) {
	irText, err := CompileFile(srcPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	outFile := filepath.Join(outDir, moduleName(srcPath)+".ll")
	return outFile, os.WriteFile(outFile, []byte(irText), 0o644)
}

// CompileFile compiles a .kld source file to textual LLVM IR.
func CompileFile(srcPath string) (string, error) {
	if err := validateExtension(srcPath); err != nil {
		return "", err
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	backend := llvmgen.New(moduleName(srcPath))
	defer backend.Dispose()

	sess := NewSession(f, backend, nil)
	sess.Run()
	if n := sess.ErrCount(); n > 0 {
		return "", fmt.Errorf("compilation failed with %d error(s)", n)
	}
	return backend.ModuleIR(), nil
}

func validateExtension(path string) error {
	if filepath.Ext(path) != ".kld" {
		return fmt.Errorf("source must have .kld extension")
	}
	return nil
}

func moduleName(srcPath string) string {
	return strings.TrimSuffix(filepath.Base(srcPath), ".kld")
}
