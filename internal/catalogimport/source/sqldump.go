package source

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/smallbiznis/vitrine/internal/catalogimport/domain"
)

var errSyntax = errors.New("sql_syntax")

// ReadSQL extracts the rows of every INSERT statement that names its
// columns. Statements without a column list cannot be mapped and are skipped.
// NULL becomes an empty cell. Row numbers are the dump line of each tuple.
func ReadSQL(r io.Reader) ([]domain.RawRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}

	s := &scanner{src: string(data), line: 1}
	var rows []domain.RawRow
	var missingErr error
	found := false
	for s.seekInsert() {
		if _, err := s.identifier(); err != nil {
			return nil, s.wrap(err)
		}
		s.skipSpace()
		if s.peek() != '(' {
			s.skipStatement()
			continue
		}
		columns, err := s.columnList()
		if err != nil {
			return nil, s.wrap(err)
		}
		s.skipSpace()
		if !s.keyword("VALUES") && !s.keyword("VALUE") {
			return nil, s.wrap(errSyntax)
		}

		t, err := newTable(columns)
		if err != nil {
			missingErr = err
			s.skipStatement()
			continue
		}
		found = true

		for {
			s.skipSpace()
			line := s.line
			tuple, err := s.tuple()
			if err != nil {
				return nil, s.wrap(err)
			}
			t.add(line, tuple)
			s.skipSpace()
			if s.peek() != ',' {
				break
			}
			s.advance()
		}
		rows = append(rows, t.rows...)
		s.skipStatement()
	}

	if !found {
		if missingErr != nil {
			return nil, missingErr
		}
		return nil, domain.ErrEmptySource
	}
	return rows, nil
}

type scanner struct {
	src  string
	pos  int
	line int
}

func (s *scanner) wrap(err error) error {
	return fmt.Errorf("parse dump at line %d: %w", s.line, err)
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
	}
	return c
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		switch c := s.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.advance()
		case strings.HasPrefix(s.src[s.pos:], "--") || c == '#':
			s.skipLine()
		case strings.HasPrefix(s.src[s.pos:], "/*"):
			s.skipBlockComment()
		default:
			return
		}
	}
}

func (s *scanner) skipLine() {
	for !s.eof() && s.advance() != '\n' {
	}
}

func (s *scanner) skipBlockComment() {
	s.advance()
	s.advance()
	for !s.eof() {
		if strings.HasPrefix(s.src[s.pos:], "*/") {
			s.advance()
			s.advance()
			return
		}
		s.advance()
	}
}

// keyword consumes word when it is next, case-insensitively, and not
// followed by an identifier character.
func (s *scanner) keyword(word string) bool {
	end := s.pos + len(word)
	if end > len(s.src) || !strings.EqualFold(s.src[s.pos:end], word) {
		return false
	}
	if end < len(s.src) && isIdentChar(s.src[end]) {
		return false
	}
	for s.pos < end {
		s.advance()
	}
	return true
}

// seekInsert moves past the next "INSERT [IGNORE] INTO" found outside
// strings and comments.
func (s *scanner) seekInsert() bool {
	for {
		s.skipSpace()
		if s.eof() {
			return false
		}
		atBoundary := s.pos == 0 || !isIdentChar(s.src[s.pos-1])
		if atBoundary && s.keyword("INSERT") {
			s.skipSpace()
			s.keyword("IGNORE")
			s.skipSpace()
			if s.keyword("INTO") {
				s.skipSpace()
				return true
			}
			continue
		}
		switch c := s.peek(); c {
		case '\'', '"', '`':
			s.quoted(c)
		default:
			s.advance()
		}
	}
}

// skipStatement moves past the terminating semicolon of the current
// statement.
func (s *scanner) skipStatement() {
	for !s.eof() {
		switch c := s.peek(); c {
		case ';':
			s.advance()
			return
		case '\'', '"', '`':
			s.quoted(c)
		default:
			s.advance()
		}
	}
}

// identifier reads a possibly quoted, possibly schema qualified name and
// returns its last part.
func (s *scanner) identifier() (string, error) {
	var name string
	for {
		switch c := s.peek(); {
		case c == '`' || c == '"':
			name = s.quoted(c)
		case isIdentChar(c):
			start := s.pos
			for !s.eof() && isIdentChar(s.peek()) {
				s.advance()
			}
			name = s.src[start:s.pos]
		default:
			return "", errSyntax
		}
		if s.peek() != '.' {
			return name, nil
		}
		s.advance()
	}
}

func (s *scanner) columnList() ([]string, error) {
	s.advance()
	var columns []string
	for {
		s.skipSpace()
		name, err := s.identifier()
		if err != nil {
			return nil, err
		}
		columns = append(columns, name)
		s.skipSpace()
		switch s.peek() {
		case ',':
			s.advance()
		case ')':
			s.advance()
			return columns, nil
		default:
			return nil, errSyntax
		}
	}
}

func (s *scanner) tuple() ([]string, error) {
	if s.peek() != '(' {
		return nil, errSyntax
	}
	s.advance()
	var values []string
	for {
		s.skipSpace()
		value, err := s.value()
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		s.skipSpace()
		switch s.peek() {
		case ',':
			s.advance()
		case ')':
			s.advance()
			return values, nil
		default:
			return nil, errSyntax
		}
	}
}

func (s *scanner) value() (string, error) {
	switch c := s.peek(); {
	case c == '\'' || c == '"':
		return s.quoted(c), nil
	case c == 0:
		return "", errSyntax
	}

	start := s.pos
	depth := 0
	for !s.eof() {
		c := s.peek()
		if depth == 0 && (c == ',' || c == ')') {
			break
		}
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case '\'', '"':
			s.quoted(c)
			continue
		}
		s.advance()
	}
	raw := strings.TrimSpace(s.src[start:s.pos])
	if strings.EqualFold(raw, "NULL") {
		return "", nil
	}
	return raw, nil
}

// quoted reads a quoted token starting at the opening quote. A doubled quote
// and backslash escapes are both understood.
func (s *scanner) quoted(quote byte) string {
	s.advance()
	var b strings.Builder
	for !s.eof() {
		c := s.advance()
		switch {
		case c == quote:
			if s.peek() == quote {
				b.WriteByte(s.advance())
				continue
			}
			return b.String()
		case c == '\\' && quote != '`' && !s.eof():
			switch e := s.advance(); e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
