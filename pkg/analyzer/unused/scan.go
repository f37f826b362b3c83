package unused

import (
	"fmt"
	"strings"

	"github.com/panbanda/ucr/pkg/dialect"
)

// frameKind is the location state of the scanner.
type frameKind int

const (
	frameOutside frameKind = iota
	frameClass
	frameMethod
)

// frame is one open construct on the scanner stack.
type frame struct {
	kind       frameKind
	name       string
	start      int
	comparator bool
}

// scanner walks the working buffer once, opening frames at start markers and
// committing entities to the registry at end markers.
type scanner struct {
	buf   string
	d     dialect.Dialect
	reg   *Registry
	stack []frame
}

// Scan extracts class and method boundaries from the working buffer into reg.
//
// Only one level of nesting is modelled: classes open while outside any
// class, methods open while directly inside a class. Constructs still open
// at the end of the buffer are closed at the last buffer offset.
func Scan(working string, d dialect.Dialect, reg *Registry) error {
	s := &scanner{
		buf:   working,
		d:     d,
		reg:   reg,
		stack: []frame{{kind: frameOutside}},
	}
	return s.run()
}

func (s *scanner) top() frame {
	return s.stack[len(s.stack)-1]
}

func (s *scanner) push(f frame) {
	s.stack = append(s.stack, f)
}

func (s *scanner) pop() frame {
	f := s.top()
	s.stack = s.stack[:len(s.stack)-1]
	return f
}

// owningClass returns the name of the innermost open class.
func (s *scanner) owningClass() string {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i].kind == frameClass {
			return s.stack[i].name
		}
	}
	return ""
}

func (s *scanner) run() error {
	i := 0
	for i < len(s.buf) {
		rest := s.buf[i:]
		switch s.top().kind {
		case frameOutside:
			if strings.HasPrefix(rest, s.d.ClassStart) {
				if err := s.openClass(i); err != nil {
					return err
				}
			}

		case frameClass:
			if hasAnyPrefix(rest, s.d.MethodStarts) != "" {
				if err := s.openMethod(i); err != nil {
					return err
				}
			} else if strings.HasPrefix(rest, s.d.ClassEnd) {
				end := i + len(s.d.ClassEnd) - 1
				if err := s.closeClass(end); err != nil {
					return err
				}
				i = end
			}

		case frameMethod:
			if marker := hasAnyPrefix(rest, s.d.MethodEnds); marker != "" {
				end := i + len(marker) - 1
				if err := s.closeMethod(end); err != nil {
					return err
				}
				i = end
			}
		}
		i++
	}

	return s.closeOpen()
}

// openClass handles a class start marker at position i. The class name is
// the second whitespace-delimited token of the rest of the line and the
// class starts at the beginning of the line.
func (s *scanner) openClass(i int) error {
	lineEnd := strings.IndexByte(s.buf[i:], '\n')
	if lineEnd < 0 {
		lineEnd = len(s.buf)
	} else {
		lineEnd += i
	}
	decl := s.buf[i:lineEnd]

	words := strings.Fields(decl)
	if len(words) < 2 {
		return fmt.Errorf("%w: class declaration without a name at offset %d", ErrMalformedInput, i)
	}

	s.push(frame{
		kind:       frameClass,
		name:       words[1],
		start:      strings.LastIndexByte(s.buf[:i], '\n') + 1,
		comparator: s.d.IsComparator(decl),
	})
	return nil
}

// openMethod handles a method start marker at position i. The method name is
// the last token before the next opening parenthesis and the method starts
// just after the nearest space preceding that parenthesis.
func (s *scanner) openMethod(i int) error {
	paren := strings.IndexByte(s.buf[i:], '(')
	if paren < 0 {
		return fmt.Errorf("%w: method header without parameter list at offset %d", ErrMalformedInput, i)
	}
	paren += i

	words := strings.Fields(s.buf[i:paren])
	if len(words) == 0 {
		return fmt.Errorf("%w: method header without a name at offset %d", ErrMalformedInput, i)
	}
	name := words[len(words)-1]

	start := i + strings.LastIndexByte(s.buf[i:paren], ' ') + 1

	s.push(frame{
		kind:  frameMethod,
		name:  name,
		start: start,
	})
	return nil
}

func (s *scanner) closeMethod(end int) error {
	f := s.pop()
	_, err := s.reg.AddMethod(Method{
		Name:  f.name,
		Class: s.owningClass(),
		Start: f.start,
		End:   end,
	})
	return err
}

func (s *scanner) closeClass(end int) error {
	f := s.pop()
	_, err := s.reg.AddClass(Class{
		Name:       f.name,
		Start:      f.start,
		End:        end,
		Comparator: f.comparator,
	})
	return err
}

// closeOpen commits every frame left open at the end of the buffer.
func (s *scanner) closeOpen() error {
	last := len(s.buf) - 1
	for len(s.stack) > 1 {
		var err error
		switch s.top().kind {
		case frameMethod:
			err = s.closeMethod(last)
		case frameClass:
			err = s.closeClass(last)
		default:
			s.pop()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// hasAnyPrefix returns the first marker s starts with, or "".
func hasAnyPrefix(s string, markers []string) string {
	for _, m := range markers {
		if m != "" && strings.HasPrefix(s, m) {
			return m
		}
	}
	return ""
}
