package trace

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Kind identifies a script operation.
type Kind byte

const (
	KindAlloc   Kind = 'a'
	KindRealloc Kind = 'r'
	KindFree    Kind = 'f'
)

func (k Kind) String() string {
	switch k {
	case KindAlloc:
		return "alloc"
	case KindRealloc:
		return "realloc"
	case KindFree:
		return "free"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

const (
	// MaxID bounds block ids so replay state stays proportional to the script.
	MaxID = 1 << 20

	commentPrefix = "#"

	scannerInitialBufferSize = 4096
	scannerMaxLineSize       = 64 * 1024
)

// Op is one script operation. Size is unused for KindFree.
type Op struct {
	Kind Kind
	ID   int
	Size int
	Line int // 1-based source line
}

// Script is a parsed allocation script.
type Script struct {
	Name string
	Ops  []Op
	IDs  int // one past the largest id used
}

// Parse reads a script from r.
func Parse(r io.Reader) (*Script, error) {
	// UTF-8 unless a BOM says otherwise.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, decoder))
	scanner.Buffer(make([]byte, 0, scannerInitialBufferSize), scannerMaxLineSize)

	s := &Script{}
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, commentPrefix) {
			continue
		}
		op, err := parseOp(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		op.Line = line
		s.Ops = append(s.Ops, op)
		s.IDs = max(s.IDs, op.ID+1)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "trace: scanning script")
	}
	return s, nil
}

// ParseFile parses the script at path and names it after the file.
func ParseFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	s.Name = filepath.Base(path)
	return s, nil
}

func parseOp(text string) (Op, error) {
	fields := strings.Fields(text)
	if len(fields[0]) != 1 {
		return Op{}, errors.Wrapf(ErrSyntax, "unknown operation %q", fields[0])
	}

	op := Op{Kind: Kind(fields[0][0])}
	want := 3
	switch op.Kind {
	case KindAlloc, KindRealloc:
	case KindFree:
		want = 2
	default:
		return Op{}, errors.Wrapf(ErrSyntax, "unknown operation %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, errors.Wrapf(ErrSyntax, "%s takes %d arguments, got %d", op.Kind, want-1, len(fields)-1)
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 || id >= MaxID {
		return Op{}, errors.Wrapf(ErrSyntax, "bad id %q", fields[1])
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil || size < 0 {
			return Op{}, errors.Wrapf(ErrSyntax, "bad size %q", fields[2])
		}
		op.Size = size
	}
	return op, nil
}
