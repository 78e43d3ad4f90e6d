package binding

import (
	"bufio"
	"io"
	"os"

	"github.com/dr8co/lolcode/eval"
	"github.com/dr8co/lolcode/value"
)

// handle is the Blob payload OPEN installs: the open file plus a buffered
// reader for LUK, so repeated short reads don't each pay a syscall.
type handle struct {
	file   *os.File
	reader *bufio.Reader
}

var stdioRoutines = []routine{
	{"OPEN", []string{"filename", "mode"}, stdioOpen},
	{"LUK", []string{"file", "length"}, stdioLuk},
	{"SCRIBBEL", []string{"file", "data"}, stdioScribbel},
	{"AGEIN", []string{"file"}, stdioAgein},
	{"CLOSE", []string{"file"}, stdioClose},
	{"DIAF", []string{"file"}, stdioDiaf},
}

func stdioHandle(scope *value.Scope, name string) (*handle, error) {
	b, err := argBlob(scope, name)
	if err != nil || b == nil {
		return nil, err
	}
	h, _ := b.(*handle)
	return h, nil
}

// stdioOpen implements OPEN(filename, mode)→Blob: "r" opens read-only, "w"
// truncates/creates for writing, "a" creates/appends. A failed open yields
// a null Blob (spec.md §7 "Host errors"), not an error.
func stdioOpen(scope *value.Scope) (eval.Signal, error) {
	filename, err := argString(scope, "filename")
	if err != nil {
		return eval.Signal{}, err
	}
	mode, err := argString(scope, "mode")
	if err != nil {
		return eval.Signal{}, err
	}

	flag := os.O_RDONLY
	switch mode {
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(filename, flag, 0o644)
	if err != nil {
		return eval.ReturnSignal(value.BlobVal(nil)), nil
	}
	return eval.ReturnSignal(value.BlobVal(&handle{file: f, reader: bufio.NewReader(f)})), nil
}

// stdioLuk implements LUK(file, length)→String (sanitized): reads up to
// length bytes, returning whatever was read (possibly short of length, at
// EOF).
func stdioLuk(scope *value.Scope) (eval.Signal, error) {
	h, err := stdioHandle(scope, "file")
	if err != nil {
		return eval.Signal{}, err
	}
	length, err := argInt(scope, "length")
	if err != nil {
		return eval.Signal{}, err
	}
	if h == nil || length <= 0 {
		return eval.ReturnSignal(value.Str("")), nil
	}

	buf := make([]byte, length)
	n, readErr := io.ReadFull(h.reader, buf)
	if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
		return eval.Signal{}, readErr
	}
	return eval.ReturnSignal(value.Str(Sanitize(string(buf[:n])))), nil
}

// stdioScribbel implements SCRIBBEL(file, data): writes data verbatim, no
// return value (Default signal, implicit variable untouched by design).
func stdioScribbel(scope *value.Scope) (eval.Signal, error) {
	h, err := stdioHandle(scope, "file")
	if err != nil {
		return eval.Signal{}, err
	}
	data, err := argString(scope, "data")
	if err != nil {
		return eval.Signal{}, err
	}
	if h == nil {
		return eval.DefaultSignal(), nil
	}
	_, err = h.file.WriteString(data)
	return eval.DefaultSignal(), err
}

// stdioAgein implements AGEIN(file): rewinds to the start so a subsequent
// LUK rereads from the beginning.
func stdioAgein(scope *value.Scope) (eval.Signal, error) {
	h, err := stdioHandle(scope, "file")
	if err != nil {
		return eval.Signal{}, err
	}
	if h == nil {
		return eval.DefaultSignal(), nil
	}
	if _, err := h.file.Seek(0, io.SeekStart); err != nil {
		return eval.Signal{}, err
	}
	h.reader.Reset(h.file)
	return eval.DefaultSignal(), nil
}

// stdioClose implements CLOSE(file).
func stdioClose(scope *value.Scope) (eval.Signal, error) {
	h, err := stdioHandle(scope, "file")
	if err != nil {
		return eval.Signal{}, err
	}
	if h == nil {
		return eval.DefaultSignal(), nil
	}
	return eval.DefaultSignal(), h.file.Close()
}

// stdioDiaf implements DIAF(file)→Boolean: true when file is a failed-open
// (null) handle (spec.md §8 scenario 7).
func stdioDiaf(scope *value.Scope) (eval.Signal, error) {
	h, err := stdioHandle(scope, "file")
	if err != nil {
		return eval.Signal{}, err
	}
	return eval.ReturnSignal(value.Bool(h == nil)), nil
}
