package file

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"github.com/abalx/nginx-log-analyzer/common/cmp"
	"github.com/abalx/nginx-log-analyzer/common/log"
	"io"
	"os"
	"strings"
)

const minBufSize = 4 * 1024

/*
A component used to read lines of a log file from start to end.
Under load in the hot path, this file reader should work with almost zero allocations.

Responsibilities:
	- open and Close the target file
	- transparently decompress `.gz` files as a streaming read filter,
	so consumers always see decoded text lines
	- report io.EOF once the whole file is consumed

Attention:
	- `ReadOneLineAsSlice` returns a view to internal reading buffer to
	avoid copying and pressure on GC. This view is only valid before the
	next `ReadOneLineAsSlice` call. If you need some parts of it to remain
	accessible, copy required parts
	- call `Close` function to free managed resources
*/
type Reader struct {
	fileName      string
	readerBufSize uint

	file                 *os.File
	gzipFilter           *gzip.Reader
	reader               *bufio.Reader
	overflowForLongLines *bytes.Buffer
}

func NewReader(fileName string, readerBufSize uint) (*Reader, error) {
	if fileName == "" {
		return nil, fmt.Errorf("fileName can't be empty")
	}
	file, openErr := os.Open(fileName)
	if openErr != nil {
		return nil, fmt.Errorf("can't open file %v: %v", fileName, openErr)
	}
	result := &Reader{
		fileName:             fileName,
		readerBufSize:        cmp.MaxUInt(readerBufSize, minBufSize),
		file:                 file,
		overflowForLongLines: bytes.NewBuffer(nil),
	}
	var source io.Reader = file
	if strings.HasSuffix(fileName, ".gz") {
		gzipFilter, gzipErr := gzip.NewReader(file)
		if gzipErr != nil {
			log.OnError(file.Close, "can't Close file: %v", fileName)()
			return nil, fmt.Errorf("can't open gzip filter for %v: %v", fileName, gzipErr)
		}
		result.gzipFilter = gzipFilter
		source = gzipFilter
	}
	result.reader = bufio.NewReaderSize(source, int(result.readerBufSize))
	return result, nil
}

func (f *Reader) Close() error {
	if f.gzipFilter != nil {
		gzipCloseErr := f.gzipFilter.Close()
		if gzipCloseErr != nil {
			log.Error("can't Close gzip filter: %v; error: %v", f.fileName, gzipCloseErr)
		}
	}
	return f.file.Close()
}

func (f *Reader) ReadOneLineAsSlice() ([]byte, error) {
	f.overflowForLongLines.Reset()
	returnOverflow := false
	for {
		line, isPrefix, readErr := f.reader.ReadLine()
		if readErr != nil {
			return nil, readErr
		}
		if isPrefix {
			log.Debug("using overflow buf: %v; bufSize: %v", f.fileName, f.overflowForLongLines.Cap())
			f.overflowForLongLines.Write(line)
			returnOverflow = true
			continue
		}
		if returnOverflow {
			f.overflowForLongLines.Write(line)
			return f.overflowForLongLines.Bytes(), nil
		}
		return line, nil
	}
}
