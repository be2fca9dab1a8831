package file

import (
	"compress/gzip"
	"encoding/base64"
	"github.com/abalx/nginx-log-analyzer/common/log"
	"github.com/abalx/nginx-log-analyzer/common/test"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestFileReader(t *testing.T) {
	t.Parallel()
	const lineBufSize = 16 * 1024

	fileName := filepath.Join(t.TempDir(), "nginx-access-ui.log-20170630")
	bigLine := make([]byte, 2*lineBufSize+12)
	rand.Read(bigLine)
	stringLikeLine := base64.StdEncoding.EncodeToString(bigLine)
	writeErr := os.WriteFile(fileName, []byte("first line\nsecond line\n"+stringLikeLine+"\n"), 0o640)
	test.FailOnError(t, writeErr)

	reader, readerErr := NewReader(fileName, lineBufSize)
	test.FailOnError(t, readerErr)
	defer log.OnError(reader.Close, "can't close file reader")()

	{
		line, lineErr := reader.ReadOneLineAsSlice()
		test.FailOnError(t, lineErr)
		test.Equals(t, []byte("first line"), line, "can't read line")
	}
	{
		line, lineErr := reader.ReadOneLineAsSlice()
		test.FailOnError(t, lineErr)
		test.Equals(t, []byte("second line"), line, "can't read line")
	}
	{
		line, lineErr := reader.ReadOneLineAsSlice()
		test.FailOnError(t, lineErr)
		test.Equals(t, []byte(stringLikeLine), line, "long line should come back through the overflow buffer")
	}
	{
		line, lineErr := reader.ReadOneLineAsSlice()
		test.Equals(t, []byte(nil), line, "line should be empty")
		test.Equals(t, io.EOF, lineErr, "file should be consumed now")
	}
}

func TestFileReaderGzip(t *testing.T) {
	t.Parallel()
	fileName := filepath.Join(t.TempDir(), "nginx-access-ui.log-20170630.gz")
	gzFile, createErr := os.Create(fileName)
	test.FailOnError(t, createErr)
	gzWriter := gzip.NewWriter(gzFile)
	_, writeErr := gzWriter.Write([]byte("compressed first\ncompressed second\n"))
	test.FailOnError(t, writeErr)
	test.FailOnError(t, gzWriter.Close())
	test.FailOnError(t, gzFile.Close())

	reader, readerErr := NewReader(fileName, 0)
	test.FailOnError(t, readerErr)
	defer log.OnError(reader.Close, "can't close file reader")()

	{
		line, lineErr := reader.ReadOneLineAsSlice()
		test.FailOnError(t, lineErr)
		test.Equals(t, []byte("compressed first"), line, "can't read line through gzip filter")
	}
	{
		line, lineErr := reader.ReadOneLineAsSlice()
		test.FailOnError(t, lineErr)
		test.Equals(t, []byte("compressed second"), line, "can't read line through gzip filter")
	}
	{
		line, lineErr := reader.ReadOneLineAsSlice()
		test.Equals(t, []byte(nil), line, "line should be empty")
		test.Equals(t, io.EOF, lineErr, "file should be consumed now")
	}
}

func TestFileReaderMissingFile(t *testing.T) {
	t.Parallel()
	_, readerErr := NewReader(filepath.Join(t.TempDir(), "absent.log"), 0)
	if readerErr == nil {
		t.Fatalf("missing file should fail reader setup")
	}
}

func TestFileReaderCorruptGzip(t *testing.T) {
	t.Parallel()
	fileName := filepath.Join(t.TempDir(), "nginx-access-ui.log-20170630.gz")
	writeErr := os.WriteFile(fileName, []byte("this is not gzip"), 0o640)
	test.FailOnError(t, writeErr)
	_, readerErr := NewReader(fileName, 0)
	if readerErr == nil {
		t.Fatalf("corrupt gzip should fail reader setup")
	}
}
