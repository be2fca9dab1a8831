package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

var GlobalDebugEnabled = false

var (
	outputLock sync.Mutex
	output     io.Writer = os.Stderr
)

/*
SetupScriptLog mirrors all log output into the specified file in addition
to stderr. Parent directories are created if needed. The file stays open
for the lifetime of the process.
*/
func SetupScriptLog(scriptLog string) error {
	if scriptLog == "" {
		return nil
	}
	dir := filepath.Dir(scriptLog)
	if dir != "" && dir != "." {
		mkdirErr := os.MkdirAll(dir, 0o750)
		if mkdirErr != nil {
			return fmt.Errorf("can't create script log directory: %v", mkdirErr)
		}
	}
	file, openErr := os.OpenFile(scriptLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if openErr != nil {
		return fmt.Errorf("can't open script log file: %v", openErr)
	}
	outputLock.Lock()
	defer outputLock.Unlock()
	output = io.MultiWriter(os.Stderr, file)
	return nil
}

func OnError(errFunc func() error, format string, args ...interface{}) func() {
	return func() {
		err := errFunc()
		if err != nil {
			printWithCaller("[ERROR] ", "%s: %v", fmt.Sprintf(format, args...), err)
		}
	}
}

func WithError(err error, format string, args ...interface{}) {
	printWithCaller("[ERROR] ", "%s: %v", fmt.Sprintf(format, args...), err)
}

func Error(format string, args ...interface{}) {
	printWithCaller("[ERROR] ", format, args...)
}

func Info(format string, args ...interface{}) {
	printWithCaller("[INFO] ", format, args...)
}

func Debug(format string, args ...interface{}) {
	if !GlobalDebugEnabled {
		return
	}
	printWithCaller("[DEBUG] ", format, args...)
}

func printWithCaller(level string, format string, args ...interface{}) {
	_, fn, line, _ := runtime.Caller(2)
	outputLock.Lock()
	defer outputLock.Unlock()
	fmt.Fprint(output, level)
	fmt.Fprintf(output, "%s:%d - ", fn, line)
	fmt.Fprintf(output, format, args...)
	fmt.Fprintln(output)
}
