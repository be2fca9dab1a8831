package pnc

import (
	"github.com/abalx/nginx-log-analyzer/common/log"
	"runtime/debug"
)

func PanicHandle() {
	r := recover()
	if r != nil {
		log.Error("panic happened: %+v", r)
		debug.PrintStack()
	}
}
