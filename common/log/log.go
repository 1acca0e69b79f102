package log

import (
	"fmt"
	"os"

	log "github.com/xuperchain/log15"

	"github.com/xuperchain/classvm/common/config"
)

// LogBufSize is the channel size used when a logger's handler is async.
const LogBufSize = 10240

// Logger wraps log15.Logger so callers (dispatcher, resolver, native
// bridge, unwinder) can hold a typed field without importing log15
// directly.
type Logger struct {
	log.Logger
}

// OpenLog builds a Logger from lc: a synchronous or buffered handler that
// fans records out to stderr (if lc.Console) and to a pair of rotating (or
// plain) files, one for everything at lc.Level and above, one restricted
// to warnings and faults.
func OpenLog(lc *config.LogConfig) (Logger, error) {
	infoFile := lc.Filepath + "/" + lc.Filename + ".log"
	wfFile := lc.Filepath + "/" + lc.Filename + ".log.wf"
	os.MkdirAll(lc.Filepath, os.ModePerm)

	lfmt := log.LogfmtFormat()
	if lc.Fmt == "json" {
		lfmt = log.JsonFormat()
	}

	vmlog := log.New("module", lc.Module)
	hstd := log.StreamHandler(os.Stderr, lfmt)

	lvLevel, err := log.LvlFromString(lc.Level)
	if err != nil {
		fmt.Printf("log level error: %v\n", err)
	}

	var nmHandler, wfHandler log.Handler
	if lc.RotateInterval > 0 && lc.RotateBackups > 0 {
		nmHandler = log.Must.RotateFileHandler(infoFile, lfmt, lc.RotateInterval, lc.RotateBackups)
		wfHandler = log.Must.RotateFileHandler(wfFile, lfmt, lc.RotateInterval, lc.RotateBackups)
	} else {
		nmHandler = log.Must.FileHandler(infoFile, lfmt)
		wfHandler = log.Must.FileHandler(wfFile, lfmt)
	}

	nmfileh := log.BoundLvlFilterHandler(lvLevel, log.LvlError, nmHandler)
	wffileh := log.LvlFilterHandler(log.LvlWarn, wfHandler)

	var handler log.Handler
	if lc.Console {
		handler = log.SyncHandler(log.MultiHandler(hstd, nmfileh, wffileh))
	} else {
		handler = log.SyncHandler(log.MultiHandler(nmfileh, wffileh))
	}
	if lc.Async {
		handler = log.BufferedHandler(LogBufSize, handler)
	}
	vmlog.SetHandler(handler)
	return Logger{vmlog}, err
}

// New builds a sub-logger bound to a module name without touching any
// file handler, for tests and short-lived CLI subcommands that only want
// a console logger.
func New(module string) Logger {
	l := log.New("module", module)
	l.SetHandler(log.StreamHandler(os.Stderr, log.LogfmtFormat()))
	return Logger{l}
}

// DiscardHandler re-exports log15's no-op handler so callers outside this
// package (e.g. a Thread built without an explicit Logger) never need to
// import log15 directly just to silence one.
func DiscardHandler() log.Handler {
	return log.DiscardHandler()
}
