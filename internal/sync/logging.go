package sync

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jtammen/stride/internal/config"
)

// OpenLoggers builds the pair of run loggers backed by a rolling
// sync.log under baseDir, mirrored to stderr. The caller closes the
// returned writer when the process is done.
func OpenLoggers(baseDir string, cfg *config.Config) (runLog, unknownLog *log.Logger, closer io.Closer) {
	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(baseDir, "sync.log"),
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	}
	w := io.MultiWriter(os.Stderr, rotating)
	runLog = log.New(w, "[sync] ", log.LstdFlags)
	unknownLog = log.New(w, "[unknown-type] ", log.LstdFlags)
	return runLog, unknownLog, rotating
}
