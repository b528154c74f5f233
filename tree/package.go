// Package tree reads and writes treefile containers, columnar files that
// hold one or more named trees. A tree has a fixed schema and row count,
// data is stored as appended chunks with one compressed block per column.
package tree

import (
	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}
