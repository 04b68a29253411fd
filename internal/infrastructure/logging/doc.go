// Package logging provides structured logging using uber/zap.
//
// Production mode writes JSON, development mode writes colored console lines.
// Components receive a *zap.Logger by injection and tag it with Named:
//
//	logger := logging.NewDefault()
//	vfsLog := logger.Named("vfs")
//	vfsLog.Warn("overlay persist failed", zap.String("key", key), zap.Error(err))
package logging
