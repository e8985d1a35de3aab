package publishers

import "github.com/samvad-hq/neowatch/internal/logger"

// Logger is the logging surface publishers rely on.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger { return logger.Ensure(log) }
