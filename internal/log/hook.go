// Package log contains the logrus hooks behind the --log-output flag.
package log

import (
	"context"

	"github.com/sirupsen/logrus"
)

// AsyncHook extends the logrus.Hook functionality
// handling logging in a non-blocking way.
type AsyncHook interface {
	logrus.Hook

	// Listen consumes the fired entries until ctx is done, then flushes
	// whatever is pending and releases the hook's resources.
	Listen(ctx context.Context)
}
