package redis

import (
	"context"
	"io"
)

// Shutdown returns a shutdown hook closing client.
//
// Example:
//
//	app.Run(addr, ironlog.ShutdownHook(redis.Shutdown(client)))
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
