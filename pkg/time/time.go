package time

import (
	"context"
	"time"
)

// TickWithCtx returns a chan that receives time.Time immediately and then
// every time interval ticks. The channel is closed after context cancelation.
func TickWithCtx(ctx context.Context, interval time.Duration) <-chan time.Time {
	ch := make(chan time.Time)
	ticker := time.NewTicker(interval)

	go func() {
		defer func() {
			ticker.Stop()
			close(ch)
		}()

		select {
		case <-ctx.Done():
			return
		case ch <- time.Now():
		}

		for {
			select {
			case <-ctx.Done():
				return
			case v := <-ticker.C:
				select {
				case <-ctx.Done():
					return
				case ch <- v:
				}
			}
		}
	}()

	return ch
}
