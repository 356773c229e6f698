// Package retry provides the bounded-retry combinator used for every
// transport call.
package retry

import "time"

// Do calls fn up to attempts times, pausing between attempts, and
// returns the last error if all attempts fail.
func Do(attempts int, pause time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(pause)
		}
	}
	return err
}
