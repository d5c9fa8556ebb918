package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Seconds converts a whole-second count to a Duration.
func Seconds[T ~uint8 | ~uint16 | ~uint32 | ~int | ~int32](n T) time.Duration {
	return time.Duration(n) * time.Second
}
