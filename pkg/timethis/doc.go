// Package timethis measures how long a block of code takes to run.
//
// A block of code is passed as a closure. Once runs it a single time, Loops
// runs it n times back to back, and both return the elapsed wall-clock time
// between a clock read taken before the work and one taken after it:
//
//	elapsed := timethis.Once(func() {
//		x := make([]int, 0)
//		for i := 0; i < 1000; i++ {
//			x = append(x, i)
//		}
//	})
//
// The work runs on the calling goroutine. Panics are not recovered and errors
// returned by the E variants are passed back untouched, so a failed block never
// produces a duration.
package timethis
